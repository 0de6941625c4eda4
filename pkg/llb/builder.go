// Package llb translates a UniversalBuild into a BuildKit LLB graph
// (SPEC_FULL §3.7/§4.9): a two-stage build (build + runtime-prep) that
// converges on a scratch final stage with exactly two copies. Grounded
// on other_examples/2e034ec4_immutos-debco__internal-buildkit-buildkit.go.go
// (Scratch/Copy/Run chain shape, Marshal+ToPB) and
// other_examples/ae3e48d0_CowDogMoo-warpgate__pkg-builder-buildkit-buildkit.go.go
// (AddMount+AsPersistentCacheDir+CacheMountShared cache-mount keying).
package llb

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/moby/buildkit/client/llb"

	"github.com/containifyci/universal-build/pkg/universalbuild"
)

// WolfiImageRef is the sole implicit base image for every stage.
const WolfiImageRef = "cgr.dev/chainguard/wolfi-base:latest"

// ContextLocalName is the LocalDirs key the build stage's source copy
// is mounted under; the gRPC client must register the same name in
// client.SolveOpt.LocalDirs (pkg/buildkitclient.Solve's localDirs arg).
const ContextLocalName = "context"

// buildWorkdir is where the source tree and build commands run.
const buildWorkdir = "/src"

// Graph is one service's compiled LLB definition, ready to hand to the
// BuildKit gRPC client's Solve call.
type Graph struct {
	Definition *llb.Definition
	State      llb.State
}

// Build produces the 2-stage distroless graph of SPEC_FULL §3.7 for a
// single UniversalBuild. The Wolfi base image is resolved exactly
// once and shared by both the build and runtime-prep stages (no
// duplicate base-image source nodes).
func Build(ctx context.Context, ub universalbuild.UniversalBuild) (*Graph, error) {
	wolfi := llb.Image(WolfiImageRef)

	buildStage := applyBuildStage(wolfi, ub)
	runtimeRoot := applyRuntimePrepStage(wolfi, ub)

	actions := []llb.FileAction{llb.Copy(runtimeRoot, "/", "/", &llb.CopyInfo{CreateDestPath: true})}
	for _, entry := range ub.Runtime.Copy {
		rooted := entry
		// Most build systems emit their artifact relative to
		// buildWorkdir; a From already rooted outside it (e.g. a
		// build command that publishes to /out) is copied as-is.
		if !path.IsAbs(entry.From) {
			rooted.From = path.Join(buildWorkdir, entry.From)
			if isDirPath(entry.From) {
				rooted.From += "/"
			}
		}
		actions = append(actions, copyFileAction(buildStage, rooted))
	}
	final := llb.Scratch().File(actions...)

	def, err := final.Marshal(ctx)
	if err != nil {
		return nil, fmt.Errorf("llb: marshaling graph for %s: %w", ub.Metadata.ProjectName, err)
	}
	return &Graph{Definition: def, State: final}, nil
}

// applyBuildStage installs build.packages, then runs each build.commands
// entry as its own exec layer (never merged with `&&`), with a cache
// mount per build.cache path.
func applyBuildStage(base llb.State, ub universalbuild.UniversalBuild) llb.State {
	state := base
	if len(ub.Build.Packages) > 0 {
		state = state.Run(llb.Shlex(apkAddCommand(ub.Build.Packages))).Root()
	}

	localOpts := []llb.LocalOption{}
	if len(ub.Build.Context) > 0 {
		localOpts = append(localOpts, llb.IncludePatterns(ub.Build.Context))
	}
	source := llb.Local(ContextLocalName, localOpts...)
	state = state.File(llb.Copy(source, "/", buildWorkdir, &llb.CopyInfo{CreateDestPath: true})).Dir(buildWorkdir)

	for k, v := range ub.Build.Env {
		state = state.AddEnv(k, v)
	}
	for _, cmd := range ub.Build.Commands {
		opts := []llb.RunOption{llb.Shlex(cmd), llb.Dir(buildWorkdir)}
		for _, cachePath := range ub.Build.Cache {
			id := cacheID(ub.Metadata.ProjectName, cachePath)
			opts = append(opts, llb.AddMount(cachePath, llb.Scratch(), llb.AsPersistentCacheDir(id, llb.CacheMountShared)))
		}
		state = state.Run(opts...).Root()
	}
	return state
}

// applyRuntimePrepStage installs runtime.packages, then strips the apk
// database and package manager metadata so the final image carries no
// package manager (SPEC_FULL §3.7 Stage B).
func applyRuntimePrepStage(base llb.State, ub universalbuild.UniversalBuild) llb.State {
	state := base
	if len(ub.Runtime.Packages) > 0 {
		state = state.Run(llb.Shlex(apkAddCommand(ub.Runtime.Packages))).Root()
	}
	for k, v := range ub.Runtime.Env {
		state = state.AddEnv(k, v)
	}
	state = state.File(llb.Rm("/var/cache/apk", llb.WithAllowNotFound(true)))
	state = state.File(llb.Rm("/lib/apk", llb.WithAllowNotFound(true)))
	return state
}

func apkAddCommand(packages []string) string {
	return "apk add --no-cache " + strings.Join(packages, " ")
}

// copyFileAction normalizes entry.From/To through isDirPath so every
// copy in the graph routes directory-vs-file detection through one
// place (SPEC_FULL §3.7 invariant).
func copyFileAction(from llb.State, entry universalbuild.CopyEntry) llb.FileAction {
	info := &llb.CopyInfo{CreateDestPath: true}
	if isDirPath(entry.To) {
		info.CopyDirContentsOnly = isDirPath(entry.From)
	}
	return llb.Copy(from, entry.From, entry.To, info)
}

func isDirPath(path string) bool {
	return strings.HasSuffix(path, "/") || path == "."
}

// cacheID derives a deterministic cache mount ID from
// {project_name, cache_path}, grounded on warpgate's per-package-manager
// cache-mount keying pattern.
func cacheID(projectName, cachePath string) string {
	return fmt.Sprintf("%s:%s", projectName, cachePath)
}
