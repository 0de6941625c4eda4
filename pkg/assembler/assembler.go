// Package assembler implements the Assembler (SPEC_FULL §4.8): it
// materializes the final []UniversalBuild from the repository
// Context's resolved ServiceAnalyses, applying copy conventions,
// deduplicating service names, and validating every package name
// against the Wolfi Package Index.
package assembler

import (
	"fmt"
	"sort"

	"github.com/containifyci/universal-build/pkg/analysis"
	"github.com/containifyci/universal-build/pkg/runtime"
	"github.com/containifyci/universal-build/pkg/stack"
	"github.com/containifyci/universal-build/pkg/universalbuild"
)

// Validator checks a set of package names against a package index,
// satisfied by *wolfi.Index. Accepting the narrow interface here (SPEC_FULL
// §4.2/§4.8's actual requirement) keeps the assembler independent of
// the concrete Wolfi fetch/cache machinery and testable in isolation.
type Validator interface {
	ValidatePackages(names []string) error
}

// Assemble builds one UniversalBuild per ServiceAnalysis, merges the
// workspace-level root cache paths, enforces unique service names, and
// validates the full package set through idx.
func Assemble(analyses []analysis.ServiceAnalysis, rootCache *analysis.RootCache, idx Validator) ([]universalbuild.UniversalBuild, error) {
	names := map[string]int{}
	builds := make([]universalbuild.UniversalBuild, 0, len(analyses))

	for _, sa := range analyses {
		build := fromServiceAnalysis(sa, rootCache)
		build.Metadata.ProjectName = uniqueName(names, build.Metadata.ProjectName)
		builds = append(builds, build)
	}

	for _, b := range builds {
		if err := idx.ValidatePackages(b.AllPackages()); err != nil {
			return nil, fmt.Errorf("assembling %s: %w", b.Metadata.ProjectName, err)
		}
	}

	return builds, nil
}

// uniqueName appends a deterministic numeric suffix (by first-seen
// build order) when a project name collides with an earlier one
// (SPEC_FULL §4.8).
func uniqueName(seen map[string]int, name string) string {
	n, exists := seen[name]
	seen[name] = n + 1
	if !exists {
		return name
	}
	return fmt.Sprintf("%s-%d", name, n)
}

func fromServiceAnalysis(sa analysis.ServiceAnalysis, rootCache *analysis.RootCache) universalbuild.UniversalBuild {
	b := universalbuild.New(sa.Application.Name)

	b.Metadata.Language = sa.Stack.Language.Name()
	b.Metadata.BuildSystem = sa.Stack.BuildSystem.Name()
	if sa.Stack.Framework != nil {
		b.Metadata.Framework = sa.Stack.Framework.Name()
	}
	if sa.Stack.Language.IsCustom() || sa.Stack.BuildSystem.IsCustom() {
		b.Metadata.Reasoning = "classified via LLM fallback"
	}

	b.Build.Packages = dedupe(sa.BuildTemplate.BuildPackages)
	b.Build.Commands = append([]string{}, sa.BuildTemplate.Commands...)
	b.Build.Cache = mergedCache(sa.CachePaths, rootCache)

	runtimePackages := append([]string{}, sa.BuildTemplate.RuntimePackages...)
	if sa.Stack.Framework != nil {
		if langDef, rt, ok := resolveRuntime(sa.Stack); ok {
			_ = langDef
			runtimePackages = append(runtimePackages, rt.RequiredPackages(*sa.Stack.Framework, nil)...)
		}
	}
	b.Runtime.Packages = dedupe(runtimePackages)
	b.Runtime.Copy = copyEntriesFor(sa.Stack.BuildSystem, sa.Application.Name)

	var startCmd []string
	if _, rt, ok := resolveRuntime(sa.Stack); ok {
		startCmd = rt.StartCommand(sa.RuntimeConfig.Entrypoint)
	} else {
		startCmd = []string{sa.RuntimeConfig.Entrypoint}
	}
	b.Runtime.Command = startCmd
	b.Runtime.Env = sa.RuntimeConfig.Env
	if sa.RuntimeConfig.Port != 0 {
		b.Runtime.Ports = []uint16{sa.RuntimeConfig.Port}
	}
	if sa.RuntimeConfig.Health != "" {
		b.Runtime.Health = &universalbuild.HealthCheck{Endpoint: sa.RuntimeConfig.Health}
	}

	return b
}

// resolveRuntime is a best-effort lookup; it has no access to the
// StackRegistry here (ServiceAnalysis is registry-agnostic), so it
// infers the runtime purely from the language's conventional mapping
// mirrored from pkg/stack's DefaultRuntime per-language wiring.
func resolveRuntime(s stack.Stack) (string, runtime.Runtime, bool) {
	id := defaultRuntimeFor(s.Language.Name())
	rt, ok := runtime.For(id)
	return s.Language.Name(), rt, ok
}

func defaultRuntimeFor(language string) stack.RuntimeId {
	switch language {
	case "java":
		return stack.RuntimeJVM
	case "node":
		return stack.RuntimeNode
	case "python":
		return stack.RuntimePython
	case "ruby":
		return stack.RuntimeRuby
	case "php":
		return stack.RuntimePHP
	case "dotnet":
		return stack.RuntimeDotnet
	case "go", "rust":
		return stack.RuntimeNative
	default:
		return stack.RuntimeLLMFallback
	}
}

func mergedCache(servicePaths []string, rootCache *analysis.RootCache) []string {
	seen := map[string]bool{}
	var out []string
	add := func(paths []string) {
		for _, p := range paths {
			if p == "" || seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
		}
	}
	add(servicePaths)
	if rootCache != nil {
		add(rootCache.Paths)
	}
	sort.Strings(out)
	return out
}

func dedupe(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// copyEntriesFor implements SPEC_FULL §4.8's per-build-system runtime
// artifact convention: languages with JAR dependencies list both the
// JAR and its dependency directory; other ecosystems copy their
// conventional output root.
func copyEntriesFor(buildSystem stack.BuildSystemId, appName string) []universalbuild.CopyEntry {
	switch buildSystem.Name() {
	case "maven":
		return []universalbuild.CopyEntry{
			{From: "target/*.jar", To: "/app/app.jar"},
			{From: "target/lib/", To: "/app/lib/"},
		}
	case "gradle":
		return []universalbuild.CopyEntry{{From: "build/libs/*.jar", To: "/app/app.jar"}}
	case "npm", "yarn", "pnpm":
		return []universalbuild.CopyEntry{{From: ".", To: "/app"}}
	case "pip", "poetry":
		return []universalbuild.CopyEntry{{From: ".", To: "/app"}}
	case "composer":
		return []universalbuild.CopyEntry{{From: ".", To: "/app"}}
	case "bundler":
		return []universalbuild.CopyEntry{{From: ".", To: "/app"}}
	case "dotnet-sdk":
		// dotnetBuildSystem.BuildTemplate publishes to the absolute
		// "/out" path (`dotnet publish -c Release -o /out`), not a
		// buildWorkdir-relative one, so the From below must match
		// that path verbatim.
		return []universalbuild.CopyEntry{{From: "/out/", To: "/app/"}}
	case "cargo":
		return []universalbuild.CopyEntry{{From: "target/release/" + appName, To: "/app/" + appName}}
	case "go-modules":
		// goModBuildSystem.BuildTemplate builds to the absolute
		// "/out/app" path (`go build -o /out/app .`), not a
		// buildWorkdir-relative one, so the From below must match
		// that path verbatim.
		return []universalbuild.CopyEntry{{From: "/out/app", To: "/app/" + appName}}
	default:
		return []universalbuild.CopyEntry{{From: ".", To: "/app"}}
	}
}
