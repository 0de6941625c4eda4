// Package service implements the Service Phase Runner (SPEC_FULL
// §4.6): four ordered phases run per application --
// StackIdentification, BuildRecipe, RuntimeConfig, Cache. Grounded on
// the teacher's pkg/language/strategy.go LanguageStrategy phases
// (Prepare/Build/Test/Package), generalized from "drive a running
// build" to "produce a declarative recipe".
package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/containifyci/universal-build/pkg/analysis"
	"github.com/containifyci/universal-build/pkg/llm"
	"github.com/containifyci/universal-build/pkg/runtime"
	"github.com/containifyci/universal-build/pkg/stack"
)

// Deps are the handles a service phase needs beyond the ServiceContext
// itself: the Wolfi index (for BuildRecipe package resolution), a
// manifest/source file reader, and an optional orchestrator (nil for
// a single-application workspace).
type Deps struct {
	WolfiIndex   stack.WolfiIndex
	ReadFile     func(path string) ([]byte, error)
	Orchestrator stack.MonorepoOrchestrator
}

// Phase is one named, ordered step of the Service Phase Runner.
type Phase struct {
	Name string
	Run  func(ctx context.Context, sc *analysis.ServiceContext, deps Deps) error
}

// Phases returns the four Service Phase Runner phases in their fixed
// execution order. No other service phases exist (SPEC_FULL §4.6).
func Phases() []Phase {
	return []Phase{
		{Name: "StackIdentification", Run: StackIdentification},
		{Name: "BuildRecipe", Run: BuildRecipe},
		{Name: "RuntimeConfig", Run: RuntimeConfig},
		{Name: "Cache", Run: Cache},
	}
}

// Run executes all four phases in order against sc, aborting (without
// running later phases) on the first error.
func Run(ctx context.Context, sc *analysis.ServiceContext, deps Deps) error {
	for _, p := range Phases() {
		if err := p.Run(ctx, sc, deps); err != nil {
			return fmt.Errorf("service phase %s (%s): %w", p.Name, sc.App.Name, err)
		}
	}
	return nil
}

// StackIdentification determines Stack{language, version, build_system,
// framework, runtime} in a single step (SPEC_FULL §4.6 step 1).
func StackIdentification(ctx context.Context, sc *analysis.ServiceContext, deps Deps) error {
	content, err := deps.ReadFile(sc.App.ManifestPath)
	if err != nil {
		return fmt.Errorf("reading manifest %s: %w", sc.App.ManifestPath, err)
	}

	fileCounts := map[string]int{}
	if sc.Scan != nil {
		fileCounts = sc.Scan.ExtensionCount
	}

	detected, ok := sc.Registry.DetectStack(sc.App.ManifestPath, content, fileCounts)
	if !ok {
		return stackFromLLM(ctx, sc, deps)
	}

	langDef, ok := sc.Registry.Language(detected.Language)
	if !ok {
		return fmt.Errorf("language %s not registered", detected.Language)
	}
	version := langDef.ExtractVersion(content)

	var fwPtr *stack.FrameworkId
	if fw, ok := sc.Registry.DetectFrameworkFromDeps(detected.Language, sc.Dependencies, filePathsOf(sc)); ok {
		fwPtr = &fw
	}

	s := stack.Stack{
		Language:    detected.Language,
		BuildSystem: detected.BuildSystem,
		Framework:   fwPtr,
	}
	if version != "" {
		s.Version = &version
	}
	if err := s.Validate(); err != nil {
		return err
	}
	sc.Stack = s
	sc.LogDecision("service %s: identified %s/%s (framework=%v)", sc.App.Name, detected.Language.Name(), detected.BuildSystem.Name(), fwPtr)
	return nil
}

// stackFromLLM handles the unrecognized-manifest path: consult the LLM
// capability handle and fold its response into a Custom stack. Per
// SPEC_FULL §4.1, a response with confidence below llm.MinConfidence
// is rejected outright.
func stackFromLLM(ctx context.Context, sc *analysis.ServiceContext, deps Deps) error {
	resp, err := sc.LLM.Classify(ctx, llm.Request{
		Kind:            llm.KindBuildSystem,
		RepoPath:        sc.App.Path,
		ManifestPath:    sc.App.ManifestPath,
		ManifestContent: mustRead(deps, sc.App.ManifestPath),
		Files:           filePathsOf(sc),
		Dependencies:    sc.Dependencies,
	})
	if err != nil {
		return fmt.Errorf("LLM stack classification for %s: %w", sc.App.Name, err)
	}
	if resp.Confidence < llm.MinConfidence {
		return fmt.Errorf("LLM stack classification for %s: confidence %.2f below minimum", sc.App.Name, resp.Confidence)
	}

	meta := stack.CustomMeta{
		Name:           resp.Name,
		ManifestFiles:  resp.ManifestFiles,
		BuildCommands:  resp.BuildCommands,
		CacheDirs:      resp.CacheDirs,
		ConfigFiles:    resp.ConfigFiles,
		DependencyHint: resp.Metadata["dependency_hint"],
	}
	sc.Stack = stack.Stack{
		Language:    stack.CustomLang(meta),
		BuildSystem: stack.CustomBuildSystem(meta),
	}
	sc.LogDecision("service %s: LLM fallback classified as %q (confidence %.2f)", sc.App.Name, resp.Name, resp.Confidence)
	return nil
}

// BuildRecipe invokes build_system.BuildTemplate and wraps the
// resulting commands through the workspace orchestrator, if any
// (SPEC_FULL §4.6 step 2).
func BuildRecipe(_ context.Context, sc *analysis.ServiceContext, deps Deps) error {
	if sc.Stack.BuildSystem.IsCustom() {
		meta := sc.Stack.BuildSystem.Custom()
		sc.BuildTemplate = stack.BuildTemplate{
			BuildPackages: nil,
			Commands:      meta.BuildCommands,
			CachePaths:    meta.CacheDirs,
		}
		return nil
	}

	var bs stack.BuildSystem
	for _, candidate := range sc.Registry.BuildSystems() {
		if candidate.ID().Equal(sc.Stack.BuildSystem) {
			bs = candidate
			break
		}
	}
	if bs == nil {
		return fmt.Errorf("build system %s not registered", sc.Stack.BuildSystem)
	}

	content, err := deps.ReadFile(sc.App.ManifestPath)
	if err != nil {
		return fmt.Errorf("reading manifest %s: %w", sc.App.ManifestPath, err)
	}
	tmpl, err := bs.BuildTemplate(deps.WolfiIndex, content)
	if err != nil {
		return fmt.Errorf("build template for %s: %w", sc.App.Name, err)
	}

	if deps.Orchestrator != nil {
		wrapped := make([]string, len(tmpl.Commands))
		for i, cmd := range tmpl.Commands {
			wrapped[i] = deps.Orchestrator.WrapCommand(sc.App.Name, cmd)
		}
		tmpl.Commands = wrapped
	}

	sc.BuildTemplate = tmpl
	return nil
}

// RuntimeConfig extracts entrypoint, port, env vars, health and
// native deps in one call: TryDeterministicConfig, falling back to
// ExtractConfigLLM only when the runtime declines (SPEC_FULL §4.6
// step 3).
func RuntimeConfig(ctx context.Context, sc *analysis.ServiceContext, deps Deps) error {
	runtimeID := stack.RuntimeLLMFallback
	if langDef, ok := sc.Registry.Language(sc.Stack.Language); ok {
		runtimeID = langDef.DefaultRuntime()
	}
	rt, ok := runtime.For(runtimeID)
	if !ok {
		return fmt.Errorf("no runtime registered for %s", runtimeID)
	}

	var framework stack.Framework
	if sc.Stack.Framework != nil {
		framework, _ = sc.Registry.Framework(*sc.Stack.Framework)
	}

	files := sourceFiles(sc, deps)
	cfg, ok := runtime.TryDeterministicConfig(rt, files, framework, sc.Dependencies)
	if !ok {
		extracted, err := extractConfigLLM(ctx, sc, deps)
		if err != nil {
			return err
		}
		cfg = extracted
	}

	// SpringBoot's actuator health endpoint depends on a second Maven
	// dependency rather than files, so it is consulted directly
	// (SPEC_FULL §4.7 comment on ActuatorHealthEndpoint).
	if sc.Stack.Framework != nil && sc.Stack.Framework.Name() == "springboot" {
		if endpoint, ok := stack.ActuatorHealthEndpoint(sc.Dependencies); ok {
			cfg.Health = endpoint
		}
	}

	sc.RuntimeConfig = cfg
	return nil
}

func extractConfigLLM(ctx context.Context, sc *analysis.ServiceContext, deps Deps) (runtime.Config, error) {
	resp, err := sc.LLM.Classify(ctx, llm.Request{
		Kind:         llm.KindRuntimeConfig,
		RepoPath:     sc.App.Path,
		Files:        filePathsOf(sc),
		Dependencies: sc.Dependencies,
	})
	if err != nil {
		return runtime.Config{}, fmt.Errorf("LLM runtime config for %s: %w", sc.App.Name, err)
	}
	if resp.Confidence < llm.MinConfidence {
		return runtime.Config{}, fmt.Errorf("LLM runtime config for %s: confidence %.2f below minimum", sc.App.Name, resp.Confidence)
	}
	sc.LogDecision("service %s: LLM fallback supplied runtime config (confidence %.2f)", sc.App.Name, resp.Confidence)
	return runtime.Config{Env: resp.Metadata}, nil
}

// Cache merges build-system cache paths with orchestrator-provided
// workspace cache paths, deduplicated (SPEC_FULL §4.6 step 4).
func Cache(_ context.Context, sc *analysis.ServiceContext, deps Deps) error {
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
	add(sc.BuildTemplate.CachePaths)
	if deps.Orchestrator != nil {
		add(deps.Orchestrator.CacheDirs())
	}
	sort.Strings(out)
	sc.CachePaths = out
	return nil
}

func filePathsOf(sc *analysis.ServiceContext) []string {
	if sc.Scan == nil {
		return nil
	}
	return sc.Scan.Files
}

func sourceFiles(sc *analysis.ServiceContext, deps Deps) []runtime.SourceFile {
	paths := filePathsOf(sc)
	out := make([]runtime.SourceFile, 0, len(paths))
	for _, p := range paths {
		content, err := deps.ReadFile(p)
		if err != nil {
			continue
		}
		out = append(out, runtime.SourceFile{Path: p, Content: content})
	}
	return out
}

func mustRead(deps Deps, path string) []byte {
	content, err := deps.ReadFile(path)
	if err != nil {
		return nil
	}
	return content
}
