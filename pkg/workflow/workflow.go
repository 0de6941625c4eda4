// Package workflow implements the Workflow Phase Runner (SPEC_FULL
// §4.4) and the Workspace Structure phase (§4.5): the fixed ordered
// sequence Scan → WorkspaceStructure → RootCache → ServiceAnalysis →
// Assemble. Grounded on the teacher's pkg/language/orchestrator.go
// sequential-phase-with-progress-events shape, generalized from one
// build's lifecycle to the repository analysis pipeline.
package workflow

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/containifyci/universal-build/pkg/analysis"
	"github.com/containifyci/universal-build/pkg/assembler"
	"github.com/containifyci/universal-build/pkg/llm"
	"github.com/containifyci/universal-build/pkg/progress"
	"github.com/containifyci/universal-build/pkg/scanner"
	"github.com/containifyci/universal-build/pkg/service"
	"github.com/containifyci/universal-build/pkg/stack"
	"github.com/containifyci/universal-build/pkg/universalbuild"
)

// WolfiIndex is the subset of *wolfi.Index the pipeline needs: package
// membership for build-recipe resolution (via pkg/service) and set
// validation for assembly (via pkg/assembler).
type WolfiIndex interface {
	stack.WolfiIndex
	ValidatePackages(names []string) error
}

// Deps are the external handles the pipeline needs beyond the
// Analysis Context itself.
type Deps struct {
	ReadFile        func(path string) ([]byte, error)
	DependencyHints func(app stack.Application) []string
	WolfiIndex      WolfiIndex
	MaxFiles        int
}

// Phase is one named, ordered repository-level phase.
type Phase struct {
	Name string
	Run  func(ctx context.Context, ac *analysis.Context, deps Deps) error
}

// Phases returns the five Workflow Phase Runner phases in their fixed
// execution order. No other repository phases exist (SPEC_FULL §4.4).
func Phases() []Phase {
	return []Phase{
		{Name: "Scan", Run: scanPhase},
		{Name: "WorkspaceStructure", Run: workspaceStructurePhase},
		{Name: "RootCache", Run: rootCachePhase},
		{Name: "ServiceAnalysis", Run: serviceAnalysisPhase},
		{Name: "Assemble", Run: assemblePhase},
	}
}

// Run executes all five phases against ac in order, emitting
// PhaseStart/PhaseComplete/PhaseFailed progress events, and returns
// the final assembled builds.
func Run(ctx context.Context, ac *analysis.Context, deps Deps) ([]universalbuild.UniversalBuild, error) {
	for _, p := range Phases() {
		ac.Sink.Handle(progress.PhaseStart(p.Name))
		start := time.Now()
		if err := p.Run(ctx, ac, deps); err != nil {
			ac.Sink.Handle(progress.PhaseFailed(p.Name, err))
			return nil, fmt.Errorf("phase %s: %w", p.Name, err)
		}
		ac.Sink.Handle(progress.PhaseComplete(p.Name, time.Since(start)))
	}
	return ac.Assemble(), nil
}

func scanPhase(_ context.Context, ac *analysis.Context, deps Deps) error {
	manifestNames := map[string]bool{}
	for _, bs := range ac.Registry.BuildSystems() {
		for _, mp := range bs.ManifestPatterns() {
			manifestNames[mp.Filename] = true
		}
	}
	for _, orch := range ac.Registry.Orchestrators() {
		for _, mp := range orch.ManifestPatterns() {
			manifestNames[mp.Filename] = true
		}
	}

	result, err := scanner.Scan(scanner.Options{
		RootDir:       ac.RepoPath,
		MaxFiles:      deps.MaxFiles,
		ManifestNames: manifestNames,
	})
	if err != nil {
		return err
	}
	ac.SetScan(result)
	return nil
}

func workspaceStructurePhase(ctx context.Context, ac *analysis.Context, deps Deps) error {
	scan := ac.Scan()

	orch, content, ok := ac.Registry.DetectOrchestrator(scan.RootEntries, deps.ReadFile)
	if ok {
		ws, err := orch.WorkspaceStructure(ac.RepoPath, content)
		if err != nil {
			return fmt.Errorf("orchestrator %s workspace structure: %w", orch.ID(), err)
		}
		ac.SetWorkspace(&ws)
		return nil
	}

	if ws, ok := workspaceFromLLM(ctx, ac, scan); ok {
		ac.SetWorkspace(ws)
		return nil
	}

	ac.SetWorkspace(singleApplicationWorkspace(ac.RepoPath, scan))
	return nil
}

func workspaceFromLLM(ctx context.Context, ac *analysis.Context, scan *scanner.Result) (*stack.WorkspaceStructure, bool) {
	resp, err := ac.LLM.Classify(ctx, llm.Request{
		Kind:     llm.KindOrchestrator,
		RepoPath: ac.RepoPath,
		Files:    scan.RootEntries,
	})
	if err != nil || resp.Confidence < llm.MinConfidence {
		return nil, false
	}

	orchID := stack.CustomOrchestrator(stack.CustomMeta{
		Name:        resp.Name,
		ConfigFiles: resp.ConfigFiles,
		CacheDirs:   resp.CacheDirs,
	})
	ac.LogDecision("workspace structure: LLM fallback classified orchestrator %q (confidence %.2f)", resp.Name, resp.Confidence)
	ws := singleApplicationWorkspace(ac.RepoPath, scan)
	ws.Orchestrator = &orchID
	return ws, true
}

// singleApplicationWorkspace is the default when no orchestrator
// manifest is recognized: the repository root is the one application,
// with an empty dependency graph (SPEC_FULL §4.5).
func singleApplicationWorkspace(repoPath string, scan *scanner.Result) *stack.WorkspaceStructure {
	app := stack.Application{Name: filepath.Base(repoPath), Path: "."}
	if len(scan.ManifestPaths) > 0 {
		app.ManifestPath = scan.ManifestPaths[0]
	}
	return &stack.WorkspaceStructure{
		Applications:    []stack.Application{app},
		BuildOrder:      []string{app.Path},
		DependencyGraph: map[string][]string{},
	}
}

func rootCachePhase(_ context.Context, ac *analysis.Context, _ Deps) error {
	ws := ac.Workspace()
	var paths []string

	if ws.Orchestrator != nil {
		if ws.Orchestrator.IsCustom() {
			paths = ws.Orchestrator.Custom().CacheDirs
		} else {
			for _, o := range ac.Registry.Orchestrators() {
				if o.ID().Equal(*ws.Orchestrator) {
					paths = o.CacheDirs()
					break
				}
			}
		}
	}

	ac.SetRootCache(&analysis.RootCache{Paths: paths})
	return nil
}

func serviceAnalysisPhase(ctx context.Context, ac *analysis.Context, deps Deps) error {
	ac.SetServiceAnalyses(nil)

	ws := ac.Workspace()
	byPath := make(map[string]stack.Application, len(ws.Applications))
	for _, app := range ws.Applications {
		byPath[app.Path] = app
	}

	var orch stack.MonorepoOrchestrator
	if ws.Orchestrator != nil && !ws.Orchestrator.IsCustom() {
		for _, o := range ac.Registry.Orchestrators() {
			if o.ID().Equal(*ws.Orchestrator) {
				orch = o
				break
			}
		}
	}

	svcDeps := service.Deps{WolfiIndex: deps.WolfiIndex, ReadFile: deps.ReadFile, Orchestrator: orch}

	for _, path := range ws.BuildOrder {
		app, ok := byPath[path]
		if !ok {
			continue
		}
		var hints []string
		if deps.DependencyHints != nil {
			hints = deps.DependencyHints(app)
		}
		sc := analysis.NewServiceContext(ac, app, hints)
		if err := service.Run(ctx, sc, svcDeps); err != nil {
			return err
		}
		ac.AppendServiceAnalysis(sc.ToAnalysis())
	}
	return nil
}

func assemblePhase(_ context.Context, ac *analysis.Context, deps Deps) error {
	builds, err := assembler.Assemble(ac.ServiceAnalyses(), ac.RootCache(), deps.WolfiIndex)
	if err != nil {
		return err
	}
	ac.SetAssemble(builds)
	return nil
}
