// Package analysis implements the Analysis Context (SPEC_FULL §3.5)
// and ServiceContext (§3.6): the mutable, single-writer-per-slot state
// the Workflow Phase Runner and Service Phase Runner thread through
// the pipeline. Grounded on the teacher's `pkg/language/orchestrator.go`
// phase-context passing shape, generalized from one build run to the
// repository+per-service slot structure SPEC_FULL requires.
package analysis

import (
	"fmt"
	"sync"

	"github.com/containifyci/universal-build/pkg/llm"
	"github.com/containifyci/universal-build/pkg/progress"
	"github.com/containifyci/universal-build/pkg/runtime"
	"github.com/containifyci/universal-build/pkg/scanner"
	"github.com/containifyci/universal-build/pkg/stack"
	"github.com/containifyci/universal-build/pkg/universalbuild"
)

// RootCache is the RootCache phase's output slot: the set of
// workspace-level cache directories contributed by a monorepo
// orchestrator (e.g. `.turbo/`, `.nx/`), merged later with each
// service's build-system cache paths (SPEC_FULL §4.6 step 4).
type RootCache struct {
	Paths []string
}

// ServiceAnalysis is one application's fully resolved analysis:
// the accumulated output of all four Service Phase Runner phases.
type ServiceAnalysis struct {
	Application   stack.Application
	Stack         stack.Stack
	BuildTemplate stack.BuildTemplate
	RuntimeConfig runtime.Config
	CachePaths    []string
}

// Context is the repository-level Analysis Context. It is created
// once at pipeline start and dropped at pipeline end; each phase reads
// slots earlier phases filled and writes exactly its own slot.
// Reading a slot that has not been written panics: per SPEC_FULL §3.5
// this is a programmer error, not a runtime retryable condition.
type Context struct {
	RepoPath string
	LLM      llm.Client
	Registry *stack.StackRegistry
	Mode     llm.DetectionMode
	Sink     progress.Sink

	mu              sync.Mutex
	scan            *scanner.Result
	workspace       *stack.WorkspaceStructure
	rootCache       *RootCache
	serviceAnalyses *[]ServiceAnalysis
	assemble        *[]universalbuild.UniversalBuild
	decisionLog     []string
}

// New creates a Context with no slots filled.
func New(repoPath string, reg *stack.StackRegistry, client llm.Client, mode llm.DetectionMode, sink progress.Sink) *Context {
	if sink == nil {
		sink = progress.Discard
	}
	return &Context{RepoPath: repoPath, Registry: reg, LLM: llm.ForMode(mode, client), Mode: mode, Sink: sink}
}

func unfilledSlot(name string) {
	panic(fmt.Sprintf("analysis: slot %q read before being written", name))
}

func (c *Context) SetScan(r *scanner.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scan = r
}

func (c *Context) Scan() *scanner.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scan == nil {
		unfilledSlot("Scan")
	}
	return c.scan
}

func (c *Context) SetWorkspace(w *stack.WorkspaceStructure) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.workspace = w
}

func (c *Context) Workspace() *stack.WorkspaceStructure {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.workspace == nil {
		unfilledSlot("Workspace")
	}
	return c.workspace
}

func (c *Context) SetRootCache(rc *RootCache) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rootCache = rc
}

func (c *Context) RootCache() *RootCache {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rootCache == nil {
		unfilledSlot("RootCache")
	}
	return c.rootCache
}

func (c *Context) SetServiceAnalyses(sa []ServiceAnalysis) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.serviceAnalyses = &sa
}

func (c *Context) AppendServiceAnalysis(sa ServiceAnalysis) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.serviceAnalyses == nil {
		c.serviceAnalyses = &[]ServiceAnalysis{}
	}
	*c.serviceAnalyses = append(*c.serviceAnalyses, sa)
}

func (c *Context) ServiceAnalyses() []ServiceAnalysis {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.serviceAnalyses == nil {
		unfilledSlot("ServiceAnalyses")
	}
	return *c.serviceAnalyses
}

func (c *Context) SetAssemble(builds []universalbuild.UniversalBuild) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.assemble = &builds
}

func (c *Context) Assemble() []universalbuild.UniversalBuild {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.assemble == nil {
		unfilledSlot("Assemble")
	}
	return *c.assemble
}

// LogDecision appends a human-readable heuristic decision (e.g. "LLM
// fallback chosen for orchestrator detection: confidence 0.71") to the
// shared decision log, surfaced in verbose output.
func (c *Context) LogDecision(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.decisionLog = append(c.decisionLog, fmt.Sprintf(format, args...))
}

func (c *Context) DecisionLog() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.decisionLog))
	copy(out, c.decisionLog)
	return out
}

// ServiceContext is the per-service read-mostly view passed to Service
// Phase Runner phases (SPEC_FULL §3.6). Service phases may not mutate
// repository-level results; they accumulate into Stack and
// RuntimeConfig only.
type ServiceContext struct {
	App          stack.Application
	Scan         *scanner.Result
	Dependencies []string
	Registry     *stack.StackRegistry
	LLM          llm.Client
	Mode         llm.DetectionMode

	Stack         stack.Stack
	BuildTemplate stack.BuildTemplate
	RuntimeConfig runtime.Config
	CachePaths    []string

	decisionLog func(format string, args ...any)
}

// NewServiceContext builds a ServiceContext for one application, wired
// to the repository Context's decision log and shared handles.
func NewServiceContext(ctx *Context, app stack.Application, dependencies []string) *ServiceContext {
	return &ServiceContext{
		App:          app,
		Scan:         ctx.Scan(),
		Dependencies: dependencies,
		Registry:     ctx.Registry,
		LLM:          ctx.LLM,
		Mode:         ctx.Mode,
		decisionLog:  ctx.LogDecision,
	}
}

func (s *ServiceContext) LogDecision(format string, args ...any) {
	if s.decisionLog != nil {
		s.decisionLog(format, args...)
	}
}

// ToAnalysis materializes the accumulated ServiceContext into the
// immutable ServiceAnalysis the repository Context stores.
func (s *ServiceContext) ToAnalysis() ServiceAnalysis {
	return ServiceAnalysis{
		Application:   s.App,
		Stack:         s.Stack,
		BuildTemplate: s.BuildTemplate,
		RuntimeConfig: s.RuntimeConfig,
		CachePaths:    s.CachePaths,
	}
}
