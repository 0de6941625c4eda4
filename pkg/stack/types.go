package stack

import "fmt"

// Stack is the detected technology stack for a single application.
type Stack struct {
	Language     LanguageId
	BuildSystem  BuildSystemId
	Framework    *FrameworkId
	Orchestrator *OrchestratorId
	Version      *string
}

// Validate checks the framework-compatibility invariant (SPEC_FULL §3.2):
// when Framework is set it must declare Language and BuildSystem among its
// compatible sets.
func (s Stack) Validate() error {
	if s.Framework == nil {
		return nil
	}
	fw, ok := frameworkDefault(*s.Framework)
	if !ok {
		// Custom frameworks carry no static compatibility arrays to check.
		return nil
	}
	if !containsLang(fw.CompatibleLanguages(), s.Language) {
		return fmt.Errorf("stack: framework %q is not compatible with language %q", s.Framework.Name(), s.Language.Name())
	}
	if !containsBuildSystem(fw.CompatibleBuildSystems(), s.BuildSystem) {
		return fmt.Errorf("stack: framework %q is not compatible with build system %q", s.Framework.Name(), s.BuildSystem.Name())
	}
	return nil
}

func containsLang(list []LanguageId, l LanguageId) bool {
	for _, x := range list {
		if x.Equal(l) {
			return true
		}
	}
	return false
}

func containsBuildSystem(list []BuildSystemId, b BuildSystemId) bool {
	for _, x := range list {
		if x.Equal(b) {
			return true
		}
	}
	return false
}

// DetectionStack is the result of composite detection: a build system paired
// with its resolved language, before framework/orchestrator are known.
type DetectionStack struct {
	BuildSystem BuildSystemId
	Language    LanguageId
}

// ManifestPattern matches manifests by filename (case-insensitive) and,
// optionally, a content substring/prefix hint.
type ManifestPattern struct {
	Filename      string
	ContentHint   string
}

// DependencyPattern matches a dependency declaration against a framework.
// Exactly one field should be set per pattern instance.
type DependencyPattern struct {
	MavenGroupArtifact string // "group:artifact"
	NpmPackage         string
	PypiPackage        string
	Regex              string
}

// BuildSystem is the capability interface for a build tool: cargo, maven,
// npm, pip, etc.
type BuildSystem interface {
	ID() BuildSystemId
	// ManifestPatterns lists the manifest filenames (and optional content
	// hints) that identify this build system.
	ManifestPatterns() []ManifestPattern
	// LanguageHints returns the language(s) this build system implies,
	// most-likely first; the registry breaks ties using file-count.
	LanguageHints() []LanguageId
	// BuildTemplate inspects the manifest content and produces the recipe
	// ingredients for the BuildRecipe service phase (SPEC_FULL §4.6.2).
	BuildTemplate(idx WolfiIndex, manifestContent []byte) (BuildTemplate, error)
}

// BuildTemplate is what a BuildSystem produces for the BuildRecipe phase.
type BuildTemplate struct {
	BuildPackages   []string
	RuntimePackages []string
	Commands        []string
	CachePaths      []string
}

// WolfiIndex is the narrow capability BuildSystem/LanguageDefinition/Runtime
// implementations need from the Wolfi Package Index (full interface lives in
// pkg/wolfi; this avoids an import cycle).
type WolfiIndex interface {
	HasPackage(name string) bool
	GetVersions(stem string) []string
	GetLatestVersion(stem string) (string, bool)
}

// LanguageDefinition is the capability interface for a programming language.
type LanguageDefinition interface {
	ID() LanguageId
	// ExtractVersion reads the language version from manifest content
	// (e.g. the "go" directive in go.mod, "engines.node" in package.json).
	ExtractVersion(manifestContent []byte) (string, bool)
	// DefaultRuntime returns the runtime family this language always maps
	// to (JVM, Node, Python, Native, ...).
	DefaultRuntime() RuntimeId
}

// Framework is the capability interface for an application framework.
type Framework interface {
	ID() FrameworkId
	CompatibleLanguages() []LanguageId
	CompatibleBuildSystems() []BuildSystemId
	// Detect performs a deterministic pattern match over dependencies and
	// scanned files.
	Detect(dependencies []string, files []string) bool
	DefaultPorts() []uint16
	HealthEndpoints(files []string) []string
	RuntimeEnvVars(servicePath string, port uint16) map[string]string
	EntrypointCommand(files []string, port uint16) (string, bool)
	DependencyPatterns() []DependencyPattern
}

// MonorepoOrchestrator is the capability interface for a workspace
// orchestrator (Turborepo, Nx, Lerna, pnpm workspaces, Cargo workspaces).
type MonorepoOrchestrator interface {
	ID() OrchestratorId
	// ManifestPatterns lists the filenames that identify this orchestrator
	// at the repository root.
	ManifestPatterns() []ManifestPattern
	// WorkspaceStructure inspects the repository and produces the full
	// workspace topology (SPEC_FULL §3.3, §4.5).
	WorkspaceStructure(repoPath string, manifestContent []byte) (WorkspaceStructure, error)
	// WrapCommand wraps a per-package build command with the
	// orchestrator's invocation convention (e.g. "turbo run build
	// --filter={app}").
	WrapCommand(appName, command string) string
	CacheDirs() []string
}

// RuntimeId identifies the platform execution environment a language maps
// to. Unlike the other IDs this has no Custom variant: every language's
// DefaultRuntime() must resolve to one of these, with RuntimeNative /
// RuntimeLLMFallback covering the long tail.
type RuntimeId string

const (
	RuntimeJVM         RuntimeId = "jvm"
	RuntimeNode        RuntimeId = "node"
	RuntimePython      RuntimeId = "python"
	RuntimeRuby        RuntimeId = "ruby"
	RuntimePHP         RuntimeId = "php"
	RuntimeDotnet      RuntimeId = "dotnet"
	RuntimeBEAM        RuntimeId = "beam"
	RuntimeNative      RuntimeId = "native"
	RuntimeLLMFallback RuntimeId = "llm-fallback"
)

// Application is a workspace package that produces a runnable artifact.
type Application struct {
	Name         string
	Path         string
	ManifestPath string
}

// Library is a workspace package depended on but not independently runnable.
type Library struct {
	Name string
	Path string
}

// WorkspaceStructure is the output of the Workspace Structure phase
// (SPEC_FULL §3.3).
type WorkspaceStructure struct {
	Orchestrator    *OrchestratorId
	Applications    []Application
	Libraries       []Library
	BuildOrder      []string
	DependencyGraph map[string][]string
}
