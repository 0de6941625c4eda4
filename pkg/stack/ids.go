// Package stack holds the typed identifiers, capability interfaces and the
// registry that routes manifest content to a concrete Stack.
package stack

import "fmt"

// LanguageId identifies a programming language. The zero value is invalid;
// callers that need an open-ended identifier use CustomLang.
type LanguageId struct {
	known  knownLanguage
	custom *CustomMeta
}

type knownLanguage string

const (
	LangGo     knownLanguage = "go"
	LangRust   knownLanguage = "rust"
	LangNode   knownLanguage = "node"
	LangPython knownLanguage = "python"
	LangJava   knownLanguage = "java"
	LangPHP    knownLanguage = "php"
	LangRuby   knownLanguage = "ruby"
	LangDotnet knownLanguage = "dotnet"
)

// CustomMeta carries the metadata an LLM-identified (or otherwise
// unrecognized) variant needs to drive downstream phases without a
// central lookup table.
type CustomMeta struct {
	Name           string
	ManifestFiles  []string
	BuildCommands  []string
	CacheDirs      []string
	ConfigFiles    []string
	DependencyHint string
}

func Lang(k knownLanguage) LanguageId { return LanguageId{known: k} }

func CustomLang(meta CustomMeta) LanguageId {
	m := meta
	return LanguageId{custom: &m}
}

// Name returns the serialized token: the known lowercase/kebab name, or the
// custom variant's Name field. Known and custom variants are
// indistinguishable once serialized, by design (SPEC_FULL §3.1).
func (l LanguageId) Name() string {
	if l.custom != nil {
		return l.custom.Name
	}
	return string(l.known)
}

func (l LanguageId) IsCustom() bool       { return l.custom != nil }
func (l LanguageId) Custom() *CustomMeta  { return l.custom }
func (l LanguageId) Equal(o LanguageId) bool { return l.Name() == o.Name() }

func (l LanguageId) String() string { return l.Name() }

func (l LanguageId) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", l.Name())), nil
}

// BuildSystemId identifies a build tool (cargo, maven, npm, ...).
type BuildSystemId struct {
	known  knownBuildSystem
	custom *CustomMeta
}

type knownBuildSystem string

const (
	BSCargo    knownBuildSystem = "cargo"
	BSMaven    knownBuildSystem = "maven"
	BSGradle   knownBuildSystem = "gradle"
	BSNpm      knownBuildSystem = "npm"
	BSYarn     knownBuildSystem = "yarn"
	BSPnpm     knownBuildSystem = "pnpm"
	BSPip      knownBuildSystem = "pip"
	BSPoetry   knownBuildSystem = "poetry"
	BSComposer knownBuildSystem = "composer"
	BSBundler  knownBuildSystem = "bundler"
	BSDotnet   knownBuildSystem = "dotnet-sdk"
	BSGoMod    knownBuildSystem = "go-modules"
)

func BuildSys(k knownBuildSystem) BuildSystemId { return BuildSystemId{known: k} }

func CustomBuildSystem(meta CustomMeta) BuildSystemId {
	m := meta
	return BuildSystemId{custom: &m}
}

func (b BuildSystemId) Name() string {
	if b.custom != nil {
		return b.custom.Name
	}
	return string(b.known)
}
func (b BuildSystemId) IsCustom() bool      { return b.custom != nil }
func (b BuildSystemId) Custom() *CustomMeta { return b.custom }
func (b BuildSystemId) Equal(o BuildSystemId) bool { return b.Name() == o.Name() }
func (b BuildSystemId) String() string      { return b.Name() }
func (b BuildSystemId) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", b.Name())), nil
}

// FrameworkId identifies an application framework (Express, Spring Boot, ...).
type FrameworkId struct {
	known  knownFramework
	custom *CustomMeta
}

type knownFramework string

const (
	FwExpress    knownFramework = "express"
	FwFastify    knownFramework = "fastify"
	FwNestJS     knownFramework = "nestjs"
	FwSpringBoot knownFramework = "spring-boot"
	FwQuarkus    knownFramework = "quarkus"
	FwDjango     knownFramework = "django"
	FwFlask      knownFramework = "flask"
	FwFastAPI    knownFramework = "fastapi"
	FwLaravel    knownFramework = "laravel"
	FwSymfony    knownFramework = "symfony"
	FwWordPress  knownFramework = "wordpress"
	FwRails      knownFramework = "rails"
	FwActix      knownFramework = "actix"
	FwAxum       knownFramework = "axum"
	FwAspNetCore knownFramework = "aspnetcore"
)

func Fw(k knownFramework) FrameworkId { return FrameworkId{known: k} }

func CustomFramework(meta CustomMeta) FrameworkId {
	m := meta
	return FrameworkId{custom: &m}
}

func (f FrameworkId) Name() string {
	if f.custom != nil {
		return f.custom.Name
	}
	return string(f.known)
}
func (f FrameworkId) IsCustom() bool      { return f.custom != nil }
func (f FrameworkId) Custom() *CustomMeta { return f.custom }
func (f FrameworkId) Equal(o FrameworkId) bool { return f.Name() == o.Name() }
func (f FrameworkId) String() string      { return f.Name() }
func (f FrameworkId) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", f.Name())), nil
}

// OrchestratorId identifies a monorepo orchestrator (Turborepo, Nx, ...).
type OrchestratorId struct {
	known  knownOrchestrator
	custom *CustomMeta
}

type knownOrchestrator string

const (
	OrchTurborepo     knownOrchestrator = "turborepo"
	OrchNx            knownOrchestrator = "nx"
	OrchLerna         knownOrchestrator = "lerna"
	OrchPnpmWorkspace knownOrchestrator = "pnpm-workspace"
	OrchCargoWorkspace knownOrchestrator = "cargo-workspace"
)

func Orch(k knownOrchestrator) OrchestratorId { return OrchestratorId{known: k} }

func CustomOrchestrator(meta CustomMeta) OrchestratorId {
	m := meta
	return OrchestratorId{custom: &m}
}

func (o OrchestratorId) Name() string {
	if o.custom != nil {
		return o.custom.Name
	}
	return string(o.known)
}
func (o OrchestratorId) IsCustom() bool      { return o.custom != nil }
func (o OrchestratorId) Custom() *CustomMeta { return o.custom }
func (o OrchestratorId) Equal(p OrchestratorId) bool { return o.Name() == p.Name() }
func (o OrchestratorId) String() string      { return o.Name() }
func (o OrchestratorId) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", o.Name())), nil
}
