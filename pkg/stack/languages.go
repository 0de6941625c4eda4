package stack

import (
	"regexp"
)

// goLanguage reads the "go" directive from go.mod.
type goLanguage struct{}

var goVersionRe = regexp.MustCompile(`(?m)^go\s+(\d+\.\d+(?:\.\d+)?)`)

func (goLanguage) ID() LanguageId { return Lang(LangGo) }
func (goLanguage) ExtractVersion(manifest []byte) (string, bool) {
	m := goVersionRe.FindSubmatch(manifest)
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}
func (goLanguage) DefaultRuntime() RuntimeId { return RuntimeNative }

// nodeLanguage reads "engines.node" from package.json.
type nodeLanguage struct{}

var nodeEngineRe = regexp.MustCompile(`"engines"\s*:\s*\{[^}]*"node"\s*:\s*"([^"]+)"`)

func (nodeLanguage) ID() LanguageId { return Lang(LangNode) }
func (nodeLanguage) ExtractVersion(manifest []byte) (string, bool) {
	m := nodeEngineRe.FindSubmatch(manifest)
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}
func (nodeLanguage) DefaultRuntime() RuntimeId { return RuntimeNode }

// pythonLanguage reads "requires-python" from pyproject.toml or a shebang
// hint from requirements.txt (no version information there, so it reports
// not-found).
type pythonLanguage struct{}

var pyRequiresRe = regexp.MustCompile(`requires-python\s*=\s*"([^"]+)"`)

func (pythonLanguage) ID() LanguageId { return Lang(LangPython) }
func (pythonLanguage) ExtractVersion(manifest []byte) (string, bool) {
	m := pyRequiresRe.FindSubmatch(manifest)
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}
func (pythonLanguage) DefaultRuntime() RuntimeId { return RuntimePython }

// javaLanguage reads "<java.version>" from pom.xml, or
// sourceCompatibility from build.gradle.
type javaLanguage struct{}

var javaVersionRe = regexp.MustCompile(`<java\.version>([^<]+)</java\.version>|sourceCompatibility\s*=\s*['"]?(\d+)`)

func (javaLanguage) ID() LanguageId { return Lang(LangJava) }
func (javaLanguage) ExtractVersion(manifest []byte) (string, bool) {
	m := javaVersionRe.FindSubmatch(manifest)
	if m == nil {
		return "", false
	}
	if len(m[1]) > 0 {
		return string(m[1]), true
	}
	return string(m[2]), true
}
func (javaLanguage) DefaultRuntime() RuntimeId { return RuntimeJVM }

// rustLanguage reads "rust-version" from Cargo.toml.
type rustLanguage struct{}

var rustVersionRe = regexp.MustCompile(`rust-version\s*=\s*"([^"]+)"`)

func (rustLanguage) ID() LanguageId { return Lang(LangRust) }
func (rustLanguage) ExtractVersion(manifest []byte) (string, bool) {
	m := rustVersionRe.FindSubmatch(manifest)
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}
func (rustLanguage) DefaultRuntime() RuntimeId { return RuntimeNative }

// phpLanguage reads "php" from composer.json's "require".
type phpLanguage struct{}

var phpVersionRe = regexp.MustCompile(`"require"\s*:\s*\{[^}]*"php"\s*:\s*"([^"]+)"`)

func (phpLanguage) ID() LanguageId { return Lang(LangPHP) }
func (phpLanguage) ExtractVersion(manifest []byte) (string, bool) {
	m := phpVersionRe.FindSubmatch(manifest)
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}
func (phpLanguage) DefaultRuntime() RuntimeId { return RuntimePHP }

// rubyLanguage reads "ruby" pin from Gemfile.
type rubyLanguage struct{}

var rubyVersionRe = regexp.MustCompile(`ruby\s+["']([^"']+)["']`)

func (rubyLanguage) ID() LanguageId { return Lang(LangRuby) }
func (rubyLanguage) ExtractVersion(manifest []byte) (string, bool) {
	m := rubyVersionRe.FindSubmatch(manifest)
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}
func (rubyLanguage) DefaultRuntime() RuntimeId { return RuntimeRuby }

// dotnetLanguage reads "<TargetFramework>" from a .csproj.
type dotnetLanguage struct{}

var dotnetVersionRe = regexp.MustCompile(`<TargetFramework>net([^<]+)</TargetFramework>`)

func (dotnetLanguage) ID() LanguageId { return Lang(LangDotnet) }
func (dotnetLanguage) ExtractVersion(manifest []byte) (string, bool) {
	m := dotnetVersionRe.FindSubmatch(manifest)
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}
func (dotnetLanguage) DefaultRuntime() RuntimeId { return RuntimeDotnet }

func registerBuiltinLanguages(r *StackRegistry) {
	r.RegisterLanguage(goLanguage{})
	r.RegisterLanguage(nodeLanguage{})
	r.RegisterLanguage(pythonLanguage{})
	r.RegisterLanguage(javaLanguage{})
	r.RegisterLanguage(rustLanguage{})
	r.RegisterLanguage(phpLanguage{})
	r.RegisterLanguage(rubyLanguage{})
	r.RegisterLanguage(dotnetLanguage{})
}
