package runtime

import (
	"regexp"

	"github.com/containifyci/universal-build/pkg/stack"
)

type jvmRuntime struct{}

func (jvmRuntime) ID() stack.RuntimeId          { return stack.RuntimeJVM }
func (jvmRuntime) BaseImage(v string) string    { return "eclipse-temurin:" + v + "-jre-alpine" }
func (jvmRuntime) RequiredPackages(stack.FrameworkId, []string) []string {
	return []string{"openjdk-17-default-jre"}
}
func (jvmRuntime) StartCommand(entrypoint string) []string { return []string{"/bin/sh", "-c", entrypoint} }
func (jvmRuntime) portPattern() *regexp.Regexp {
	return regexp.MustCompile(`(?i)server\.port[=:]\s*(\d+)`)
}
func (jvmRuntime) envPattern() *regexp.Regexp {
	return regexp.MustCompile(`System\.getenv\("([A-Za-z0-9_]+)"\)`)
}
func (jvmRuntime) DefaultEnv() map[string]string { return map[string]string{"JAVA_TOOL_OPTIONS": ""} }

type nodeRuntime struct{}

func (nodeRuntime) ID() stack.RuntimeId       { return stack.RuntimeNode }
func (nodeRuntime) BaseImage(v string) string { return "node:" + v + "-alpine" }
func (nodeRuntime) RequiredPackages(stack.FrameworkId, []string) []string {
	return []string{"nodejs"}
}
func (nodeRuntime) StartCommand(entrypoint string) []string { return []string{"/bin/sh", "-c", entrypoint} }
func (nodeRuntime) portPattern() *regexp.Regexp {
	return regexp.MustCompile(`\.listen\(\s*(\d+)`)
}
func (nodeRuntime) envPattern() *regexp.Regexp {
	return regexp.MustCompile(`process\.env\.([A-Za-z0-9_]+)`)
}
func (nodeRuntime) DefaultEnv() map[string]string { return map[string]string{"NODE_ENV": "production"} }

type pythonRuntime struct{}

func (pythonRuntime) ID() stack.RuntimeId       { return stack.RuntimePython }
func (pythonRuntime) BaseImage(v string) string { return "python:" + v + "-slim" }
func (pythonRuntime) RequiredPackages(stack.FrameworkId, []string) []string {
	return []string{"python-3.12"}
}
func (pythonRuntime) StartCommand(entrypoint string) []string { return []string{"/bin/sh", "-c", entrypoint} }
func (pythonRuntime) portPattern() *regexp.Regexp {
	return regexp.MustCompile(`port\s*=\s*(\d+)`)
}
func (pythonRuntime) envPattern() *regexp.Regexp {
	return regexp.MustCompile(`os\.(?:environ\.get|getenv)\(\s*["']([A-Za-z0-9_]+)["']`)
}
func (pythonRuntime) DefaultEnv() map[string]string {
	return map[string]string{"PYTHONUNBUFFERED": "1"}
}

type rubyRuntime struct{}

func (rubyRuntime) ID() stack.RuntimeId       { return stack.RuntimeRuby }
func (rubyRuntime) BaseImage(v string) string { return "ruby:" + v + "-alpine" }
func (rubyRuntime) RequiredPackages(stack.FrameworkId, []string) []string {
	return []string{"ruby"}
}
func (rubyRuntime) StartCommand(entrypoint string) []string { return []string{"/bin/sh", "-c", entrypoint} }
func (rubyRuntime) portPattern() *regexp.Regexp {
	return regexp.MustCompile(`set\s+:port,\s*(\d+)`)
}
func (rubyRuntime) envPattern() *regexp.Regexp {
	return regexp.MustCompile(`ENV\[["']([A-Za-z0-9_]+)["']\]`)
}
func (rubyRuntime) DefaultEnv() map[string]string { return map[string]string{"RACK_ENV": "production"} }

// phpExtensionsAlways are installed unconditionally (SPEC_FULL §4.7).
var phpExtensionsAlways = []string{
	"ctype", "phar", "openssl", "mbstring", "xml", "dom", "curl",
	"json", "session", "tokenizer", "fileinfo", "iconv",
}

type phpRuntime struct{}

func (phpRuntime) ID() stack.RuntimeId       { return stack.RuntimePHP }
func (phpRuntime) BaseImage(v string) string { return "php:" + v + "-fpm-alpine" }

// RequiredPackages installs the always-on extension set, then adds
// pdo_mysql/pdo_pgsql/redis/intl/mysqli/gd/exif only when the
// detected framework or its composer dependencies call for them.
func (phpRuntime) RequiredPackages(framework stack.FrameworkId, dependencies []string) []string {
	pkgs := append([]string{}, phpExtensionsAlways...)

	wantsDB := dependsOnAny(dependencies, "laravel/framework", "illuminate/database", "doctrine/dbal", "symfony/doctrine-bridge")
	wantsRedis := dependsOnAny(dependencies, "predis/predis", "illuminate/redis")
	wantsWordPress := dependsOnAny(dependencies, "johnpbloch/wordpress", "wordpress")

	switch framework.Name() {
	case "laravel":
		pkgs = append(pkgs, "pdo_mysql", "pdo_pgsql", "intl")
	case "symfony":
		pkgs = append(pkgs, "pdo_mysql", "pdo_pgsql", "intl")
	case "wordpress":
		pkgs = append(pkgs, "mysqli", "gd", "exif")
	}
	if wantsWordPress {
		pkgs = append(pkgs, "mysqli", "gd", "exif")
	}
	if wantsDB {
		pkgs = append(pkgs, "pdo_mysql", "pdo_pgsql")
	}
	if wantsRedis {
		pkgs = append(pkgs, "redis")
	}
	return dedupeStrings(pkgs)
}
func (phpRuntime) StartCommand(entrypoint string) []string { return []string{"/bin/sh", "-c", entrypoint} }
func (phpRuntime) portPattern() *regexp.Regexp {
	return regexp.MustCompile(`APP_PORT[=:]\s*(\d+)`)
}
func (phpRuntime) envPattern() *regexp.Regexp {
	return regexp.MustCompile(`(?:getenv|env)\(\s*["']([A-Za-z0-9_]+)["']`)
}
func (phpRuntime) DefaultEnv() map[string]string { return map[string]string{"APP_ENV": "production"} }

type dotnetRuntime struct{}

func (dotnetRuntime) ID() stack.RuntimeId       { return stack.RuntimeDotnet }
func (dotnetRuntime) BaseImage(v string) string { return "mcr.microsoft.com/dotnet/aspnet:" + v + "-alpine" }
func (dotnetRuntime) RequiredPackages(stack.FrameworkId, []string) []string {
	return []string{"dotnet-runtime-8.0"}
}
func (dotnetRuntime) StartCommand(entrypoint string) []string { return []string{"/bin/sh", "-c", entrypoint} }
func (dotnetRuntime) portPattern() *regexp.Regexp {
	return regexp.MustCompile(`ASPNETCORE_URLS.*:(\d+)`)
}
func (dotnetRuntime) envPattern() *regexp.Regexp {
	return regexp.MustCompile(`Environment\.GetEnvironmentVariable\("([A-Za-z0-9_]+)"\)`)
}
func (dotnetRuntime) DefaultEnv() map[string]string {
	return map[string]string{"DOTNET_RUNNING_IN_CONTAINER": "true"}
}

type beamRuntime struct{}

func (beamRuntime) ID() stack.RuntimeId       { return stack.RuntimeBEAM }
func (beamRuntime) BaseImage(v string) string { return "elixir:" + v + "-alpine" }
func (beamRuntime) RequiredPackages(stack.FrameworkId, []string) []string {
	return []string{"ncurses-terminfo-base", "libstdc++"}
}
func (beamRuntime) StartCommand(entrypoint string) []string { return []string{"/bin/sh", "-c", entrypoint} }
func (beamRuntime) portPattern() *regexp.Regexp {
	return regexp.MustCompile(`(?i)port:\s*(\d+)`)
}
func (beamRuntime) envPattern() *regexp.Regexp {
	return regexp.MustCompile(`System\.get_env\("([A-Za-z0-9_]+)"\)`)
}
func (beamRuntime) DefaultEnv() map[string]string { return map[string]string{"MIX_ENV": "prod"} }

type nativeRuntime struct{}

func (nativeRuntime) ID() stack.RuntimeId       { return stack.RuntimeNative }
func (nativeRuntime) BaseImage(string) string   { return "alpine:latest" }
func (nativeRuntime) RequiredPackages(stack.FrameworkId, []string) []string {
	return nil
}
func (nativeRuntime) StartCommand(entrypoint string) []string { return []string{"/bin/sh", "-c", entrypoint} }
func (nativeRuntime) portPattern() *regexp.Regexp {
	return regexp.MustCompile(`ListenAndServe\(["':]*:?(\d+)`)
}
func (nativeRuntime) envPattern() *regexp.Regexp {
	return regexp.MustCompile(`os\.Getenv\("([A-Za-z0-9_]+)"\)`)
}
func (nativeRuntime) DefaultEnv() map[string]string { return nil }

// llmFallbackRuntime marks languages/stacks the deterministic registry
// could not classify; TryDeterministicConfig always declines for it.
type llmFallbackRuntime struct{}

func (llmFallbackRuntime) ID() stack.RuntimeId                                  { return stack.RuntimeLLMFallback }
func (llmFallbackRuntime) BaseImage(string) string                              { return "" }
func (llmFallbackRuntime) RequiredPackages(stack.FrameworkId, []string) []string { return nil }
func (llmFallbackRuntime) StartCommand(entrypoint string) []string              { return []string{entrypoint} }
func (llmFallbackRuntime) portPattern() *regexp.Regexp                          { return nil }
func (llmFallbackRuntime) envPattern() *regexp.Regexp                           { return nil }
func (llmFallbackRuntime) DefaultEnv() map[string]string                        { return nil }

func dependsOnAny(deps []string, names ...string) bool {
	for _, d := range deps {
		for _, n := range names {
			if d == n {
				return true
			}
		}
	}
	return false
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
