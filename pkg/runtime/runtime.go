// Package runtime implements the Runtime / Framework Logic phase
// (SPEC_FULL §4.7): the fixed-per-language runtime conventions
// (base image, required packages, start command) plus the
// deterministic config-extraction pass a Framework cannot decide on
// its own (port/health/env/entrypoint scanning merged with framework
// defaults). Adapted from the teacher's
// pkg/builder/common/types.go LanguageDefaults/LanguageDefaultsRegistry
// pattern, re-keyed from container.BuildType to stack.RuntimeId and
// extended with the fields SPEC_FULL needs.
package runtime

import (
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/containifyci/universal-build/pkg/stack"
)

// SourceFile is one file's path and content, the unit the
// RuntimeConfig phase scans for port/health/env/entrypoint hints.
type SourceFile struct {
	Path    string
	Content []byte
}

// Config is the resolved runtime configuration for one service,
// merged from deterministic source scanning and framework defaults
// (SPEC_FULL §4.6 step 3).
type Config struct {
	Entrypoint string
	Port       uint16
	Health     string
	Env        map[string]string
}

// Runtime is a fixed function of language: it never branches on
// framework name, only on the Framework handle passed to it.
type Runtime interface {
	ID() stack.RuntimeId

	// BaseImage is an informational default only (e.g. for comments
	// or diagnostics); the emitted UniversalBuild never carries a
	// `base` field because Wolfi is always the implicit base.
	BaseImage(version string) string

	RequiredPackages(framework stack.FrameworkId, dependencies []string) []string
	StartCommand(entrypoint string) []string

	portPattern() *regexp.Regexp
	envPattern() *regexp.Regexp
	DefaultEnv() map[string]string
}

var (
	registryMu sync.RWMutex
	registry   = map[stack.RuntimeId]Runtime{}
)

func register(r Runtime) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[r.ID()] = r
}

// For returns the registered Runtime for id.
func For(id stack.RuntimeId) (Runtime, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	r, ok := registry[id]
	return r, ok
}

func init() {
	register(jvmRuntime{})
	register(nodeRuntime{})
	register(pythonRuntime{})
	register(rubyRuntime{})
	register(phpRuntime{})
	register(dotnetRuntime{})
	register(beamRuntime{})
	register(nativeRuntime{})
	register(llmFallbackRuntime{})
}

var envPattern = func(re string) *regexp.Regexp { return regexp.MustCompile(re) }

// TryDeterministicConfig scans files and merges with framework
// defaults per SPEC_FULL §4.6 step 3. The second return value is
// false only when the runtime itself supplies no usable default (the
// LLM-fallback runtime); callers fall back to ExtractConfigLLM in
// that case.
func TryDeterministicConfig(rt Runtime, files []SourceFile, framework stack.Framework, dependencies []string) (Config, bool) {
	if _, ok := rt.(llmFallbackRuntime); ok {
		return Config{}, false
	}

	cfg := Config{Env: map[string]string{}}

	for k, v := range rt.DefaultEnv() {
		cfg.Env[k] = v
	}

	var fwPort uint16
	var fwHealth string
	servicePath := ""
	if len(files) > 0 {
		servicePath = files[0].Path
	}

	if framework != nil {
		ports := framework.DefaultPorts()
		if len(ports) > 0 {
			fwPort = ports[0]
		}
		healths := framework.HealthEndpoints(filePaths(files))
		if len(healths) > 0 {
			fwHealth = healths[0]
		}
		for k, v := range framework.RuntimeEnvVars(servicePath, fwPort) {
			cfg.Env[k] = v
		}
	}

	cfg.Port = fwPort
	cfg.Health = fwHealth

	scanEnv := rt.envPattern()
	scanPort := rt.portPattern()

	for _, f := range files {
		if scanPort != nil {
			if m := scanPort.FindSubmatch(f.Content); m != nil {
				var p int
				fmt.Sscanf(string(m[1]), "%d", &p)
				if p > 0 && p < 65536 {
					cfg.Port = uint16(p)
				}
			}
		}
		if scanEnv != nil {
			for _, m := range scanEnv.FindAllSubmatch(f.Content, -1) {
				if len(m) > 1 {
					cfg.Env[string(m[1])] = ""
				}
			}
		}
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}

	if framework != nil {
		if ep, ok := framework.EntrypointCommand(filePaths(files), cfg.Port); ok {
			cfg.Entrypoint = ep
		}
	}
	if cfg.Entrypoint == "" {
		if ce, ok := rt.(interface{ conventionEntrypoint() string }); ok {
			cfg.Entrypoint = ce.conventionEntrypoint()
		}
	}

	return cfg, true
}

// conventionEntrypoint is the runtime-level fallback used when the
// framework supplies no EntrypointCommand hint.
func (jvmRuntime) conventionEntrypoint() string     { return "java -jar app.jar" }
func (nodeRuntime) conventionEntrypoint() string    { return "node index.js" }
func (pythonRuntime) conventionEntrypoint() string  { return "python main.py" }
func (rubyRuntime) conventionEntrypoint() string    { return "ruby app.rb" }
func (phpRuntime) conventionEntrypoint() string     { return "php-fpm" }
func (dotnetRuntime) conventionEntrypoint() string  { return "dotnet app.dll" }
func (beamRuntime) conventionEntrypoint() string    { return "bin/app start" }
func (nativeRuntime) conventionEntrypoint() string  { return "./app" }

func filePaths(files []SourceFile) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Path)
	}
	sort.Strings(out)
	return out
}
