package stack

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// StackRegistry is a typed-key, mutex-guarded registry of BuildSystem,
// LanguageDefinition, Framework and MonorepoOrchestrator implementations.
// Shaped directly on the teacher's pkg/builder/factory.go BuilderRegistry:
// construction-time registration, read-mostly lookup, no stringly-typed
// global map.
type StackRegistry struct {
	mu            sync.RWMutex
	buildSystems  map[string]BuildSystem
	languages     map[string]LanguageDefinition
	frameworks    map[string]Framework
	orchestrators map[string]MonorepoOrchestrator
	frozen        bool
}

// NewRegistry creates an empty registry. Use NewDefaultRegistry for the
// built-in stack knowledge.
func NewRegistry() *StackRegistry {
	return &StackRegistry{
		buildSystems:  make(map[string]BuildSystem),
		languages:     make(map[string]LanguageDefinition),
		frameworks:    make(map[string]Framework),
		orchestrators: make(map[string]MonorepoOrchestrator),
	}
}

func (r *StackRegistry) mustNotBeFrozen() {
	if r.frozen {
		panic("stack: registry is frozen; registration must happen before Freeze()")
	}
}

func (r *StackRegistry) RegisterBuildSystem(bs BuildSystem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mustNotBeFrozen()
	r.buildSystems[bs.ID().Name()] = bs
}

func (r *StackRegistry) RegisterLanguage(l LanguageDefinition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mustNotBeFrozen()
	r.languages[l.ID().Name()] = l
}

func (r *StackRegistry) RegisterFramework(f Framework) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mustNotBeFrozen()
	r.frameworks[f.ID().Name()] = f
}

func (r *StackRegistry) RegisterOrchestrator(o MonorepoOrchestrator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mustNotBeFrozen()
	r.orchestrators[o.ID().Name()] = o
}

func (r *StackRegistry) BuildSystems() []BuildSystem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]BuildSystem, 0, len(r.buildSystems))
	for _, v := range r.buildSystems {
		out = append(out, v)
	}
	return out
}

func (r *StackRegistry) Languages() []LanguageDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]LanguageDefinition, 0, len(r.languages))
	for _, v := range r.languages {
		out = append(out, v)
	}
	return out
}

func (r *StackRegistry) Frameworks() []Framework {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Framework, 0, len(r.frameworks))
	for _, v := range r.frameworks {
		out = append(out, v)
	}
	return out
}

func (r *StackRegistry) Orchestrators() []MonorepoOrchestrator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]MonorepoOrchestrator, 0, len(r.orchestrators))
	for _, v := range r.orchestrators {
		out = append(out, v)
	}
	return out
}

func (r *StackRegistry) Language(id LanguageId) (LanguageDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.languages[id.Name()]
	return l, ok
}

func (r *StackRegistry) Framework(id FrameworkId) (Framework, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.frameworks[id.Name()]
	return f, ok
}

// frameworkDefault is used by Stack.Validate to look up a known framework's
// compatibility arrays without requiring callers to thread a registry
// through every validation call site. It only resolves frameworks
// registered with DefaultRegistry.
func frameworkDefault(id FrameworkId) (Framework, bool) {
	return DefaultRegistry().Framework(id)
}

// DetectBuildSystem routes a manifest to a BuildSystemId by filename
// (case-insensitive) and content hint (SPEC_FULL §4.1).
func (r *StackRegistry) DetectBuildSystem(manifestPath string, content []byte) (BuildSystemId, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	base := strings.ToLower(lastPathSegment(manifestPath))
	for _, bs := range r.buildSystems {
		for _, pat := range bs.ManifestPatterns() {
			if strings.ToLower(pat.Filename) != base {
				continue
			}
			if pat.ContentHint == "" || strings.Contains(string(content), pat.ContentHint) {
				return bs.ID(), true
			}
		}
	}
	return BuildSystemId{}, false
}

// DetectLanguage consults the build system's language hints; when more than
// one is offered and fileCounts is non-nil, the hint with the highest file
// count wins, otherwise the first hint wins (SPEC_FULL §4.1).
func (r *StackRegistry) DetectLanguage(buildSystemID BuildSystemId, fileCounts map[string]int) (LanguageId, bool) {
	r.mu.RLock()
	bs, ok := r.buildSystems[buildSystemID.Name()]
	r.mu.RUnlock()
	if !ok {
		return LanguageId{}, false
	}
	hints := bs.LanguageHints()
	if len(hints) == 0 {
		return LanguageId{}, false
	}
	if len(hints) == 1 || fileCounts == nil {
		return hints[0], true
	}
	best := hints[0]
	bestCount := -1
	for _, h := range hints {
		if c, ok := fileCounts[h.Name()]; ok && c > bestCount {
			best, bestCount = h, c
		}
	}
	return best, true
}

// DetectStack performs the composite build_system -> language detection and
// cross-checks Stack compatibility is satisfiable (framework is resolved
// later, during service StackIdentification).
func (r *StackRegistry) DetectStack(manifestPath string, content []byte, fileCounts map[string]int) (*DetectionStack, bool) {
	bsID, ok := r.DetectBuildSystem(manifestPath, content)
	if !ok {
		return nil, false
	}
	langID, ok := r.DetectLanguage(bsID, fileCounts)
	if !ok {
		return nil, false
	}
	return &DetectionStack{BuildSystem: bsID, Language: langID}, true
}

// DetectFrameworkFromDeps performs deterministic dependency-pattern
// matching; when multiple frameworks match, the highest-confidence match
// wins, ties broken lexicographically on framework name (SPEC_FULL §4.1).
func (r *StackRegistry) DetectFrameworkFromDeps(language LanguageId, dependencies []string, files []string) (FrameworkId, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type candidate struct {
		fw         Framework
		confidence int
	}
	var candidates []candidate
	for _, fw := range r.frameworks {
		if !containsLang(fw.CompatibleLanguages(), language) {
			continue
		}
		if fw.Detect(dependencies, files) {
			candidates = append(candidates, candidate{fw: fw, confidence: len(fw.DependencyPatterns())})
		}
	}
	if len(candidates) == 0 {
		return FrameworkId{}, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].confidence != candidates[j].confidence {
			return candidates[i].confidence > candidates[j].confidence
		}
		return candidates[i].fw.ID().Name() < candidates[j].fw.ID().Name()
	})
	return candidates[0].fw.ID(), true
}

// DetectOrchestrator looks for a root-level orchestrator manifest among the
// scanned root-level file names.
func (r *StackRegistry) DetectOrchestrator(rootFiles []string, readFile func(name string) ([]byte, error)) (MonorepoOrchestrator, []byte, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rootSet := make(map[string]bool, len(rootFiles))
	for _, f := range rootFiles {
		rootSet[strings.ToLower(lastPathSegment(f))] = true
	}
	for _, o := range r.orchestrators {
		for _, pat := range o.ManifestPatterns() {
			if !rootSet[strings.ToLower(pat.Filename)] {
				continue
			}
			var content []byte
			if readFile != nil {
				content, _ = readFile(pat.Filename)
			}
			if pat.ContentHint != "" && !strings.Contains(string(content), pat.ContentHint) {
				continue
			}
			return o, content, true
		}
	}
	return nil, nil, false
}

// Freeze validates the cross-trait framework-compatibility invariant
// (SPEC_FULL §3.2, §4.1): every framework's compatibility arrays must
// reference registered language/build-system variants. Construction fails
// (returns an error) on any dangling reference, and no further
// registration is permitted afterward.
func (r *StackRegistry) Freeze() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, fw := range r.frameworks {
		for _, l := range fw.CompatibleLanguages() {
			if l.IsCustom() {
				continue
			}
			if _, ok := r.languages[l.Name()]; !ok {
				return fmt.Errorf("stack: framework %q declares unregistered language %q", fw.ID().Name(), l.Name())
			}
		}
		for _, b := range fw.CompatibleBuildSystems() {
			if b.IsCustom() {
				continue
			}
			if _, ok := r.buildSystems[b.Name()]; !ok {
				return fmt.Errorf("stack: framework %q declares unregistered build system %q", fw.ID().Name(), b.Name())
			}
		}
	}
	r.frozen = true
	return nil
}

func lastPathSegment(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}

var (
	defaultRegistry     *StackRegistry
	defaultRegistryOnce sync.Once
	defaultRegistryErr  error
)

// DefaultRegistry returns the process-wide registry pre-populated with all
// built-in languages, build systems, frameworks and orchestrators. It is
// read-only after construction and safe for concurrent reads
// (SPEC_FULL §5).
func DefaultRegistry() *StackRegistry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		registerBuiltinLanguages(defaultRegistry)
		registerBuiltinBuildSystems(defaultRegistry)
		registerBuiltinFrameworks(defaultRegistry)
		registerBuiltinOrchestrators(defaultRegistry)
		defaultRegistryErr = defaultRegistry.Freeze()
	})
	return defaultRegistry
}

// NewDefaultRegistry builds a fresh copy of the built-in registry and
// surfaces any relationship-validation failure, for callers (tests,
// alternate wiring) that want construction-time error handling rather than
// the panicking singleton accessor.
func NewDefaultRegistry() (*StackRegistry, error) {
	r := NewRegistry()
	registerBuiltinLanguages(r)
	registerBuiltinBuildSystems(r)
	registerBuiltinFrameworks(r)
	registerBuiltinOrchestrators(r)
	if err := r.Freeze(); err != nil {
		return nil, err
	}
	return r, nil
}

func init() {
	// Force construction at package init so a relationship-validation bug
	// fails fast (mirrors the teacher's DefaultRegistry() convenience
	// wrapper in pkg/builder/factory.go).
	_ = DefaultRegistry()
	if defaultRegistryErr != nil {
		panic(defaultRegistryErr)
	}
}
