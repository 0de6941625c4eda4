// Package llm defines the abstract LLM fallback capability the detection
// pipeline consults when deterministic pattern matching fails (SPEC_FULL
// §1, §4.1). Transport wiring is explicitly out of scope for the pipeline
// contract; this package still carries one concrete, optional
// implementation (grounded on the teacher's pkg/ai/claude) for
// completeness.
package llm

import "context"

// DetectionMode controls whether the pipeline may consult an LLMClient at
// all (SPEC_FULL §6.3, §8.3).
type DetectionMode string

const (
	ModeFull   DetectionMode = "full"
	ModeStatic DetectionMode = "static"
	ModeLLM    DetectionMode = "llm"
)

// Kind identifies what's being classified, so a single Client interface can
// serve build-system, language, framework and orchestrator fallback calls.
type Kind string

const (
	KindBuildSystem  Kind = "build_system"
	KindLanguage     Kind = "language"
	KindFramework    Kind = "framework"
	KindOrchestrator Kind = "orchestrator"
	KindRuntimeConfig Kind = "runtime_config"
)

// Request carries the evidence available to the model for one
// classification call.
type Request struct {
	Kind            Kind
	RepoPath        string
	ManifestPath    string
	ManifestContent []byte
	Files           []string
	Dependencies    []string
}

// Response is the LLM's classification result. Per SPEC_FULL §3.1/§4.1 the
// response always yields a Custom{name, metadata} variant downstream,
// regardless of whether Name happens to equal a known token.
type Response struct {
	Name           string            `json:"name"`
	Confidence     float64           `json:"confidence"`
	ManifestFiles  []string          `json:"manifest_files"`
	BuildCommands  []string          `json:"build_commands"`
	CacheDirs      []string          `json:"cache_dirs"`
	ConfigFiles    []string          `json:"config_files"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// MinConfidence is the reject threshold (SPEC_FULL §4.1, §7): a response
// below this is rejected as a detection failure, never fabricated into a
// stack.
const MinConfidence = 0.5

// Client is the narrow capability the pipeline depends on. A single
// suspension point per call (SPEC_FULL §5, §9).
type Client interface {
	Classify(ctx context.Context, req Request) (Response, error)
}

// ErrNotConsulted is returned by the static no-op client, so a code path
// that was supposed to be fully deterministic but accidentally falls
// through to LLM fallback is caught at runtime rather than silently
// degrading (SPEC_FULL §6.3, §8.3, §9).
var ErrNotConsulted = staticModeError{}

type staticModeError struct{}

func (staticModeError) Error() string {
	return "llm: DETECTION_MODE=static forbids LLM fallback; a deterministic path was missed"
}

// staticClient is swapped in under DetectionMode=static.
type staticClient struct{}

func (staticClient) Classify(context.Context, Request) (Response, error) {
	return Response{}, ErrNotConsulted
}

// NewStaticClient returns the no-op client used under DetectionMode=static.
func NewStaticClient() Client { return staticClient{} }

// ForMode resolves the capability to use given the configured detection
// mode: Static swaps in the no-op client; Full and LLM both use the
// supplied client (the difference between them is only about whether
// deterministic detection is attempted first, which is the caller's
// concern, not this package's).
func ForMode(mode DetectionMode, client Client) Client {
	if mode == ModeStatic || client == nil {
		return NewStaticClient()
	}
	return client
}
