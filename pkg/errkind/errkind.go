// Package errkind models the error kinds of SPEC_FULL §7 as exported
// sentinel errors plus a small wrapper that attaches the kind and the
// stage it was raised from, in the idiom of the teacher's
// pkg/language/errors.go. The CLI's exit-code mapping (SPEC_FULL §6.2)
// is the single place that switches on Kind.
package errkind

import (
	"errors"
	"fmt"
)

// Kind groups errors by recovery policy, not by Go type.
type Kind string

const (
	KindUsage            Kind = "usage"
	KindDetectionFailed   Kind = "detection_failed"
	KindLLMLowConfidence  Kind = "llm_low_confidence"
	KindValidation        Kind = "validation"
	KindConnection        Kind = "connection"
	KindTransport         Kind = "transport"
	KindBuild             Kind = "build"
)

// Sentinel errors usable with errors.Is regardless of the stage that
// raised them.
var (
	ErrUsage           = errors.New("usage error")
	ErrDetectionFailed = errors.New("detection failed")
	ErrLowConfidence   = errors.New("llm confidence below threshold")
	ErrValidation      = errors.New("validation failed")
	ErrConnection      = errors.New("buildkit connection failed")
	ErrTransport       = errors.New("transport error")
	ErrBuild           = errors.New("build failed")
)

var sentinelByKind = map[Kind]error{
	KindUsage:           ErrUsage,
	KindDetectionFailed: ErrDetectionFailed,
	KindLLMLowConfidence: ErrLowConfidence,
	KindValidation:      ErrValidation,
	KindConnection:      ErrConnection,
	KindTransport:       ErrTransport,
	KindBuild:           ErrBuild,
}

// StageError wraps an underlying error with the Kind and the pipeline
// stage it surfaced from.
type StageError struct {
	Kind  Kind
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("%s [%s]: %v", e.Kind, e.Stage, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *StageError) Unwrap() error {
	if sentinel, ok := sentinelByKind[e.Kind]; ok {
		return errors.Join(sentinel, e.Err)
	}
	return e.Err
}

// New builds a StageError for kind, wrapping err with the kind's
// sentinel so errors.Is(result, sentinelByKind[kind]) holds.
func New(kind Kind, stage string, err error) *StageError {
	return &StageError{Kind: kind, Stage: stage, Err: err}
}

// ExitCode maps a StageError's Kind to the process exit code named in
// SPEC_FULL §6.2. Any other error (including nil Kind) maps to 1, a
// generic failure distinct from the specified codes.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var se *StageError
	if errors.As(err, &se) {
		switch se.Kind {
		case KindUsage:
			return 2
		case KindDetectionFailed, KindLLMLowConfidence:
			return 3
		case KindValidation:
			return 4
		case KindConnection:
			return 5
		case KindBuild, KindTransport:
			return 6
		}
	}
	return 1
}
