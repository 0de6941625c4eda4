// Package progress implements the ProgressEvent stream contract of
// SPEC_FULL §4.12: the analysis pipeline, the LLB builder and the
// BuildKit Status stream all funnel into a single ordered event stream
// that a Sink renders. Grounded on the teacher's pkg/logger
// (SimpleHandler's slog.Handler shape, terminal.go's ANSI rendering,
// altscreen.go's TTY detection), generalized from log-line rendering to
// progress-event rendering.
package progress

import "time"

// VertexState mirrors the states a BuildKit solve vertex passes through,
// translated verbatim per SPEC_FULL §4.12.
type VertexState string

const (
	VertexStarted   VertexState = "started"
	VertexCached    VertexState = "cached"
	VertexRunning   VertexState = "running"
	VertexCompleted VertexState = "completed"
	VertexErrored   VertexState = "errored"
)

// Event is a closed sum type over the five ProgressEvent variants named
// in SPEC_FULL §4.12. Exactly one of the payload fields is populated,
// selected by Kind.
type Event struct {
	Kind EventKind

	// PhaseStart / PhaseComplete / PhaseFailed
	PhaseName string
	Duration  time.Duration
	Err       error

	// VertexStatus
	VertexName string
	State      VertexState
	Log        string

	// Summary
	Summary *SummaryInfo
}

type EventKind string

const (
	KindPhaseStart    EventKind = "phase_start"
	KindPhaseComplete EventKind = "phase_complete"
	KindPhaseFailed   EventKind = "phase_failed"
	KindVertexStatus  EventKind = "vertex_status"
	KindSummary       EventKind = "summary"
)

// SummaryInfo is emitted once at the end of a build: the final image
// reference plus attestation digests (SPEC_FULL §4.10).
type SummaryInfo struct {
	ImageRef        string
	SBOMDigest      string
	ProvenanceDigest string
}

func PhaseStart(name string) Event {
	return Event{Kind: KindPhaseStart, PhaseName: name}
}

func PhaseComplete(name string, d time.Duration) Event {
	return Event{Kind: KindPhaseComplete, PhaseName: name, Duration: d}
}

func PhaseFailed(name string, err error) Event {
	return Event{Kind: KindPhaseFailed, PhaseName: name, Err: err}
}

func VertexStatus(name string, state VertexState, log string) Event {
	return Event{Kind: KindVertexStatus, VertexName: name, State: state, Log: log}
}

func Summary(info SummaryInfo) Event {
	return Event{Kind: KindSummary, Summary: &info}
}

// Sink consumes Events in production order. Implementations must not
// reorder events across phases (SPEC_FULL §4.12 invariant).
type Sink interface {
	Handle(Event)
}
