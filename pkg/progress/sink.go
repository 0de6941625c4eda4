package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/moby/term"
)

// Options configures a Sink's verbosity, mirroring the teacher's
// SimpleHandler Options (pkg/logger/slog_handler.go).
type Options struct {
	Quiet   bool // suppress intra-build VertexStatus events
	Verbose bool // include VertexStatus.Log detail
}

// NewSink picks an interactive (TTY) or plain renderer based on out,
// using this package's own isTTY check (term.IsTerminal on out's file
// descriptor); pkg/logger has no TTY-detection helper to share.
func NewSink(out io.Writer, opts Options) Sink {
	if isTTY(out) {
		return newTTYSink(out, opts)
	}
	return newPlainSink(out, opts)
}

func isTTY(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(f.Fd())
}

const (
	ansiReset = "\033[0m"
	ansiGreen = "\033[32m"
	ansiRed   = "\033[31m"
	ansiGray  = "\033[90m"
)

// plainSink renders one log line per event, suitable for non-TTY /CI
// output. Grounded on terminal.go's non-"progress"-format branch
// (fmt.Printf("%s%s %s%s\n", ...)).
type plainSink struct {
	mu   sync.Mutex
	out  io.Writer
	opts Options
}

func newPlainSink(out io.Writer, opts Options) *plainSink {
	return &plainSink{out: out, opts: opts}
}

func (s *plainSink) Handle(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e.Kind {
	case KindPhaseStart:
		if !s.opts.Quiet {
			fmt.Fprintf(s.out, "==> %s\n", e.PhaseName)
		}
	case KindPhaseComplete:
		fmt.Fprintf(s.out, "==> %s done (%v)\n", e.PhaseName, e.Duration)
	case KindPhaseFailed:
		fmt.Fprintf(s.out, "==> %s failed: %v\n", e.PhaseName, e.Err)
	case KindVertexStatus:
		if s.opts.Quiet {
			return
		}
		fmt.Fprintf(s.out, "    %s [%s]\n", e.VertexName, e.State)
		if s.opts.Verbose && e.Log != "" {
			fmt.Fprintf(s.out, "      %s\n", e.Log)
		}
	case KindSummary:
		fmt.Fprintf(s.out, "built %s (sbom=%s provenance=%s)\n",
			e.Summary.ImageRef, e.Summary.SBOMDigest, e.Summary.ProvenanceDigest)
	}
}

// ttySink renders a live-updating view, one line per in-flight
// phase/vertex, completed entries colored green/red. Adapted from
// terminal.go's LogAggregator.startLogDisplay, but vertices are listed
// in the order they were first seen (not completed-first) and redrawn
// on each event rather than on a poll loop.
type ttySink struct {
	mu       sync.Mutex
	out      io.Writer
	opts     Options
	order    []string
	vertices map[string]*vertexLine
}

type vertexLine struct {
	state VertexState
	log   string
}

func newTTYSink(out io.Writer, opts Options) *ttySink {
	return &ttySink{out: out, opts: opts, vertices: make(map[string]*vertexLine)}
}

func (s *ttySink) Handle(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e.Kind {
	case KindPhaseStart:
		fmt.Fprintf(s.out, "%s%s%s\n", ansiGray, e.PhaseName, ansiReset)
	case KindPhaseComplete:
		fmt.Fprintf(s.out, "%s%s (completed in %v)%s\n", ansiGreen, e.PhaseName, e.Duration, ansiReset)
	case KindPhaseFailed:
		fmt.Fprintf(s.out, "%s%s (failed in %v): %v%s\n", ansiRed, e.PhaseName, e.Duration, e.Err, ansiReset)
	case KindVertexStatus:
		if s.opts.Quiet {
			return
		}
		if _, seen := s.vertices[e.VertexName]; !seen {
			s.order = append(s.order, e.VertexName)
		}
		s.vertices[e.VertexName] = &vertexLine{state: e.State, log: e.Log}
		s.redraw()
	case KindSummary:
		fmt.Fprintf(s.out, "%sbuilt %s%s\n", ansiGreen, e.Summary.ImageRef, ansiReset)
		fmt.Fprintf(s.out, "  sbom=%s provenance=%s\n", e.Summary.SBOMDigest, e.Summary.ProvenanceDigest)
	}
}

func (s *ttySink) redraw() {
	for _, name := range s.order {
		v := s.vertices[name]
		color := ansiGray
		switch v.state {
		case VertexCompleted, VertexCached:
			color = ansiGreen
		case VertexErrored:
			color = ansiRed
		}
		fmt.Fprintf(s.out, "%s  %s [%s]%s\n", color, name, v.state, ansiReset)
		if s.opts.Verbose && v.log != "" {
			fmt.Fprintf(s.out, "    %s\n", v.log)
		}
	}
}

// Discard is a Sink that drops every event, used in tests and as the
// fallback when analysis.New or buildkitclient.Solve is given a nil sink.
var Discard Sink = discardSink{}

type discardSink struct{}

func (discardSink) Handle(Event) {}
