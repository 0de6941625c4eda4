package progress

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainSinkOrdering(t *testing.T) {
	var buf bytes.Buffer
	sink := newPlainSink(&buf, Options{})

	sink.Handle(PhaseStart("scan"))
	sink.Handle(VertexStatus("build", VertexRunning, "compiling"))
	sink.Handle(PhaseComplete("scan", 2*time.Second))

	out := buf.String()
	iScan := bytes.Index([]byte(out), []byte("==> scan"))
	iVertex := bytes.Index([]byte(out), []byte("build [running]"))
	iDone := bytes.Index([]byte(out), []byte("scan done"))
	require.True(t, iScan >= 0 && iVertex > iScan && iDone > iVertex, "events must render in production order: %s", out)
}

func TestPlainSinkQuietSuppressesVertexStatus(t *testing.T) {
	var buf bytes.Buffer
	sink := newPlainSink(&buf, Options{Quiet: true})

	sink.Handle(PhaseStart("build"))
	sink.Handle(VertexStatus("compile", VertexRunning, "log line"))

	assert.NotContains(t, buf.String(), "compile")
}

func TestPlainSinkVerboseIncludesLog(t *testing.T) {
	var buf bytes.Buffer
	sink := newPlainSink(&buf, Options{Verbose: true})

	sink.Handle(VertexStatus("compile", VertexRunning, "detail line"))

	assert.Contains(t, buf.String(), "detail line")
}

func TestPlainSinkSummary(t *testing.T) {
	var buf bytes.Buffer
	sink := newPlainSink(&buf, Options{})

	sink.Handle(Summary(SummaryInfo{ImageRef: "registry/app:latest", SBOMDigest: "sha256:aaa", ProvenanceDigest: "sha256:bbb"}))

	out := buf.String()
	assert.Contains(t, out, "registry/app:latest")
	assert.Contains(t, out, "sha256:aaa")
	assert.Contains(t, out, "sha256:bbb")
}

func TestDiscardSinkDropsEvents(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard.Handle(PhaseStart("anything"))
		Discard.Handle(PhaseFailed("anything", assert.AnError))
	})
}

func TestTTYSinkTracksVertexOrder(t *testing.T) {
	var buf bytes.Buffer
	sink := newTTYSink(&buf, Options{})

	sink.Handle(VertexStatus("a", VertexStarted, ""))
	sink.Handle(VertexStatus("b", VertexStarted, ""))
	sink.Handle(VertexStatus("a", VertexCompleted, ""))

	assert.Equal(t, []string{"a", "b"}, sink.order)
	assert.Equal(t, VertexCompleted, sink.vertices["a"].state)
}
