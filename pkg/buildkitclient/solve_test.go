package buildkitclient

import (
	"testing"

	"github.com/moby/buildkit/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/containifyci/universal-build/pkg/progress"
)

func TestSummarizeNilResponse(t *testing.T) {
	s := summarize(nil)
	assert.Equal(t, "", s.ImageRef)
}

func TestSummarizeExtractsExporterResponse(t *testing.T) {
	resp := &client.SolveResponse{
		ExporterResponse: map[string]string{
			"image.name":                    "registry.example/app:latest",
			"attestation.sbom.digest":       "sha256:abc",
			"attestation.provenance.digest": "sha256:def",
		},
	}
	s := summarize(resp)
	assert.Equal(t, "registry.example/app:latest", s.ImageRef)
	assert.Equal(t, "sha256:abc", s.SBOMDigest)
	assert.Equal(t, "sha256:def", s.ProvenanceDigest)
}

func TestConsumeStatusDrainsChannelAndReturnsOnClose(t *testing.T) {
	statusCh := make(chan *client.SolveStatus)
	sink := &recordingSink{}

	go func() {
		statusCh <- &client.SolveStatus{
			Vertexes: []*client.Vertex{{Name: "step 1"}},
		}
		close(statusCh)
	}()

	err := consumeStatus(statusCh, sink)
	require.NoError(t, err)
	assert.Len(t, sink.events, 1)
}

type recordingSink struct {
	events []progress.Event
}

func (r *recordingSink) Handle(e progress.Event) {
	r.events = append(r.events, e)
}
