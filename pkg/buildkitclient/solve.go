package buildkitclient

import (
	"context"
	"fmt"

	"github.com/moby/buildkit/client"
	"github.com/moby/buildkit/identity"
	"github.com/moby/buildkit/session"

	"github.com/containifyci/universal-build/pkg/llb"
	"github.com/containifyci/universal-build/pkg/progress"
)

// ExportSpec selects the Solve exporter: "docker" loads the result
// into the local Docker daemon, "oci" writes an OCI tarball to Dest.
type ExportSpec struct {
	Type string
	Dest string
	Tag  string
}

// Solve runs the build execution sequence of SPEC_FULL §4.10: a
// session (identified by identity.NewID()) carrying the attached
// FileSync instance, the Solve RPC with the LLB definition and
// mandatory SBOM + SLSA provenance attestations (no opt-out), and
// Status stream consumption routed to sink.
func Solve(ctx context.Context, c *client.Client, graph *llb.Graph, localDirs map[string]string, export ExportSpec, attachables []session.Attachable, sink progress.Sink) (*progress.SummaryInfo, error) {
	if sink == nil {
		sink = progress.Discard
	}

	sessionID := identity.NewID()

	attrs := map[string]string{
		"attest:sbom":       "true",
		"attest:provenance": "mode=max",
	}
	if export.Dest != "" {
		attrs["dest"] = export.Dest
	}
	if export.Tag != "" {
		attrs["name"] = export.Tag
	}

	solveOpt := client.SolveOpt{
		SharedKey: sessionID,
		LocalDirs: localDirs,
		Session:   attachables,
		Exports: []client.ExportEntry{{
			Type:  export.Type,
			Attrs: attrs,
		}},
	}

	statusCh := make(chan *client.SolveStatus)
	resultCh := make(chan result, 1)

	go func() {
		resp, err := c.Solve(ctx, graph.Definition, solveOpt, statusCh)
		resultCh <- result{resp: resp, err: err}
	}()

	if err := consumeStatus(statusCh, sink); err != nil {
		return nil, err
	}

	res := <-resultCh
	if res.err != nil {
		return nil, fmt.Errorf("buildkitclient: solve failed: %w", res.err)
	}

	summary := summarize(res.resp)
	sink.Handle(progress.Summary(summary))
	return &summary, nil
}

type result struct {
	resp *client.SolveResponse
	err  error
}

// consumeStatus honors SPEC_FULL §4.10's cancellation contract: canceling ctx
// causes c.Solve's goroutine to return and statusCh to close, which
// unblocks consumeStatus cooperatively within a few seconds.
func consumeStatus(statusCh <-chan *client.SolveStatus, sink progress.Sink) error {
	for status := range statusCh {
		for _, v := range status.Vertexes {
			state := progress.VertexRunning
			switch {
			case v.Completed != nil && v.Cached:
				state = progress.VertexCached
			case v.Completed != nil:
				state = progress.VertexCompleted
			case v.Error != "":
				state = progress.VertexErrored
			case v.Started != nil:
				state = progress.VertexStarted
			}
			sink.Handle(progress.VertexStatus(v.Name, state, v.Error))
		}
		for _, l := range status.Logs {
			sink.Handle(progress.VertexStatus(l.Vertex.String(), progress.VertexRunning, string(l.Data)))
		}
	}
	return nil
}

func summarize(resp *client.SolveResponse) progress.SummaryInfo {
	if resp == nil {
		return progress.SummaryInfo{}
	}
	return progress.SummaryInfo{
		ImageRef:         resp.ExporterResponse["image.name"],
		SBOMDigest:       resp.ExporterResponse["attestation.sbom.digest"],
		ProvenanceDigest: resp.ExporterResponse["attestation.provenance.digest"],
	}
}
