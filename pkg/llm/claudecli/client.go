// Package claudecli is the one concrete, optional LLMClient implementation
// named in SPEC_FULL §1/§10: it shells out to a locally available `claude`
// CLI, grounded on the teacher's pkg/ai/claude (which packages that same
// CLI into a build step). Wiring this up is never required — callers pass
// any llm.Client, and pkg/llm.NewStaticClient covers DETECTION_MODE=static
// — this package exists only so the abstract capability has one real,
// swappable backend rather than remaining purely hypothetical.
package claudecli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/containifyci/universal-build/pkg/llm"
)

// Client shells out to the `claude` CLI in print mode, asking it to
// classify the supplied evidence and return a single JSON object matching
// llm.Response's shape.
type Client struct {
	binary string
}

// New returns a Client. binary defaults to "claude" (resolved via PATH).
func New(binary string) *Client {
	if binary == "" {
		binary = "claude"
	}
	return &Client{binary: binary}
}

func (c *Client) Classify(ctx context.Context, req llm.Request) (llm.Response, error) {
	prompt := buildPrompt(req)

	cmd := exec.CommandContext(ctx, c.binary, "-p", prompt, "--output-format", "json")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return llm.Response{}, fmt.Errorf("claudecli: invoke %s: %w: %s", c.binary, err, stderr.String())
	}

	var resp llm.Response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return llm.Response{}, fmt.Errorf("claudecli: parse response: %w", err)
	}
	return resp, nil
}

func buildPrompt(req llm.Request) string {
	return fmt.Sprintf(
		"Classify the %s of the repository at manifest %q. Respond with a single JSON object: "+
			"{\"name\": string, \"confidence\": number 0-1, \"manifest_files\": [string], "+
			"\"build_commands\": [string], \"cache_dirs\": [string], \"config_files\": [string]}. "+
			"Dependencies observed: %v.",
		req.Kind, req.ManifestPath, req.Dependencies,
	)
}
