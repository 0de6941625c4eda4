package buildkitclient

import (
	"context"
	"fmt"
	"sync"

	"github.com/moby/buildkit/client"
)

// minBuildKitVersion is the floor required for SBOM/SLSA provenance
// attestation support (SPEC_FULL §4.10).
const minBuildKitVersion = "0.11.0"

// Pool caches one live *client.Client per endpoint address, reconnecting
// transparently when a cached connection's Info probe fails
// ("Pool and reuse healthy connections across builds; transparently
// reconnect on stale channels", SPEC_FULL §4.10).
type Pool struct {
	mu      sync.Mutex
	clients map[string]*client.Client
}

// NewPool returns an empty connection pool.
func NewPool() *Pool {
	return &Pool{clients: make(map[string]*client.Client)}
}

// Get returns a healthy *client.Client for ep, reusing a cached
// connection when possible.
func (p *Pool) Get(ctx context.Context, ep Endpoint) (*client.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.clients[ep.Address]; ok {
		if _, err := c.Info(ctx); err == nil {
			return c, nil
		}
		c.Close()
		delete(p.clients, ep.Address)
	}

	c, err := connect(ctx, ep)
	if err != nil {
		return nil, err
	}
	p.clients[ep.Address] = c
	return c, nil
}

// Close closes every cached connection.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var firstErr error
	for addr, c := range p.clients {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.clients, addr)
	}
	return firstErr
}

func connect(ctx context.Context, ep Endpoint) (*client.Client, error) {
	c, err := client.New(ctx, ep.Address, client.WithFailFast())
	if err != nil {
		return nil, fmt.Errorf("buildkitclient: connecting to %s (%s): %w", ep.Address, ep.Source, err)
	}

	info, err := c.Info(ctx)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("buildkitclient: Info RPC against %s: %w", ep.Address, err)
	}
	if !versionAtLeast(info.BuildkitVersion.Version, minBuildKitVersion) {
		c.Close()
		return nil, fmt.Errorf("buildkitclient: daemon at %s reports BuildKit %s, need >= %s for SBOM/provenance attestations",
			ep.Address, info.BuildkitVersion.Version, minBuildKitVersion)
	}
	return c, nil
}

func versionAtLeast(got, want string) bool {
	var gm, gn, gp int
	var wm, wn, wp int
	fmt.Sscanf(got, "v%d.%d.%d", &gm, &gn, &gp)
	fmt.Sscanf(want, "%d.%d.%d", &wm, &wn, &wp)
	if gm != wm {
		return gm > wm
	}
	if gn != wn {
		return gn > wn
	}
	return gp >= wp
}
