// Package buildkitclient implements the BuildKit gRPC Client
// (SPEC_FULL §4.10): connection discovery, session establishment, the
// Solve RPC with mandatory SBOM/provenance attestations, and Status
// stream consumption. Connection discovery is adapted from the
// teacher's pkg/cri/manager.go detectRuntimeParallel pattern and
// pkg/cri/utils/socket.go socket probing, generalized from
// container-runtime discovery to BuildKit-endpoint discovery.
package buildkitclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"runtime"
	"time"

	dockerclient "github.com/docker/docker/client"
)

// Endpoint is a resolved BuildKit connection target.
type Endpoint struct {
	// Address is a client.New-compatible address: "unix:///..." or
	// "tcp://host:port" or "docker-container://<name>".
	Address string
	// Source records which discovery step produced Address, for
	// diagnostics.
	Source string
}

const (
	defaultUnixSocket   = "/run/buildkit/buildkitd.sock"
	dockerAPIMinVersion = "1.41"
	probeTimeout        = 2 * time.Second
)

// Discover resolves the BuildKit connection address per SPEC_FULL
// §4.10's fixed order: a direct unix socket, then Docker's embedded
// BuildKit endpoint (requires Docker API >= 1.41), then TCP (Windows
// or explicit override). An explicit addr always short-circuits
// discovery.
func Discover(ctx context.Context, explicitAddr string) (Endpoint, error) {
	if explicitAddr != "" {
		return Endpoint{Address: explicitAddr, Source: "explicit"}, nil
	}

	if runtime.GOOS != "windows" {
		if ep, ok := probeUnixSocket(); ok {
			return ep, nil
		}
	}

	if ep, ok := probeDockerDaemon(ctx); ok {
		return ep, nil
	}

	if tcpAddr := os.Getenv("BUILDKIT_HOST"); tcpAddr != "" {
		return Endpoint{Address: tcpAddr, Source: "tcp"}, nil
	}

	return Endpoint{}, errors.New("buildkitclient: no BuildKit endpoint found (no unix socket, no Docker daemon with embedded BuildKit, no BUILDKIT_HOST)")
}

func probeUnixSocket() (Endpoint, bool) {
	conn, err := net.DialTimeout("unix", defaultUnixSocket, probeTimeout)
	if err != nil {
		return Endpoint{}, false
	}
	conn.Close()
	return Endpoint{Address: "unix://" + defaultUnixSocket, Source: "unix-socket"}, true
}

// probeDockerDaemon checks the Docker daemon socket and, if its API
// version is new enough to expose an embedded BuildKit endpoint,
// returns the docker-container address form. Mirrors
// detectRuntimeParallel's priority-then-collect shape but against one
// candidate rather than racing multiple runtimes.
func probeDockerDaemon(ctx context.Context) (Endpoint, bool) {
	cli, err := dockerclient.NewClientWithOpts(dockerclient.FromEnv, dockerclient.WithAPIVersionNegotiation())
	if err != nil {
		return Endpoint{}, false
	}
	defer cli.Close()

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	version, err := cli.ServerVersion(probeCtx)
	if err != nil {
		return Endpoint{}, false
	}
	if !apiVersionAtLeast(version.APIVersion, dockerAPIMinVersion) {
		return Endpoint{}, false
	}
	return Endpoint{Address: "docker-container://buildx_buildkit_default", Source: "docker-embedded"}, true
}

func apiVersionAtLeast(got, want string) bool {
	gotMajor, gotMinor := 0, 0
	wantMajor, wantMinor := 0, 0
	fmt.Sscanf(got, "%d.%d", &gotMajor, &gotMinor)
	fmt.Sscanf(want, "%d.%d", &wantMajor, &wantMinor)
	if gotMajor != wantMajor {
		return gotMajor > wantMajor
	}
	return gotMinor >= wantMinor
}
