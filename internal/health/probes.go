package health

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	dockerclient "github.com/docker/docker/client"
)

// HTTPProbe probes an HTTP endpoint; any 2xx answer counts as up.
func HTTPProbe(name, url string, critical bool) Probe {
	return Probe{
		Name:     name,
		Critical: critical,
		Check: func(ctx context.Context) ProbeResult {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
			if err != nil {
				return ProbeResult{State: StateUnknown, Detail: fmt.Sprintf("failed to build request: %v", err)}
			}

			start := time.Now()
			resp, err := http.DefaultClient.Do(req)
			elapsed := time.Since(start)
			if err != nil {
				return ProbeResult{
					State:     StateDown,
					LatencyMs: latencyMs(elapsed),
					Detail:    fmt.Sprintf("request failed: %v", err),
				}
			}
			defer resp.Body.Close()

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return ProbeResult{
					State:     StateDown,
					LatencyMs: latencyMs(elapsed),
					Detail:    fmt.Sprintf("unhealthy status code: %d", resp.StatusCode),
				}
			}

			return ProbeResult{State: StateUp, LatencyMs: latencyMs(elapsed)}
		},
	}
}

// TCPProbe probes a TCP address; a successful dial counts as up.
func TCPProbe(name, address string, critical bool) Probe {
	return Probe{
		Name:     name,
		Critical: critical,
		Check: func(ctx context.Context) ProbeResult {
			var dialer net.Dialer

			start := time.Now()
			conn, err := dialer.DialContext(ctx, "tcp", address)
			elapsed := time.Since(start)
			if err != nil {
				return ProbeResult{
					State:     StateDown,
					LatencyMs: latencyMs(elapsed),
					Detail:    fmt.Sprintf("dial failed: %v", err),
				}
			}
			defer conn.Close()

			return ProbeResult{State: StateUp, LatencyMs: latencyMs(elapsed)}
		},
	}
}

// DockerProbe probes the container runtime via the Docker daemon API. A
// missing or misconfigured docker client yields unknown, not down: the
// probing tool being absent says nothing about the runtime itself.
func DockerProbe(name string, critical bool) Probe {
	return Probe{
		Name:     name,
		Critical: critical,
		Check: func(ctx context.Context) ProbeResult {
			cli, err := dockerclient.NewClientWithOpts(
				dockerclient.FromEnv,
				dockerclient.WithAPIVersionNegotiation(),
			)
			if err != nil {
				return ProbeResult{
					State:  StateUnknown,
					Detail: fmt.Sprintf("docker client unavailable: %v", err),
				}
			}
			defer cli.Close()

			start := time.Now()
			ping, err := cli.Ping(ctx)
			elapsed := time.Since(start)
			if err != nil {
				return ProbeResult{
					State:     StateDown,
					LatencyMs: latencyMs(elapsed),
					Detail:    fmt.Sprintf("daemon ping failed: %v", err),
				}
			}

			return ProbeResult{
				State:     StateUp,
				LatencyMs: latencyMs(elapsed),
				Detail:    fmt.Sprintf("api version %s", ping.APIVersion),
			}
		},
	}
}
