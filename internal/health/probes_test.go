package health

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPProbe(t *testing.T) {
	t.Run("healthy endpoint", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		probe := HTTPProbe("app1", server.URL+"/health", true)
		result := probe.Check(context.Background())

		assert.Equal(t, StateUp, result.State)
		require.NotNil(t, result.LatencyMs)
		assert.GreaterOrEqual(t, *result.LatencyMs, 0.0)
	})

	t.Run("non-2xx is down", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		probe := HTTPProbe("app1", server.URL, true)
		result := probe.Check(context.Background())

		assert.Equal(t, StateDown, result.State)
		assert.Contains(t, result.Detail, "503")
	})

	t.Run("unreachable endpoint is down", func(t *testing.T) {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		addr := listener.Addr().String()
		require.NoError(t, listener.Close())

		probe := HTTPProbe("tunnel", "http://"+addr+"/ready", true)
		result := probe.Check(context.Background())

		assert.Equal(t, StateDown, result.State)
		assert.Contains(t, result.Detail, "request failed")
	})

	t.Run("probe honours context cancellation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(5 * time.Second):
			case <-r.Context().Done():
			}
		}))
		defer server.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		probe := HTTPProbe("slow", server.URL, true)
		start := time.Now()
		result := probe.Check(ctx)

		assert.Less(t, time.Since(start), time.Second)
		assert.Equal(t, StateDown, result.State)
	})
}

func TestTCPProbe(t *testing.T) {
	t.Run("listening address is up", func(t *testing.T) {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer listener.Close()

		probe := TCPProbe("runtime", listener.Addr().String(), false)
		result := probe.Check(context.Background())

		assert.Equal(t, StateUp, result.State)
	})

	t.Run("closed address is down", func(t *testing.T) {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		addr := listener.Addr().String()
		require.NoError(t, listener.Close())

		probe := TCPProbe("runtime", addr, false)
		result := probe.Check(context.Background())

		assert.Equal(t, StateDown, result.State)
		assert.Contains(t, result.Detail, "dial failed")
	})
}

func TestDockerProbe(t *testing.T) {
	probe := DockerProbe("docker", false)
	assert.Equal(t, "docker", probe.Name)
	assert.False(t, probe.Critical)

	// The daemon may or may not be present where tests run; the probe must
	// still produce a classified result instead of failing.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	result := probe.Check(ctx)
	assert.Contains(t, []State{StateUp, StateDown, StateUnknown}, result.State)
}
