package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  port: 9090
  readTimeout: 15s
backends:
  - name: app1
    address: app1
    port: 3000
  - name: app2
    address: app2
    port: 5000
ingress:
  rules:
    - hostname: app1.example.com
      backend: app1
    - hostname: "*"
health:
  probeTimeout: 2s
  probes:
    - name: app1
      type: http
      url: http://app1:3000/health
      critical: true
`

func TestLoadFromReader(t *testing.T) {
	t.Run("parses full config", func(t *testing.T) {
		cfg, err := LoadFromReader(strings.NewReader(sampleConfig))
		require.NoError(t, err)

		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout.Duration())
		require.Len(t, cfg.Backends, 2)
		assert.Equal(t, "app1", cfg.Backends[0].Name)
		require.Len(t, cfg.Ingress.Rules, 2)
		assert.True(t, cfg.Ingress.Rules[1].IsTerminal())
		assert.Equal(t, 2*time.Second, cfg.Health.ProbeTimeout.Duration())
		require.Len(t, cfg.Health.Probes, 1)
		assert.True(t, cfg.Health.Probes[0].Critical)
	})

	t.Run("applies defaults", func(t *testing.T) {
		cfg, err := LoadFromReader(strings.NewReader("backends: []\ningress:\n  rules: []\n"))
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout.Duration())
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, 3*time.Second, cfg.Health.ProbeTimeout.Duration())
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := LoadFromReader(strings.NewReader("backends: [unterminated"))
		assert.Error(t, err)
	})

	t.Run("invalid duration", func(t *testing.T) {
		_, err := LoadFromReader(strings.NewReader("server:\n  readTimeout: soon\n"))
		assert.Error(t, err)
	})
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/gateway.yaml")
	assert.Error(t, err)
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Run("set variable", func(t *testing.T) {
		t.Setenv("TEST_BACKEND_HOST", "app2.internal")
		result := substituteEnvVars("address: ${TEST_BACKEND_HOST}")
		assert.Equal(t, "address: app2.internal", result)
	})

	t.Run("default used when unset", func(t *testing.T) {
		result := substituteEnvVars("address: ${UNSET_HOST_VAR:-fallback}")
		assert.Equal(t, "address: fallback", result)
	})

	t.Run("set variable wins over default", func(t *testing.T) {
		t.Setenv("TEST_BACKEND_HOST", "real")
		result := substituteEnvVars("address: ${TEST_BACKEND_HOST:-fallback}")
		assert.Equal(t, "address: real", result)
	})

	t.Run("escaped dollar preserved", func(t *testing.T) {
		result := substituteEnvVars("password: $${literal}")
		assert.Equal(t, "password: ${literal}", result)
	})
}
