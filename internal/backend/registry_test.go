package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	t.Run("valid backends", func(t *testing.T) {
		registry, err := NewRegistry([]Backend{
			{Name: "app1", Address: "app1", Port: 3000},
			{Name: "app2", Address: "app2", Port: 5000},
		})

		require.NoError(t, err)
		assert.Equal(t, 2, registry.Count())
		assert.Equal(t, []string{"app1", "app2"}, registry.Names())
	})

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := NewRegistry([]Backend{{Address: "x", Port: 80}})
		assert.Error(t, err)
	})

	t.Run("empty address rejected", func(t *testing.T) {
		_, err := NewRegistry([]Backend{{Name: "app1", Port: 80}})
		assert.Error(t, err)
	})

	t.Run("invalid port rejected", func(t *testing.T) {
		_, err := NewRegistry([]Backend{{Name: "app1", Address: "x", Port: 0}})
		assert.Error(t, err)

		_, err = NewRegistry([]Backend{{Name: "app1", Address: "x", Port: 70000}})
		assert.Error(t, err)
	})

	t.Run("duplicate name rejected", func(t *testing.T) {
		_, err := NewRegistry([]Backend{
			{Name: "app1", Address: "a", Port: 3000},
			{Name: "app1", Address: "b", Port: 5000},
		})
		assert.ErrorContains(t, err, "duplicate backend name")
	})
}

func TestRegistry_Lookup(t *testing.T) {
	registry, err := NewRegistry([]Backend{
		{Name: "app2", Address: "app2", Port: 5000},
	})
	require.NoError(t, err)

	t.Run("known backend", func(t *testing.T) {
		b, ok := registry.Lookup("app2")
		assert.True(t, ok)
		assert.Equal(t, "app2:5000", b.HostPort())
		assert.Equal(t, "http://app2:5000", b.URL())
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, ok := registry.Lookup("app3")
		assert.False(t, ok)
	})
}

func TestBackend_HostPort(t *testing.T) {
	b := Backend{Name: "x", Address: "::1", Port: 8080}
	assert.Equal(t, "[::1]:8080", b.HostPort())
}
