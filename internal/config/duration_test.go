package config

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_JSON(t *testing.T) {
	t.Run("unmarshal string", func(t *testing.T) {
		var d Duration
		require.NoError(t, json.Unmarshal([]byte(`"30s"`), &d))
		assert.Equal(t, 30*time.Second, d.Duration())
	})

	t.Run("unmarshal null", func(t *testing.T) {
		var d Duration
		require.NoError(t, json.Unmarshal([]byte(`null`), &d))
		assert.Equal(t, time.Duration(0), d.Duration())
	})

	t.Run("unmarshal invalid", func(t *testing.T) {
		var d Duration
		assert.Error(t, json.Unmarshal([]byte(`"soon"`), &d))
	})

	t.Run("marshal emits duration string", func(t *testing.T) {
		b, err := json.Marshal(Duration(90 * time.Second))
		require.NoError(t, err)
		assert.Equal(t, `"1m30s"`, string(b))
	})
}
