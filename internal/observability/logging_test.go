package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		logger, err := NewLogger(DefaultLogConfig())
		require.NoError(t, err)
		assert.NotNil(t, logger)
	})

	t.Run("console format", func(t *testing.T) {
		logger, err := NewLogger(LogConfig{Level: "debug", Format: "console"})
		require.NoError(t, err)
		logger.Debug("console logger works")
	})

	t.Run("stderr output", func(t *testing.T) {
		_, err := NewLogger(LogConfig{Level: "warn", Output: "stderr"})
		require.NoError(t, err)
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := NewLogger(LogConfig{Level: "shouting"})
		assert.Error(t, err)
	})
}
