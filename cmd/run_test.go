package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apibdd/internal/config"
	"apibdd/pkg/logging"
)

func TestRunCommandDefinesTimeoutFlag(t *testing.T) {
	flag := newRunCmd().Flags().Lookup("timeout")
	require.NotNil(t, flag)
	assert.Equal(t, "0s", flag.DefValue)
}

func TestWithTimeout(t *testing.T) {
	environment := config.Environment{
		BaseURL: "http://localhost:8080",
		Timeout: 30 * time.Second,
	}

	overridden := withTimeout(environment, 5*time.Second)
	assert.Equal(t, 5*time.Second, overridden.Timeout)

	// Zero means "use the environment's own timeout".
	unchanged := withTimeout(environment, 0)
	assert.Equal(t, 30*time.Second, unchanged.Timeout)
}

func TestEffectiveLogLevel(t *testing.T) {
	// Config level applies when the flag was left at its default.
	level, err := effectiveLogLevel(false, "info", "debug")
	require.NoError(t, err)
	assert.Equal(t, logging.LevelDebug, level)

	// An explicit flag wins over the config.
	level, err = effectiveLogLevel(true, "warn", "debug")
	require.NoError(t, err)
	assert.Equal(t, logging.LevelWarn, level)

	// Without a configured level the flag value stands.
	level, err = effectiveLogLevel(false, "error", "")
	require.NoError(t, err)
	assert.Equal(t, logging.LevelError, level)
}
