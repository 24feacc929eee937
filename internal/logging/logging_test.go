package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ConsoleOnly(t *testing.T) {
	logger, err := New(Options{Level: "info"})
	require.NoError(t, err)
	require.NotNil(t, logger)
	logger.Info("console only")
}

func TestNew_WithLogFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "redisrepl.log")

	logger, err := New(Options{Level: "debug", LogFile: path})
	require.NoError(t, err)
	logger.Debug("hello")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Options{Level: "not-a-level"})
	require.Error(t, err)
}
