package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFeaturePaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.feature"), []byte("Feature: a\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.feature"), []byte("Feature: b\n"), 0o644))

	assert.NoError(t, validateFeaturePaths([]string{dir}))
	assert.NoError(t, validateFeaturePaths([]string{filepath.Join(dir, "a.feature")}))

	err := validateFeaturePaths([]string{filepath.Join(dir, "missing.feature")})
	assert.Error(t, err)

	empty := t.TempDir()
	err = validateFeaturePaths([]string{empty})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no feature files found")
}

func TestValidateDataDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.json"), []byte(`{"a":1}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "endpoints.yaml"), []byte("a: b\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644))

	assert.NoError(t, validateDataDir(dir))

	// Missing directory is a warning, not an error.
	assert.NoError(t, validateDataDir(filepath.Join(dir, "nope")))

	// Broken JSON is an error.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"a":`), 0o644))
	err := validateDataDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test data invalid")
}

func TestRunSuiteRejectsBadConcurrency(t *testing.T) {
	err := runSuite(&runFlags{concurrency: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "concurrency must be between 1 and 16")

	err = runSuite(&runFlags{concurrency: 32})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "concurrency must be between 1 and 16")
}
