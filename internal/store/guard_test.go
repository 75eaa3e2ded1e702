package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/semmy-space/agentkeys/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietGuard() Guard {
	return Guard{Log: logging.Discard}
}

func TestEnsureDirCreates(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "secrets")

	require.NoError(t, quietGuard().EnsureDir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, DirMode, info.Mode().Perm())
}

func TestEnsureDirRepairs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "secrets")
	require.NoError(t, os.Mkdir(dir, 0700))
	require.NoError(t, os.Chmod(dir, 0755))

	require.NoError(t, quietGuard().EnsureDir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, DirMode, info.Mode().Perm())
}

func TestEnsureDirRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets")
	require.NoError(t, os.WriteFile(path, nil, 0600))

	err := quietGuard().EnsureDir(path)
	assert.ErrorIs(t, err, ErrPermission)
}

func TestEnsureFile(t *testing.T) {
	t.Run("missing file is fine", func(t *testing.T) {
		assert.NoError(t, quietGuard().EnsureFile(filepath.Join(t.TempDir(), "api_keys.json")))
	})

	t.Run("loose mode is repaired", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "api_keys.json")
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0600))
		require.NoError(t, os.Chmod(path, 0644))

		require.NoError(t, quietGuard().EnsureFile(path))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, FileMode, info.Mode().Perm())
	})
}

func TestInspect(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "secrets")
	path := filepath.Join(dir, "api_keys.json")

	report := quietGuard().Inspect(dir, path)
	assert.False(t, report.DirExists)
	assert.False(t, report.FileExists)
	assert.True(t, report.Secure())

	require.NoError(t, os.Mkdir(dir, 0700))
	require.NoError(t, os.Chmod(dir, 0750))
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0600))
	require.NoError(t, os.Chmod(path, 0640))

	report = quietGuard().Inspect(dir, path)
	assert.True(t, report.DirExists)
	assert.True(t, report.FileExists)
	assert.Equal(t, os.FileMode(0750), report.DirMode)
	assert.Equal(t, os.FileMode(0640), report.FileMode)
	assert.False(t, report.Secure())
	assert.Len(t, report.Problems(), 2)
}
