package store

import (
	"path/filepath"
	"testing"

	"github.com/semmy-space/agentkeys/internal/logging"
	"github.com/semmy-space/agentkeys/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededReader(t *testing.T) *Reader {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secrets", "api_keys.json")

	w := NewWriter(path, logging.Discard)
	require.NoError(t, w.WriteField("openai", "api_key", "sk-live"))
	require.NoError(t, w.WriteField("google", "project_id", "proj-1"))
	require.NoError(t, w.WriteField("local", "model_path", "/models/m.gguf"))

	return NewReader(path, logging.Discard)
}

func TestReaderCredential(t *testing.T) {
	r := seededReader(t)

	key, err := r.APIKey("openai")
	require.NoError(t, err)
	assert.Equal(t, "sk-live", key)

	project, err := r.Credential("google", "project_id")
	require.NoError(t, err)
	assert.Equal(t, "proj-1", project)

	t.Run("empty value is not configured", func(t *testing.T) {
		_, err := r.APIKey("anthropic")
		assert.ErrorIs(t, err, ErrNotConfigured)
		assert.Contains(t, err.Error(), "anthropic.api_key")
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := r.APIKey("notaprovider")
		assert.ErrorIs(t, err, registry.ErrUnknownProvider)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := r.Credential("openai", "model_path")
		assert.ErrorIs(t, err, registry.ErrUnknownField)
	})
}

func TestReaderMissingStore(t *testing.T) {
	r := NewReader(filepath.Join(t.TempDir(), "secrets", "api_keys.json"), logging.Discard)

	_, err := r.APIKey("openai")
	assert.ErrorIs(t, err, ErrNotFound)

	// the read path still leaves an owner-only directory behind
	report := r.Guard.Inspect(filepath.Dir(r.Path), r.Path)
	assert.True(t, report.DirExists)
	assert.Equal(t, DirMode, report.DirMode)
}

func TestReaderProviderConfig(t *testing.T) {
	r := seededReader(t)

	cfg, err := r.ProviderConfig("local")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"model_path": "/models/m.gguf"}, cfg)
}

func TestReaderProviderReturnsCopy(t *testing.T) {
	r := seededReader(t)

	entry, err := r.Provider("openai")
	require.NoError(t, err)
	entry["api_key"] = "mutated"

	key, err := r.APIKey("openai")
	require.NoError(t, err)
	assert.Equal(t, "sk-live", key)
}

func TestReaderAvailable(t *testing.T) {
	r := seededReader(t)

	available, err := r.Available()
	require.NoError(t, err)
	assert.Len(t, available, len(registry.Providers()))
	assert.True(t, available["openai"])
	assert.False(t, available["google"])
	assert.False(t, available["local"])
}
