package legacy

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvSource(t *testing.T) {
	env := map[string]string{
		"OPENAI_API_KEY":     "sk-env",
		"GOOGLE_PROJECT_ID":  "proj",
		"ANTHROPIC_API_KEY":  "",
		"PERPLEXITY_API_KEY": "$PPLX_TOKEN",
	}
	src := &EnvSource{
		Mappings: DefaultMappings(),
		lookup: func(name string) (string, bool) {
			v, ok := env[name]
			return v, ok
		},
	}

	recovered, err := src.Recover()
	require.NoError(t, err)

	assert.Equal(t, []Recovery{
		{Provider: "openai", Field: "api_key", Value: "sk-env", Source: "env:OPENAI_API_KEY"},
		{Provider: "google", Field: "project_id", Value: "proj", Source: "env:GOOGLE_PROJECT_ID"},
		{Provider: "perplexity", Field: "api_key", Source: "env:PERPLEXITY_API_KEY", Rejected: "value is a variable reference"},
	}, recovered)
}

func TestEnvSourceUsesProcessEnvironment(t *testing.T) {
	t.Setenv("ELEVENLABS_API_KEY", "el-123")

	src := NewEnvSource([]Mapping{{Name: "ELEVENLABS_API_KEY", Provider: "elevenlabs", Field: "api_key"}})
	recovered, err := src.Recover()
	require.NoError(t, err)
	require.Len(t, recovered, 1)
	assert.Equal(t, "el-123", recovered[0].Value)
}

func TestFileSource(t *testing.T) {
	script := `#!/bin/bash
# legacy launcher
export OPENAI_API_KEY="sk-from-script"
ANTHROPIC_API_KEY='ant-single'
GOOGLE_API_KEY=goog-bare # trailing comment
GOOGLE_PROJECT_ID=$PROJECT
OPENROUTER_API_KEY="${OR_KEY}"
PERPLEXITY_API_KEY="unterminated
ELEVENLABS_API_KEY=""
OPENAI_ORGANIZATION=org-1;
ANTHROPIC_API_KEY="ant-\"escaped\"-\\x"
OPENROUTER_API_KEY=$(pass show openrouter)
UNRELATED=value
  export LOCAL_MODEL_PATH = /models/first.gguf
LOCAL_MODEL_PATH=/models/second.gguf
python -m schmagent
`
	path := filepath.Join(t.TempDir(), "run_unified.sh")
	require.NoError(t, os.WriteFile(path, []byte(script), 0700))

	recovered, err := NewFileSource(path, DefaultMappings()).Recover()
	require.NoError(t, err)

	byField := make(map[string]Recovery)
	for _, r := range recovered {
		byField[r.Provider+"."+r.Field] = r
	}

	assert.Equal(t, "sk-from-script", byField["openai.api_key"].Value)
	assert.Equal(t, `ant-"escaped"-\x`, byField["anthropic.api_key"].Value)
	assert.Equal(t, "org-1", byField["openai.organization_id"].Value)
	assert.Equal(t, "goog-bare", byField["google.api_key"].Value)
	assert.Equal(t, "/models/second.gguf", byField["local.model_path"].Value)

	assert.Equal(t, "value is a variable reference", byField["google.project_id"].Rejected)
	assert.Empty(t, byField["google.project_id"].Value)
	assert.Equal(t, "value is a variable reference", byField["openrouter.api_key"].Rejected)
	assert.Contains(t, byField["perplexity.api_key"].Rejected, "unterminated")

	_, ok := byField["elevenlabs.api_key"]
	assert.False(t, ok, "empty assignments are ignored")

	assert.Equal(t, "file:"+path+":OPENAI_API_KEY", byField["openai.api_key"].Source)
	assert.Len(t, recovered, 8)
}

func TestFileSourceMissingFile(t *testing.T) {
	recovered, err := NewFileSource(filepath.Join(t.TempDir(), "nope.sh"), DefaultMappings()).Recover()
	assert.NoError(t, err)
	assert.Empty(t, recovered)
}

func TestUnquote(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
		wantErr  bool
	}{
		{raw: `"abc"`, expected: "abc"},
		{raw: `'abc'`, expected: "abc"},
		{raw: `"a # b"`, expected: "a # b"},
		{raw: `abc # comment`, expected: "abc"},
		{raw: `abc#notcomment`, expected: "abc#notcomment"},
		{raw: `"abc" # comment`, expected: "abc"},
		{raw: ``, expected: ""},
		{raw: `"abc`, wantErr: true},
		{raw: `"sk-a\"b"`, expected: `sk-a"b`},
		{raw: `"sk-a\\b"`, expected: `sk-a\b`},
		{raw: `"sk-a\nb"`, expected: `sk-a\nb`},
		{raw: `"sk-a\"`, wantErr: true},
		{raw: `'sk-a\'`, expected: `sk-a\`},
		{raw: `sk-g;`, expected: "sk-g"},
		{raw: `sk-g; echo done`, expected: "sk-g"},
		{raw: `sk-g&&run`, expected: "sk-g"},
		{raw: `"sk-g";`, expected: "sk-g"},
		{raw: `$(pass show openai)`, expected: "$(pass"},
		{raw: `sk\-g`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := unquote(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestIsVariableReference(t *testing.T) {
	assert.True(t, isVariableReference("$OPENAI_KEY"))
	assert.True(t, isVariableReference("${OPENAI_KEY}"))
	assert.True(t, isVariableReference("$(pass show openai)"))
	assert.True(t, isVariableReference("prefix-$VAR"))
	assert.True(t, isVariableReference("`pass show openai`"))
	assert.False(t, isVariableReference("sk-abc123"))
	assert.False(t, isVariableReference("cost$5"))
}

func TestKeyringSource(t *testing.T) {
	ring := keyring.NewArrayKeyring([]keyring.Item{
		{Key: "openai.api_key", Data: []byte("sk-ring")},
		{Key: "google.project_id", Data: []byte("")},
		{Key: "anthropic.api_key", Data: []byte("${ANTHROPIC}")},
	})

	src := NewKeyringSource("schmagent", DefaultMappings())
	src.open = func() (keyring.Keyring, error) { return ring, nil }

	recovered, err := src.Recover()
	require.NoError(t, err)

	assert.Equal(t, []Recovery{
		{Provider: "openai", Field: "api_key", Value: "sk-ring", Source: "keyring:schmagent:openai.api_key"},
		{Provider: "anthropic", Field: "api_key", Source: "keyring:schmagent:anthropic.api_key", Rejected: "value is a variable reference"},
	}, recovered)
}

func TestKeyringSourceOpenFailure(t *testing.T) {
	src := NewKeyringSource("schmagent", DefaultMappings())
	src.open = func() (keyring.Keyring, error) { return nil, errors.New("no backend") }

	_, err := src.Recover()
	assert.ErrorContains(t, err, "no backend")
}

func TestWarnOncePrintsOnlyFirstTime(t *testing.T) {
	t.Setenv("AGENTKEYS_QUIET", "")
	marker := filepath.Join(t.TempDir(), "state", ".keyring-import-skipped")

	var first, second bytes.Buffer
	warnOnce(&first, marker, "keyring skipped")
	warnOnce(&second, marker, "keyring skipped")

	assert.Equal(t, "keyring skipped\n", first.String())
	assert.Empty(t, second.String())
	info, err := os.Stat(marker)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestWarnOnceQuiet(t *testing.T) {
	t.Setenv("AGENTKEYS_QUIET", "1")
	marker := filepath.Join(t.TempDir(), ".keyring-import-skipped")

	var out bytes.Buffer
	warnOnce(&out, marker, "keyring skipped")

	assert.Empty(t, out.String())
	_, err := os.Stat(marker)
	assert.True(t, os.IsNotExist(err))
}

func TestKeyringSkipReasonHeadless(t *testing.T) {
	if runtime.GOOS != "linux" || IsWSL() {
		t.Skip("headless detection only applies to non-WSL Linux")
	}

	t.Setenv("DISPLAY", "")
	t.Setenv("WAYLAND_DISPLAY", "")
	assert.Contains(t, KeyringSkipReason(), "no display session")

	t.Setenv("WAYLAND_DISPLAY", "wayland-0")
	assert.Empty(t, KeyringSkipReason())
}
