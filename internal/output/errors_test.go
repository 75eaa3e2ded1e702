package output

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCLIError(t *testing.T) {
	err := NewCLIError(ExitForbidden, "permission denied")
	assert.Equal(t, ExitForbidden, err.ExitCode)
	assert.Equal(t, "permission denied", err.Message)
	assert.Empty(t, err.Hint)
}

func TestCLIErrorError(t *testing.T) {
	err := &CLIError{Message: "something broke"}
	assert.Equal(t, "something broke", err.Error())
}

func TestCLIErrorWithHint(t *testing.T) {
	err := NewCLIError(ExitNotFound, "no credential store")
	result := err.WithHint("Run: agentkeys migrate")

	// Fluent builder returns same pointer
	assert.Same(t, err, result)
	assert.Equal(t, "Run: agentkeys migrate", err.Hint)
}

func TestCLIErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewCLIError(ExitGeneral, "write failed").WithCause(cause)
	assert.ErrorIs(t, err, cause)
}

func TestExitWithError(t *testing.T) {
	t.Run("cli error", func(t *testing.T) {
		var stderr bytes.Buffer
		f := NewWithWriters("plain", &bytes.Buffer{}, &stderr)

		wrapped := fmt.Errorf("run: %w", NewCLIError(ExitConflict, "store exists").WithHint("pass --overwrite"))
		code := ExitWithError(f, wrapped)

		assert.Equal(t, ExitConflict, code)
		assert.Equal(t, "error: store exists\nhint: pass --overwrite\n", stderr.String())
	})

	t.Run("plain error", func(t *testing.T) {
		var stderr bytes.Buffer
		f := NewWithWriters("plain", &bytes.Buffer{}, &stderr)

		code := ExitWithError(f, errors.New("boom"))
		assert.Equal(t, ExitGeneral, code)
		assert.Equal(t, "error: boom\n", stderr.String())
	})
}
