package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/semmy-space/agentkeys/internal/output"
	"github.com/semmy-space/agentkeys/internal/registry"
	"github.com/semmy-space/agentkeys/internal/store"
)

// storeError converts a registry or store error into a CLIError with a hint.
// Mutation failures exit 1, or 6 when permissions cannot be enforced; the file
// on disk is unchanged either way.
func storeError(action, path string, err error) *output.CLIError {
	code := output.ExitGeneral
	if errors.Is(err, store.ErrPermission) {
		code = output.ExitForbidden
	}
	cliErr := output.NewCLIError(code, fmt.Sprintf("%s: %v", action, err)).WithCause(err)

	switch {
	case errors.Is(err, registry.ErrUnknownProvider):
		cliErr.WithHint("Known providers: " + strings.Join(registry.Providers(), ", "))
	case errors.Is(err, registry.ErrUnknownField):
		cliErr.WithHint("Run: agentkeys providers")
	case errors.Is(err, store.ErrNotFound):
		cliErr.WithHint("Run: agentkeys migrate")
	case errors.Is(err, store.ErrMalformed):
		cliErr.WithHint(fmt.Sprintf("Fix %s by hand, or run: agentkeys migrate --overwrite (the old file is backed up)", path))
	case errors.Is(err, store.ErrInvalidValue):
		cliErr.WithHint("Values must be UTF-8 text; check the input encoding")
	case errors.Is(err, store.ErrValidationFailed):
		cliErr.WithHint("Run: agentkeys check")
	case errors.Is(err, store.ErrPermission):
		cliErr.WithHint(fmt.Sprintf("Make sure you own %s and can change its permissions", filepath.Dir(path)))
	case errors.Is(err, store.ErrNotConfigured):
		cliErr.WithHint("Run: agentkeys set-key <provider>")
	}

	return cliErr
}
