// Package store owns the on-disk credential file: its codec, the permission
// guard around it, and the atomic writer that is the only way to mutate it.
package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/semmy-space/agentkeys/internal/registry"
)

// Store errors. Callers match them with errors.Is.
var (
	// ErrNotFound is returned when the store file does not exist
	ErrNotFound = errors.New("credential store not found")

	// ErrMalformed is returned when the store file cannot be parsed or has the wrong shape
	ErrMalformed = errors.New("credential store is malformed")

	// ErrValidationFailed is returned when a mutation would leave required fields missing
	ErrValidationFailed = errors.New("credential store failed validation")

	// ErrPermission is returned when owner-only modes cannot be enforced
	ErrPermission = errors.New("cannot enforce credential store permissions")

	// ErrIO is returned when the temp-file write or rename fails
	ErrIO = errors.New("credential store write failed")

	// ErrInvalidValue is returned, wrapped in ErrValidationFailed, for values that are not UTF-8 text
	ErrInvalidValue = errors.New("credential value is not valid UTF-8")

	// ErrNotConfigured is returned to consumers when a credential is empty
	ErrNotConfigured = errors.New("credential not configured")
)

// ProviderEntry maps field names to values. Empty string means unset.
type ProviderEntry map[string]string

// CredentialStore maps provider names to their entries
type CredentialStore map[string]ProviderEntry

// Clone returns a deep copy
func (cs CredentialStore) Clone() CredentialStore {
	out := make(CredentialStore, len(cs))
	for provider, entry := range cs {
		e := make(ProviderEntry, len(entry))
		for k, v := range entry {
			e[k] = v
		}
		out[provider] = e
	}
	return out
}

// Template returns a store with every known provider and its required fields empty
func Template() CredentialStore {
	cs := make(CredentialStore)
	for _, provider := range registry.Providers() {
		cs[provider] = templateEntry(provider)
	}
	return cs
}

func templateEntry(provider string) ProviderEntry {
	schema, err := registry.Lookup(provider)
	if err != nil {
		return ProviderEntry{}
	}
	entry := make(ProviderEntry, len(schema.Required))
	for _, field := range schema.Required {
		entry[field] = ""
	}
	return entry
}

// MissingField names a required field absent from a present provider
type MissingField struct {
	Provider string
	Field    string
}

func (m MissingField) String() string {
	return m.Provider + "." + m.Field
}

// validationError wraps ErrValidationFailed around one error per missing field
func validationError(missing []MissingField) error {
	var merr *multierror.Error
	for _, m := range missing {
		merr = multierror.Append(merr, fmt.Errorf("%s: missing required field %q", m.Provider, m.Field))
	}
	merr.ErrorFormat = inlineFormat
	return fmt.Errorf("%w: %w", ErrValidationFailed, merr)
}

func inlineFormat(errs []error) string {
	parts := make([]string, len(errs))
	for i, err := range errs {
		parts[i] = err.Error()
	}
	return strings.Join(parts, "; ")
}
