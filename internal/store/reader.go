package store

import (
	"fmt"
	"path/filepath"

	"github.com/semmy-space/agentkeys/internal/logging"
	"github.com/semmy-space/agentkeys/internal/registry"
)

// Reader is the read path for provider clients. Every call re-reads the file.
type Reader struct {
	Path  string
	Guard Guard
}

// NewReader creates a reader for the store file at path
func NewReader(path string, log logging.Logger) *Reader {
	return &Reader{
		Path:  path,
		Guard: Guard{Log: log},
	}
}

// Load checks directory permissions and loads the store
func (r *Reader) Load() (CredentialStore, error) {
	if err := r.Guard.EnsureDir(filepath.Dir(r.Path)); err != nil {
		return nil, err
	}
	return Load(r.Path)
}

// Provider returns a copy of a single provider's field mapping
func (r *Reader) Provider(provider string) (ProviderEntry, error) {
	if _, err := registry.Lookup(provider); err != nil {
		return nil, err
	}

	cs, err := r.Load()
	if err != nil {
		return nil, err
	}

	entry, ok := cs[provider]
	if !ok {
		return nil, fmt.Errorf("%w: provider %s is absent from %s", ErrNotConfigured, provider, r.Path)
	}

	out := make(ProviderEntry, len(entry))
	for k, v := range entry {
		out[k] = v
	}
	return out, nil
}

// Credential returns one field value, treating empty as not configured
func (r *Reader) Credential(provider, field string) (string, error) {
	if err := registry.CheckField(provider, field); err != nil {
		return "", err
	}

	entry, err := r.Provider(provider)
	if err != nil {
		return "", err
	}

	value := entry[field]
	if value == "" {
		return "", fmt.Errorf("%w: %s.%s is empty; run: agentkeys set %s %s", ErrNotConfigured, provider, field, provider, field)
	}
	return value, nil
}

// APIKey returns the provider's api_key
func (r *Reader) APIKey(provider string) (string, error) {
	return r.Credential(provider, "api_key")
}

// ProviderConfig returns the provider's non-secret fields
func (r *Reader) ProviderConfig(provider string) (map[string]string, error) {
	entry, err := r.Provider(provider)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string)
	for field, value := range entry {
		if !registry.IsSecretField(field) {
			out[field] = value
		}
	}
	return out, nil
}

// Available reports, for every known provider, whether an api_key is set
func (r *Reader) Available() (map[string]bool, error) {
	cs, err := r.Load()
	if err != nil {
		return nil, err
	}

	out := make(map[string]bool, len(registry.Providers()))
	for _, provider := range registry.Providers() {
		out[provider] = cs[provider]["api_key"] != ""
	}
	return out, nil
}
