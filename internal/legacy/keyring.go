package legacy

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

// KeyringSource reads items that earlier builds kept in the OS keyring.
// Items are keyed "<provider>.<field>" under the configured service name.
type KeyringSource struct {
	Service  string
	Mappings []Mapping

	open func() (keyring.Keyring, error)
}

// NewKeyringSource creates a keyring-backed legacy source.
// Only native backends are allowed so migration never prompts for a file-keyring password.
func NewKeyringSource(service string, mappings []Mapping) *KeyringSource {
	s := &KeyringSource{Service: service, Mappings: mappings}
	s.open = func() (keyring.Keyring, error) {
		return keyring.Open(keyring.Config{
			ServiceName:              service,
			KeychainTrustApplication: true, // macOS: don't prompt every access
			AllowedBackends: []keyring.BackendType{
				keyring.KeychainBackend,
				keyring.SecretServiceBackend,
				keyring.KWalletBackend,
				keyring.WinCredBackend,
			},
		})
	}
	return s
}

func (s *KeyringSource) Name() string {
	return "keyring:" + s.Service
}

// Recover looks up one item per mapped provider field
func (s *KeyringSource) Recover() ([]Recovery, error) {
	ring, err := s.open()
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}

	seen := make(map[string]bool)
	var out []Recovery
	for _, m := range s.Mappings {
		key := m.Provider + "." + m.Field
		if seen[key] {
			continue
		}
		seen[key] = true

		item, err := ring.Get(key)
		if err != nil {
			if errors.Is(err, keyring.ErrKeyNotFound) {
				continue
			}
			return nil, fmt.Errorf("keyring get %s failed: %w", key, err)
		}

		value := string(item.Data)
		if value == "" {
			continue
		}

		r := Recovery{
			Provider: m.Provider,
			Field:    m.Field,
			Value:    value,
			Source:   s.Name() + ":" + key,
		}
		if isVariableReference(value) {
			r.Value = ""
			r.Rejected = "value is a variable reference"
		}
		out = append(out, r)
	}
	return out, nil
}
