package registry

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownProvider is returned for provider names the registry doesn't know
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrUnknownField is returned for fields not declared by a provider's schema
	ErrUnknownField = errors.New("unknown field")
)

// Schema declares the fields a provider entry may carry
type Schema struct {
	Required []string
	Optional []string
}

// Fields returns required fields followed by optional ones
func (s Schema) Fields() []string {
	fields := make([]string, 0, len(s.Required)+len(s.Optional))
	fields = append(fields, s.Required...)
	return append(fields, s.Optional...)
}

// HasField reports whether the schema declares the field
func (s Schema) HasField(field string) bool {
	for _, f := range s.Fields() {
		if f == field {
			return true
		}
	}
	return false
}

// order is the canonical provider order used for rendering and templates
var order = []string{
	"openai",
	"anthropic",
	"google",
	"openrouter",
	"perplexity",
	"elevenlabs",
	"local",
}

// schemas maps provider names to their field declarations.
// Adding a provider here is all it takes; existing files gain the
// template entry on the next repair.
var schemas = map[string]Schema{
	"openai": {
		Required: []string{"api_key"},
		Optional: []string{"organization_id"},
	},
	"anthropic": {
		Required: []string{"api_key"},
	},
	"google": {
		Required: []string{"api_key", "project_id"},
	},
	"openrouter": {
		Required: []string{"api_key"},
	},
	"perplexity": {
		Required: []string{"api_key"},
	},
	"elevenlabs": {
		Required: []string{"api_key"},
		Optional: []string{"voice_id"},
	},
	"local": {
		Required: []string{"api_key", "model_path"},
	},
}

// Lookup returns the schema for the specified provider
func Lookup(provider string) (Schema, error) {
	s, ok := schemas[provider]
	if !ok {
		return Schema{}, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
	return s, nil
}

// Providers returns every known provider name in canonical order
func Providers() []string {
	out := make([]string, len(order))
	copy(out, order)
	return out
}

// Known reports whether the provider is in the registry
func Known(provider string) bool {
	_, ok := schemas[provider]
	return ok
}

// CheckField validates a provider/field pair against the registry
func CheckField(provider, field string) error {
	s, err := Lookup(provider)
	if err != nil {
		return err
	}
	if !s.HasField(field) {
		return fmt.Errorf("%w: %s.%s (valid: %s)", ErrUnknownField, provider, field, strings.Join(s.Fields(), ", "))
	}
	return nil
}

// secretSuffixes mark field names whose values must never be displayed
var secretSuffixes = []string{"_key", "_secret", "_token"}

// IsSecretField reports whether a field holds a secret and must be redacted
func IsSecretField(field string) bool {
	if field == "password" {
		return true
	}
	for _, suffix := range secretSuffixes {
		if strings.HasSuffix(field, suffix) {
			return true
		}
	}
	return false
}
