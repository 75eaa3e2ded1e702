package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/semmy-space/agentkeys/internal/registry"
	"github.com/xeipuuv/gojsonschema"
)

// RedactedValue replaces secret values in diagnostic output
const RedactedValue = "********"

// structure is the shape every store file must have, independent of the registry:
// an object of objects whose values are strings.
const structure = `{
  "type": "object",
  "additionalProperties": {
    "type": "object",
    "additionalProperties": {"type": "string"}
  }
}`

var structureLoader = gojsonschema.NewStringLoader(structure)

// Load reads and parses the store file. It never repairs what it finds.
func Load(path string) (CredentialStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: read %s: %w", ErrIO, path, err)
	}

	cs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cs, nil
}

// Parse decodes store content after checking its structure
func Parse(data []byte) (CredentialStore, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrMalformed)
	}

	result, err := gojsonschema.Validate(structureLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !result.Valid() {
		var merr *multierror.Error
		for _, desc := range result.Errors() {
			merr = multierror.Append(merr, fmt.Errorf("%s", desc.String()))
		}
		merr.ErrorFormat = inlineFormat
		return nil, fmt.Errorf("%w: %w", ErrMalformed, merr)
	}

	var cs CredentialStore
	if err := json.Unmarshal(data, &cs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	for provider, entry := range cs {
		if entry == nil {
			cs[provider] = ProviderEntry{}
		}
	}
	return cs, nil
}

// Render serializes the store deterministically. Known providers come first in
// registry order, then unknown ones sorted; fields follow the same rule per provider.
func Render(cs CredentialStore) []byte {
	var buf bytes.Buffer

	providers := orderedProviders(cs)
	if len(providers) == 0 {
		buf.WriteString("{}\n")
		return buf.Bytes()
	}

	buf.WriteString("{\n")
	for i, provider := range providers {
		entry := cs[provider]

		buf.WriteString("  ")
		writeString(&buf, provider)
		buf.WriteString(": ")

		fields := orderedFields(provider, entry)
		if len(fields) == 0 {
			buf.WriteString("{}")
		} else {
			buf.WriteString("{\n")
			for j, field := range fields {
				buf.WriteString("    ")
				writeString(&buf, field)
				buf.WriteString(": ")
				writeString(&buf, entry[field])
				if j < len(fields)-1 {
					buf.WriteByte(',')
				}
				buf.WriteByte('\n')
			}
			buf.WriteString("  }")
		}

		if i < len(providers)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")

	return buf.Bytes()
}

// writeString emits s as a JSON string without HTML escaping
func writeString(buf *bytes.Buffer, s string) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail
	_ = enc.Encode(s)
	buf.Write(bytes.TrimSuffix(b.Bytes(), []byte("\n")))
}

func orderedProviders(cs CredentialStore) []string {
	out := make([]string, 0, len(cs))
	for _, provider := range registry.Providers() {
		if _, ok := cs[provider]; ok {
			out = append(out, provider)
		}
	}

	var unknown []string
	for provider := range cs {
		if !registry.Known(provider) {
			unknown = append(unknown, provider)
		}
	}
	sort.Strings(unknown)

	return append(out, unknown...)
}

func orderedFields(provider string, entry ProviderEntry) []string {
	out := make([]string, 0, len(entry))

	schema, err := registry.Lookup(provider)
	if err == nil {
		for _, field := range schema.Fields() {
			if _, ok := entry[field]; ok {
				out = append(out, field)
			}
		}
	}

	var extra []string
	for field := range entry {
		if err != nil || !schema.HasField(field) {
			extra = append(extra, field)
		}
	}
	sort.Strings(extra)

	return append(out, extra...)
}

// Validate lists required fields missing from providers present in the store.
// Absent providers and providers unknown to the registry are not flagged.
func Validate(cs CredentialStore) []MissingField {
	var missing []MissingField
	for _, provider := range registry.Providers() {
		entry, ok := cs[provider]
		if !ok {
			continue
		}
		schema, _ := registry.Lookup(provider)
		for _, field := range schema.Required {
			if _, ok := entry[field]; !ok {
				missing = append(missing, MissingField{Provider: provider, Field: field})
			}
		}
	}
	return missing
}

// Repair returns a copy of the store completed against the registry: missing
// known providers gain their template entry and missing required fields are
// added empty. The second result lists every field that was added.
func Repair(cs CredentialStore) (CredentialStore, []MissingField) {
	out := cs.Clone()
	var added []MissingField

	for _, provider := range registry.Providers() {
		entry, ok := out[provider]
		if !ok {
			entry = ProviderEntry{}
			out[provider] = entry
		}
		schema, _ := registry.Lookup(provider)
		for _, field := range schema.Required {
			if _, ok := entry[field]; !ok {
				entry[field] = ""
				added = append(added, MissingField{Provider: provider, Field: field})
			}
		}
	}

	return out, added
}

// Redact returns a copy with every non-empty secret field masked
func Redact(cs CredentialStore) CredentialStore {
	out := cs.Clone()
	for _, entry := range out {
		for field, value := range entry {
			if value != "" && registry.IsSecretField(field) {
				entry[field] = RedactedValue
			}
		}
	}
	return out
}
