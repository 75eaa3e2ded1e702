// Package legacy recovers credentials from places older setups left them:
// environment variables, hand-written shell scripts and the OS keyring.
package legacy

import (
	"regexp"
)

// Source is a legacy location that may hold credential values
type Source interface {
	// Name identifies the source in migration reports
	Name() string

	// Recover returns every value the source can offer.
	// A source with nothing to offer returns an empty slice, not an error.
	Recover() ([]Recovery, error)
}

// Recovery is one value found by a source
type Recovery struct {
	Provider string
	Field    string
	Value    string
	Source   string

	// Rejected is set when a value was found but cannot be used safely
	Rejected string
}

// Mapping ties a legacy variable name to a store field
type Mapping struct {
	Name     string
	Provider string
	Field    string
}

// DefaultMappings are the variable names earlier releases read at startup
func DefaultMappings() []Mapping {
	return []Mapping{
		{Name: "OPENAI_API_KEY", Provider: "openai", Field: "api_key"},
		{Name: "OPENAI_ORGANIZATION", Provider: "openai", Field: "organization_id"},
		{Name: "ANTHROPIC_API_KEY", Provider: "anthropic", Field: "api_key"},
		{Name: "GOOGLE_API_KEY", Provider: "google", Field: "api_key"},
		{Name: "GOOGLE_PROJECT_ID", Provider: "google", Field: "project_id"},
		{Name: "OPENROUTER_API_KEY", Provider: "openrouter", Field: "api_key"},
		{Name: "PERPLEXITY_API_KEY", Provider: "perplexity", Field: "api_key"},
		{Name: "ELEVENLABS_API_KEY", Provider: "elevenlabs", Field: "api_key"},
		{Name: "LOCAL_MODEL_PATH", Provider: "local", Field: "model_path"},
	}
}

// variableRef matches $VAR, ${VAR}, $(cmd) and `cmd` anywhere in a value
var variableRef = regexp.MustCompile("\\$(\\{|\\(|[A-Za-z_])|`")

// isVariableReference reports whether a value points at another variable
// instead of holding a concrete secret
func isVariableReference(value string) bool {
	return variableRef.MatchString(value)
}
