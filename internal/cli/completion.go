package cli

import (
	"github.com/posener/complete"
	"github.com/semmy-space/agentkeys/internal/registry"
	"github.com/willabides/kongplete"
)

// Predictors returns the completion predictors referenced by predictor:"..." tags
func Predictors() []kongplete.Option {
	return []kongplete.Option{
		kongplete.WithPredictor("provider", complete.PredictSet(registry.Providers()...)),
		kongplete.WithPredictor("field", complete.PredictSet(allFields()...)),
	}
}

// allFields lists every field name any provider accepts, without duplicates
func allFields() []string {
	seen := make(map[string]bool)
	var fields []string
	for _, provider := range registry.Providers() {
		schema, _ := registry.Lookup(provider)
		for _, f := range schema.Fields() {
			if !seen[f] {
				seen[f] = true
				fields = append(fields, f)
			}
		}
	}
	return fields
}
