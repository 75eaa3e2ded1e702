package legacy

import "os"

// EnvSource reads mapped environment variables
type EnvSource struct {
	Mappings []Mapping

	// lookup defaults to os.LookupEnv
	lookup func(string) (string, bool)
}

// NewEnvSource creates an environment source for the given mappings
func NewEnvSource(mappings []Mapping) *EnvSource {
	return &EnvSource{Mappings: mappings, lookup: os.LookupEnv}
}

func (s *EnvSource) Name() string {
	return "env"
}

// Recover returns a recovery for every mapped variable that is set and non-empty
func (s *EnvSource) Recover() ([]Recovery, error) {
	lookup := s.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	var out []Recovery
	for _, m := range s.Mappings {
		value, ok := lookup(m.Name)
		if !ok || value == "" {
			continue
		}

		r := Recovery{
			Provider: m.Provider,
			Field:    m.Field,
			Value:    value,
			Source:   "env:" + m.Name,
		}
		if isVariableReference(value) {
			r.Value = ""
			r.Rejected = "value is a variable reference"
		}
		out = append(out, r)
	}
	return out, nil
}
