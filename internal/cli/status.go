package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/semmy-space/agentkeys/internal/output"
	"github.com/semmy-space/agentkeys/internal/registry"
	"github.com/semmy-space/agentkeys/internal/store"
)

// StatusCmd lists which providers have an API key
type StatusCmd struct{}

type statusRow struct {
	Provider   string
	Configured string
}

// Run executes the status command
func (cmd *StatusCmd) Run(rt *Runtime, fp *FormatterProvider) error {
	reader := store.NewReader(rt.StorePath, rt.Log)

	available, err := reader.Available()
	if err != nil {
		cliErr := storeError("Cannot read credential store", rt.StorePath, err)
		if errors.Is(err, store.ErrNotFound) {
			cliErr.ExitCode = output.ExitNotFound
		}
		return cliErr
	}

	rows := make([]statusRow, 0, len(available))
	for _, provider := range registry.Providers() {
		rows = append(rows, statusRow{Provider: provider, Configured: formatBool(available[provider])})
	}

	cols := []output.Column{
		{Name: "Provider", Key: "Provider"},
		{Name: "Configured", Key: "Configured"},
	}
	return fp.Formatter.PrintList(rows, cols)
}

// ProvidersCmd lists the registry
type ProvidersCmd struct{}

type providerRow struct {
	Provider string
	Required string
	Optional string
}

// Run executes the providers command
func (cmd *ProvidersCmd) Run(fp *FormatterProvider) error {
	var rows []providerRow
	for _, name := range registry.Providers() {
		schema, err := registry.Lookup(name)
		if err != nil {
			return err
		}
		rows = append(rows, providerRow{
			Provider: name,
			Required: strings.Join(schema.Required, ", "),
			Optional: strings.Join(schema.Optional, ", "),
		})
	}

	cols := []output.Column{
		{Name: "Provider", Key: "Provider"},
		{Name: "Required", Key: "Required"},
		{Name: "Optional", Key: "Optional"},
	}
	return fp.Formatter.PrintList(rows, cols)
}

// PathCmd prints the credential store path
type PathCmd struct{}

// Run executes the path command
func (cmd *PathCmd) Run(rt *Runtime) error {
	fmt.Fprintln(rt.Stdout, rt.StorePath)

	if fileExists(rt.StorePath) {
		fmt.Fprintf(rt.Stderr, "(file exists)\n")
	} else {
		fmt.Fprintf(rt.Stderr, "(file does not exist yet - run: agentkeys migrate)\n")
	}

	return nil
}

func formatBool(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
