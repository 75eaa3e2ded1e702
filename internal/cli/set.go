package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/semmy-space/agentkeys/internal/output"
	"github.com/semmy-space/agentkeys/internal/registry"
	"github.com/semmy-space/agentkeys/internal/store"
)

// SetKeyCmd sets a provider's api_key
type SetKeyCmd struct {
	Provider string `arg:"" help:"Provider name" predictor:"provider"`
	Value    string `arg:"" optional:"" help:"API key (prompted for, or read from stdin, when omitted)"`
}

// Run executes the set-key command
func (cmd *SetKeyCmd) Run(rt *Runtime, globals *Globals) error {
	return setField(rt, globals, cmd.Provider, "api_key", cmd.Value)
}

// SetCmd sets any registered field of a provider
type SetCmd struct {
	Provider string `arg:"" help:"Provider name" predictor:"provider"`
	Field    string `arg:"" help:"Field name (e.g., api_key, project_id)" predictor:"field"`
	Value    string `arg:"" optional:"" help:"Value (prompted for, or read from stdin, when omitted)"`
}

// Run executes the set command
func (cmd *SetCmd) Run(rt *Runtime, globals *Globals) error {
	return setField(rt, globals, cmd.Provider, cmd.Field, cmd.Value)
}

// setField updates exactly one field. The value is never echoed back.
func setField(rt *Runtime, globals *Globals, provider, field, value string) error {
	if err := registry.CheckField(provider, field); err != nil {
		return storeError("Cannot set credential", rt.StorePath, err)
	}

	if value == "" {
		var err error
		value, err = readValue(rt, provider, field)
		if err != nil {
			return err
		}
	}

	if globals.DryRun {
		fmt.Fprintf(rt.Stderr, "[dry-run] Would set %s.%s in %s\n", provider, field, rt.StorePath)
		return nil
	}

	w := store.NewWriter(rt.StorePath, rt.Log)
	if err := w.WriteField(provider, field, value); err != nil {
		return storeError(fmt.Sprintf("Failed to set %s.%s", provider, field), rt.StorePath, err)
	}

	fmt.Fprintf(rt.Stderr, "Set %s.%s in %s\n", provider, field, rt.StorePath)
	return nil
}

// readValue obtains a value that was not given on the command line:
// a hidden prompt on a terminal, otherwise the whole of stdin.
func readValue(rt *Runtime, provider, field string) (string, error) {
	var value string
	switch {
	case rt.Interactive:
		v, err := rt.ReadSecret(fmt.Sprintf("Value for %s.%s: ", provider, field))
		if err != nil {
			return "", &output.CLIError{
				Message:  fmt.Sprintf("Failed to read value: %v", err),
				ExitCode: output.ExitGeneral,
				Err:      err,
			}
		}
		value = v
	case rt.StdinTTY:
		return "", &output.CLIError{
			Message:  "No value given and prompts are disabled",
			ExitCode: output.ExitUsage,
			Hint:     "Pass the value as an argument or pipe it on stdin",
		}
	default:
		data, err := io.ReadAll(rt.Stdin)
		if err != nil {
			return "", &output.CLIError{
				Message:  fmt.Sprintf("Failed to read stdin: %v", err),
				ExitCode: output.ExitGeneral,
				Err:      err,
			}
		}
		value = strings.TrimSpace(string(data))
	}

	if value == "" {
		return "", &output.CLIError{
			Message:  fmt.Sprintf("Empty value for %s.%s", provider, field),
			ExitCode: output.ExitUsage,
		}
	}
	return value, nil
}
