package cli

import (
	"fmt"

	"github.com/semmy-space/agentkeys/internal/config"
	"github.com/semmy-space/agentkeys/internal/output"
)

// ConfigGetCmd implements config get command
type ConfigGetCmd struct {
	Key string `arg:"" help:"Config key to get (e.g., secrets_dir, legacy_scripts)"`
}

// Run executes the get command
func (cmd *ConfigGetCmd) Run(cfg *config.Config, rt *Runtime) error {
	value, err := cfg.Get(cmd.Key)
	if err != nil {
		return unknownKeyError(cfg, cmd.Key, output.ExitNotFound)
	}

	fmt.Fprintln(rt.Stdout, value)
	return nil
}

// ConfigSetCmd implements config set command
type ConfigSetCmd struct {
	Key   string `arg:"" help:"Config key to set"`
	Value string `arg:"" help:"Value to set (comma-separated for lists)"`
}

// Run executes the set command
func (cmd *ConfigSetCmd) Run(cfg *config.Config, rt *Runtime) error {
	if _, err := cfg.Get(cmd.Key); err != nil {
		return unknownKeyError(cfg, cmd.Key, output.ExitUsage)
	}

	if cmd.Key == "default_output" {
		switch cmd.Value {
		case "json", "plain", "rich", "yaml", "auto":
		default:
			return &output.CLIError{
				Message:  fmt.Sprintf("Invalid output format: %s. Valid: json, plain, rich, yaml, auto", cmd.Value),
				ExitCode: output.ExitUsage,
			}
		}
	}

	if err := cfg.Set(cmd.Key, cmd.Value); err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to set config: %v", err),
			ExitCode: output.ExitGeneral,
			Err:      err,
		}
	}

	fmt.Fprintf(rt.Stderr, "Set %s = %s\n", cmd.Key, cmd.Value)
	return nil
}

// ConfigUnsetCmd implements config unset command
type ConfigUnsetCmd struct {
	Key string `arg:"" help:"Config key to remove"`
}

// Run executes the unset command
func (cmd *ConfigUnsetCmd) Run(cfg *config.Config, rt *Runtime) error {
	if _, err := cfg.Get(cmd.Key); err != nil {
		return unknownKeyError(cfg, cmd.Key, output.ExitUsage)
	}

	if err := cfg.Unset(cmd.Key); err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to unset config: %v", err),
			ExitCode: output.ExitGeneral,
			Err:      err,
		}
	}

	fmt.Fprintf(rt.Stderr, "Unset %s\n", cmd.Key)
	return nil
}

// ConfigListConfigCmd implements config list command
type ConfigListConfigCmd struct{}

// Run executes the list command
func (cmd *ConfigListConfigCmd) Run(cfg *config.Config, fp *FormatterProvider) error {
	type ConfigItem struct {
		Key   string
		Value string
	}

	var items []ConfigItem
	for _, key := range cfg.Keys() {
		value, _ := cfg.Get(key)
		items = append(items, ConfigItem{Key: key, Value: value})
	}

	cols := []output.Column{
		{Name: "Key", Key: "Key"},
		{Name: "Value", Key: "Value"},
	}

	return fp.Formatter.PrintList(items, cols)
}

// ConfigPathCmd implements config path command
type ConfigPathCmd struct{}

// Run executes the path command
func (cmd *ConfigPathCmd) Run(cfg *config.Config, rt *Runtime) error {
	path := cfg.Path()

	fmt.Fprintln(rt.Stdout, path)

	if fileExists(path) {
		fmt.Fprintf(rt.Stderr, "(file exists)\n")
	} else {
		fmt.Fprintf(rt.Stderr, "(file does not exist yet - will be created on first write)\n")
	}

	return nil
}

func unknownKeyError(cfg *config.Config, key string, code int) *output.CLIError {
	return &output.CLIError{
		Message:  fmt.Sprintf("Unknown config key: %s", key),
		ExitCode: code,
		Hint:     fmt.Sprintf("Valid keys: %v", cfg.Keys()),
	}
}
