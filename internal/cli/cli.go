package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/semmy-space/agentkeys/internal/config"
	"github.com/semmy-space/agentkeys/internal/logging"
	"github.com/semmy-space/agentkeys/internal/output"
	"github.com/willabides/kongplete"
	"golang.org/x/term"
)

// FormatterProvider wraps the formatter interface for Kong binding
type FormatterProvider struct {
	Formatter output.Formatter
}

// Runtime carries the resolved store location and terminal plumbing commands need
type Runtime struct {
	StorePath string
	Log       logging.Logger

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// StdinTTY is true when stdin is a terminal
	StdinTTY bool

	// Interactive is true when prompts are allowed
	Interactive bool

	// ReadSecret prompts for a value without echo
	ReadSecret func(prompt string) (string, error)
}

// Confirm asks a yes/no question on stderr, defaulting to no
func (rt *Runtime) Confirm(prompt string) bool {
	fmt.Fprint(rt.Stderr, prompt)
	line, _ := bufio.NewReader(rt.Stdin).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// CLI is the root command structure
type CLI struct {
	Globals

	Migrate            MigrateCmd                   `cmd:"" help:"Create the credential store and import legacy credentials"`
	SetKey             SetKeyCmd                    `cmd:"" name:"set-key" help:"Set a provider's API key"`
	Set                SetCmd                       `cmd:"" help:"Set any field of a provider"`
	Check              CheckCmd                     `cmd:"" help:"Show the store (secrets redacted), report and repair problems"`
	Status             StatusCmd                    `cmd:"" help:"Show which providers are configured"`
	Providers          ProvidersCmd                 `cmd:"" help:"List known providers and their fields"`
	Path               PathCmd                      `cmd:"" help:"Show credential store path"`
	Config             ConfigCmd                    `cmd:"" help:"Configuration commands"`
	Schema             SchemaCmd                    `cmd:"" help:"Print the command tree as JSON (or YAML with -o yaml)"`
	Version            VersionCmd                   `cmd:"" help:"Show version information"`
	InstallCompletions kongplete.InstallCompletions `cmd:"" help:"Install shell completions"`
}

// AfterApply runs once flags are populated.
// It loads config, resolves the store path, creates formatter and logger, and binds dependencies.
func (c *CLI) AfterApply(ctx *kong.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return &output.CLIError{
			Message:  err.Error(),
			ExitCode: output.ExitConfigError,
			Hint:     "Fix or remove " + config.ConfigPath(),
			Err:      err,
		}
	}

	// Output: flag/env > config > auto
	if c.Output == "auto" && cfg.DefaultOutput != "" {
		c.Output = cfg.DefaultOutput
	}
	c.Output = c.ResolvedOutput()

	formatter := &FormatterProvider{
		Formatter: output.New(c.Output),
	}

	stdinTTY := term.IsTerminal(int(os.Stdin.Fd()))
	rt := &Runtime{
		StorePath:   config.StorePath(c.SecretsDir, c.KeysFile, cfg),
		Log:         logging.Logger{Verbose: c.Verbose, Debug: c.Debug},
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		StdinTTY:    stdinTTY,
		Interactive: stdinTTY && !c.NoInput,
		ReadSecret:  readSecretFromTerminal,
	}

	ctx.Bind(cfg)
	ctx.Bind(formatter)
	ctx.Bind(&c.Globals)
	ctx.Bind(rt)

	return nil
}

// readSecretFromTerminal reads a line from the controlling terminal without echo
func readSecretFromTerminal(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	value, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(value)), nil
}

// ConfigCmd holds configuration subcommands
type ConfigCmd struct {
	Get   ConfigGetCmd        `cmd:"" help:"Get a configuration value"`
	Set   ConfigSetCmd        `cmd:"" help:"Set a configuration value"`
	Unset ConfigUnsetCmd      `cmd:"" help:"Remove a configuration value"`
	List  ConfigListConfigCmd `cmd:"" name:"list" help:"List all configuration values"`
	Path  ConfigPathCmd       `cmd:"" help:"Show config file path"`
}

// VersionCmd shows version information
type VersionCmd struct{}

func (cmd *VersionCmd) Run(ctx *kong.Context, rt *Runtime) error {
	version := ctx.Model.Vars()["version"]
	fmt.Fprintln(rt.Stdout, "agentkeys version "+version)
	return nil
}
