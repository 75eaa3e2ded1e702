package cli

import (
	"os"

	"golang.org/x/term"
)

// Globals holds global flags available to all commands
type Globals struct {
	SecretsDir string `help:"Directory holding the credential store" name:"secrets-dir" env:"SECRETS_PATH"`
	KeysFile   string `help:"Credential store file name, relative to --secrets-dir unless absolute" name:"keys-file" env:"API_KEYS_FILE"`
	Output     string `help:"Output format" default:"auto" enum:"json,plain,rich,yaml,auto" short:"o" env:"AGENTKEYS_OUTPUT"`
	Verbose    bool   `help:"Verbose output" short:"v" env:"AGENTKEYS_VERBOSE"`
	Debug      bool   `help:"Debug output" env:"AGENTKEYS_DEBUG"`
	NoInput    bool   `help:"Disable interactive prompts (fail instead)" env:"AGENTKEYS_NO_INPUT"`
	DryRun     bool   `help:"Preview operation without writing" name:"dry-run" env:"AGENTKEYS_DRY_RUN"`
}

// ResolvedOutput returns the effective output mode
// "auto" detects TTY: if stdout is TTY -> rich, else -> plain
func (g *Globals) ResolvedOutput() string {
	if g.Output != "auto" && g.Output != "" {
		return g.Output
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		return "rich"
	}

	return "plain"
}
