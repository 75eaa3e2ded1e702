package main

import (
	"errors"
	"os"

	"github.com/alecthomas/kong"
	"github.com/semmy-space/agentkeys/internal/cli"
	"github.com/semmy-space/agentkeys/internal/output"
	"github.com/willabides/kongplete"
)

var (
	version = "dev"
)

func main() {
	cliInstance := &cli.CLI{}
	parser := kong.Must(cliInstance,
		kong.Name("agentkeys"),
		kong.Description("Manage the assistant's provider credential store"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)

	// Answers shell completion requests and exits when COMP_LINE is set
	kongplete.Complete(parser, cli.Predictors()...)

	ctx, err := parser.Parse(os.Args[1:])
	var cliErr *output.CLIError
	if errors.As(err, &cliErr) {
		// Raised by hooks, e.g. an unreadable config file
		os.Exit(output.ExitWithError(output.New("plain"), err))
	}
	parser.FatalIfErrorf(err)

	if err := ctx.Run(); err != nil {
		os.Exit(output.ExitWithError(output.New(cliInstance.ResolvedOutput()), err))
	}
}
