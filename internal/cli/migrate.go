package cli

import (
	"fmt"
	"os"

	"github.com/semmy-space/agentkeys/internal/config"
	"github.com/semmy-space/agentkeys/internal/legacy"
	"github.com/semmy-space/agentkeys/internal/migrate"
	"github.com/semmy-space/agentkeys/internal/output"
)

// MigrateCmd creates the store on first run and imports legacy credentials
type MigrateCmd struct {
	Overwrite bool     `help:"Back up an existing store and reset it before importing"`
	Script    []string `help:"Additional launcher script to import assignments from (repeatable)"`
	NoKeyring bool     `help:"Do not read credentials from the OS keyring" name:"no-keyring"`
}

type migrationRow struct {
	Provider string
	Field    string
	Source   string
	Status   string
}

var migrationColumns = []output.Column{
	{Name: "Provider", Key: "Provider"},
	{Name: "Field", Key: "Field"},
	{Name: "Source", Key: "Source", Width: 60},
	{Name: "Status", Key: "Status"},
}

// Run executes the migrate command
func (cmd *MigrateCmd) Run(rt *Runtime, cfg *config.Config, globals *Globals, fp *FormatterProvider) error {
	overwrite := cmd.Overwrite

	if !overwrite && fileExists(rt.StorePath) {
		conflict := &output.CLIError{
			Message:  fmt.Sprintf("Credential store already exists: %s", rt.StorePath),
			ExitCode: output.ExitConflict,
			Hint:     "Re-run with --overwrite to back it up and reset it",
		}
		if !rt.Interactive {
			return conflict
		}
		if !rt.Confirm(fmt.Sprintf("%s exists. Back it up and reset it? [y/N]: ", rt.StorePath)) {
			return conflict
		}
		overwrite = true
	}

	engine := migrate.New(rt.StorePath, legacySources(rt, cfg, cmd.Script, cmd.NoKeyring), rt.Log)
	result, err := engine.Run(migrate.Options{Overwrite: overwrite, DryRun: globals.DryRun})
	if err != nil {
		return storeError("Migration failed", rt.StorePath, err)
	}

	verb := "imported"
	if globals.DryRun {
		verb = "would import"
	}

	var rows []migrationRow
	for _, p := range result.Populated {
		rows = append(rows, migrationRow{Provider: p.Provider, Field: p.Field, Source: p.Source, Status: verb})
	}
	for _, r := range result.Rejected {
		rows = append(rows, migrationRow{Provider: r.Provider, Field: r.Field, Source: r.Source, Status: "skipped: " + r.Reason})
	}
	if len(rows) > 0 {
		if err := fp.Formatter.PrintList(rows, migrationColumns); err != nil {
			return err
		}
	}

	prefix := ""
	if globals.DryRun {
		prefix = "[dry-run] "
	}
	switch {
	case result.Created:
		fmt.Fprintf(rt.Stderr, "%sCreated %s\n", prefix, rt.StorePath)
	case result.Reset:
		if result.BackupPath != "" {
			fmt.Fprintf(rt.Stderr, "Backed up previous store to %s\n", result.BackupPath)
		}
		fmt.Fprintf(rt.Stderr, "%sReset %s\n", prefix, rt.StorePath)
	}
	fmt.Fprintf(rt.Stderr, "%s%d value(s) %s, %d skipped, %d source(s) unreadable\n",
		prefix, len(result.Populated), verb, len(result.Rejected), len(result.Failures))

	return nil
}

// legacySources builds the import chain: scripts, then keyring, then the
// environment. Later sources win.
func legacySources(rt *Runtime, cfg *config.Config, scripts []string, noKeyring bool) []legacy.Source {
	mappings := legacy.DefaultMappings()

	var sources []legacy.Source
	for _, path := range append(append([]string{}, cfg.LegacyScripts...), scripts...) {
		sources = append(sources, legacy.NewFileSource(path, mappings))
	}

	if noKeyring || cfg.DisableKeyring {
		rt.Log.Debugf("keyring import disabled")
	} else if reason := legacy.KeyringSkipReason(); reason != "" {
		legacy.WarnKeyringSkipped(rt.Stderr, reason)
	} else {
		sources = append(sources, legacy.NewKeyringSource(cfg.KeyringServiceName(), mappings))
	}

	return append(sources, legacy.NewEnvSource(mappings))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
