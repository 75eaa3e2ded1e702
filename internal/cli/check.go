package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/semmy-space/agentkeys/internal/output"
	"github.com/semmy-space/agentkeys/internal/store"
)

// CheckCmd prints the store with secrets redacted and repairs what it can.
// It exits 0 even when the store is missing or unreadable.
type CheckCmd struct{}

type checkReport struct {
	Path        string                `json:"path" yaml:"path"`
	Exists      bool                  `json:"exists" yaml:"exists"`
	Error       string                `json:"error,omitempty" yaml:"error,omitempty"`
	Store       store.CredentialStore `json:"store,omitempty" yaml:"store,omitempty"`
	Missing     []string              `json:"missing,omitempty" yaml:"missing,omitempty"`
	Permissions []string              `json:"permission_problems,omitempty" yaml:"permission_problems,omitempty"`
	Repaired    bool                  `json:"repaired" yaml:"repaired"`
}

// Run executes the check command
func (cmd *CheckCmd) Run(rt *Runtime, globals *Globals, fp *FormatterProvider) error {
	report := &checkReport{Path: rt.StorePath}
	guard := store.Guard{Log: rt.Log}

	cs, err := store.Load(rt.StorePath)
	if err != nil {
		report.Exists = !errors.Is(err, store.ErrNotFound)
		report.Error = err.Error()
		cliErr := storeError("Cannot read credential store", rt.StorePath, err)
		if err := cmd.print(rt, globals, fp, report); err != nil {
			return err
		}
		fp.Formatter.PrintError(cliErr)
		if cliErr.Hint != "" {
			fp.Formatter.PrintHint(cliErr.Hint)
		}
		return nil
	}
	report.Exists = true

	perms := guard.Inspect(filepath.Dir(rt.StorePath), rt.StorePath)
	report.Permissions = perms.Problems()

	repaired, missing := store.Repair(cs)
	for _, m := range missing {
		report.Missing = append(report.Missing, m.String())
	}

	shown := cs
	if !globals.DryRun && (len(missing) > 0 || !perms.Secure()) {
		if err := cmd.repair(rt, guard, repaired, len(missing) > 0); err != nil {
			fp.Formatter.PrintError(err)
			if err.Hint != "" {
				fp.Formatter.PrintHint(err.Hint)
			}
		} else {
			report.Repaired = true
			shown = repaired
		}
	}
	report.Store = store.Redact(shown)

	return cmd.print(rt, globals, fp, report)
}

func (cmd *CheckCmd) repair(rt *Runtime, guard store.Guard, repaired store.CredentialStore, rewrite bool) *output.CLIError {
	if rewrite {
		w := store.NewWriter(rt.StorePath, rt.Log)
		if err := w.WriteFull(repaired); err != nil {
			return storeError("Repair failed", rt.StorePath, err)
		}
		return nil
	}

	if err := guard.EnsureDir(filepath.Dir(rt.StorePath)); err != nil {
		return storeError("Repair failed", rt.StorePath, err)
	}
	if err := guard.EnsureFile(rt.StorePath); err != nil {
		return storeError("Repair failed", rt.StorePath, err)
	}
	return nil
}

// print writes structured output for json/yaml, otherwise the redacted file
// on stdout and findings on stderr
func (cmd *CheckCmd) print(rt *Runtime, globals *Globals, fp *FormatterProvider, report *checkReport) error {
	switch globals.ResolvedOutput() {
	case "json", "yaml":
		return fp.Formatter.Print(report)
	}

	if report.Store != nil {
		if _, err := rt.Stdout.Write(store.Render(report.Store)); err != nil {
			return err
		}
	}

	for _, m := range report.Missing {
		if report.Repaired {
			fmt.Fprintf(rt.Stderr, "added missing field %s\n", m)
		} else {
			fmt.Fprintf(rt.Stderr, "missing field %s\n", m)
		}
	}
	for _, p := range report.Permissions {
		if report.Repaired {
			fmt.Fprintf(rt.Stderr, "fixed: %s\n", p)
		} else {
			fmt.Fprintf(rt.Stderr, "%s\n", p)
		}
	}
	if report.Exists && report.Error == "" && len(report.Missing) == 0 && len(report.Permissions) == 0 {
		fmt.Fprintf(rt.Stderr, "%s: ok\n", rt.StorePath)
	}
	return nil
}
