// Package migrate creates the credential store on first run and backfills it
// from legacy sources.
package migrate

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/semmy-space/agentkeys/internal/atomicfile"
	"github.com/semmy-space/agentkeys/internal/legacy"
	"github.com/semmy-space/agentkeys/internal/logging"
	"github.com/semmy-space/agentkeys/internal/registry"
	"github.com/semmy-space/agentkeys/internal/store"
)

// Options controls a single migration run
type Options struct {
	// Overwrite resets an existing store to the template before backfilling
	Overwrite bool

	// DryRun reports what would happen without touching disk
	DryRun bool
}

// Populated records a field that received a recovered value
type Populated struct {
	Provider string
	Field    string
	Source   string
}

// Rejected records a value that was found but not written
type Rejected struct {
	Provider string
	Field    string
	Source   string
	Reason   string
}

// SourceFailure records a source that could not be read
type SourceFailure struct {
	Source string
	Err    error
}

// Result contains information about what was migrated. It never carries values.
type Result struct {
	Path       string
	Created    bool
	Skipped    bool
	Reset      bool
	BackupPath string
	Populated  []Populated
	Rejected   []Rejected
	Failures   []SourceFailure
}

// StoreWriter is the subset of store.Writer the engine mutates through
type StoreWriter interface {
	WriteField(provider, field, value string) error
	WriteFull(cs store.CredentialStore) error
}

// Engine runs migrations against one store file
type Engine struct {
	Path    string
	Sources []legacy.Source
	Writer  StoreWriter
	Log     logging.Logger

	now          func() time.Time
	retryBackoff func() backoff.BackOff
}

// New creates an engine for the store at path. Sources are applied in order,
// so later sources win when two recover the same field.
func New(path string, sources []legacy.Source, log logging.Logger) *Engine {
	return &Engine{
		Path:    path,
		Sources: sources,
		Writer:  store.NewWriter(path, log),
		Log:     log,
		now:     time.Now,
		retryBackoff: func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewConstantBackOff(200*time.Millisecond), 1)
		},
	}
}

// Run performs one migration. Re-running without Overwrite on an existing
// store is a no-op.
func (e *Engine) Run(opts Options) (*Result, error) {
	result := &Result{Path: e.Path}

	exists, err := e.storeExists()
	if err != nil {
		return nil, err
	}

	switch {
	case !exists:
		result.Created = true
		if !opts.DryRun {
			if err := e.createTemplate(); err != nil {
				return nil, err
			}
		}
		e.Log.Infof("created credential store %s", e.Path)

	case !opts.Overwrite:
		result.Skipped = true
		e.Log.Infof("credential store %s already exists, leaving it untouched", e.Path)
		return result, nil

	default:
		result.Reset = true
		if !opts.DryRun {
			backupPath, err := e.backup()
			if err != nil {
				return nil, err
			}
			result.BackupPath = backupPath
			e.Log.Infof("backed up %s to %s", e.Path, backupPath)

			if err := e.createTemplate(); err != nil {
				return nil, err
			}
		}
	}

	for _, src := range e.Sources {
		recovered, err := src.Recover()
		if err != nil {
			e.Log.Warnf("skipping legacy source %s: %v", src.Name(), err)
			result.Failures = append(result.Failures, SourceFailure{Source: src.Name(), Err: err})
			continue
		}
		e.Log.Debugf("legacy source %s offered %d value(s)", src.Name(), len(recovered))

		for _, r := range recovered {
			if err := e.apply(r, opts, result); err != nil {
				return result, err
			}
		}
	}

	return result, nil
}

// apply writes one recovery. Recovered values overwrite whatever is stored.
func (e *Engine) apply(r legacy.Recovery, opts Options, result *Result) error {
	if r.Rejected != "" {
		e.Log.Warnf("not importing %s.%s from %s: %s", r.Provider, r.Field, r.Source, r.Rejected)
		result.Rejected = append(result.Rejected, Rejected{Provider: r.Provider, Field: r.Field, Source: r.Source, Reason: r.Rejected})
		return nil
	}

	if err := registry.CheckField(r.Provider, r.Field); err != nil {
		e.Log.Warnf("not importing from %s: %v", r.Source, err)
		result.Rejected = append(result.Rejected, Rejected{Provider: r.Provider, Field: r.Field, Source: r.Source, Reason: err.Error()})
		return nil
	}

	if !opts.DryRun {
		if err := e.Writer.WriteField(r.Provider, r.Field, r.Value); err != nil {
			return fmt.Errorf("failed to import %s.%s from %s: %w", r.Provider, r.Field, r.Source, err)
		}
	}

	e.Log.Infof("imported %s.%s from %s", r.Provider, r.Field, r.Source)
	result.Populated = append(result.Populated, Populated{Provider: r.Provider, Field: r.Field, Source: r.Source})
	return nil
}

func (e *Engine) storeExists() (bool, error) {
	_, err := os.Stat(e.Path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("%w: stat %s: %w", store.ErrIO, e.Path, err)
}

// createTemplate writes the full template, retrying once if permissions
// could not be enforced.
func (e *Engine) createTemplate() error {
	attempt := 0
	op := func() error {
		attempt++
		err := e.Writer.WriteFull(store.Template())
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrPermission) {
			return backoff.Permanent(err)
		}
		e.Log.Debugf("template write attempt %d failed: %v", attempt, err)
		return err
	}
	return backoff.Retry(op, e.retryBackoff())
}

// backup copies the current file aside before a destructive overwrite
func (e *Engine) backup() (string, error) {
	data, err := os.ReadFile(e.Path)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read %s for backup: %w", store.ErrIO, e.Path, err)
	}

	backupPath := e.Path + ".bak-" + e.now().Format("20060102-150405")
	if err := atomicfile.WriteFile(backupPath, data, store.FileMode, atomicfile.Options{}); err != nil {
		return "", fmt.Errorf("%w: failed to write backup: %w", store.ErrIO, err)
	}
	return backupPath, nil
}
