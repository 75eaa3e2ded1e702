package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"unicode/utf8"

	"github.com/semmy-space/agentkeys/internal/atomicfile"
	"github.com/semmy-space/agentkeys/internal/logging"
	"github.com/semmy-space/agentkeys/internal/registry"
)

// Writer is the only path that mutates the store file.
// Every write replaces the file through a single rename.
type Writer struct {
	Path  string
	Guard Guard

	// beforeRename simulates a crash between temp write and rename in tests
	beforeRename func(tmpPath string) error
}

// NewWriter creates a writer for the store file at path
func NewWriter(path string, log logging.Logger) *Writer {
	return &Writer{
		Path:  path,
		Guard: Guard{Log: log},
	}
}

// WriteField sets exactly one field. A missing store starts from the template;
// a malformed one aborts the write.
func (w *Writer) WriteField(provider, field, value string) error {
	if err := registry.CheckField(provider, field); err != nil {
		return err
	}
	if err := checkValue(provider, field, value); err != nil {
		return err
	}

	if err := w.Guard.EnsureDir(filepath.Dir(w.Path)); err != nil {
		return err
	}

	cs, err := Load(w.Path)
	switch {
	case errors.Is(err, ErrNotFound):
		cs = Template()
	case err != nil:
		return err
	}

	entry, ok := cs[provider]
	if !ok {
		entry = templateEntry(provider)
		cs[provider] = entry
	}
	entry[field] = value

	if err := w.write(cs); err != nil {
		return err
	}
	w.Guard.Log.Infof("updated %s.%s in %s", provider, field, w.Path)
	return nil
}

// WriteFull replaces the whole store
func (w *Writer) WriteFull(cs CredentialStore) error {
	if err := w.Guard.EnsureDir(filepath.Dir(w.Path)); err != nil {
		return err
	}
	if err := w.write(cs); err != nil {
		return err
	}
	w.Guard.Log.Infof("wrote credential store %s", w.Path)
	return nil
}

func (w *Writer) write(cs CredentialStore) error {
	if missing := Validate(cs); len(missing) > 0 {
		return validationError(missing)
	}
	for provider, entry := range cs {
		for field, value := range entry {
			if err := checkValue(provider, field, value); err != nil {
				return err
			}
		}
	}

	if err := w.Guard.EnsureFile(w.Path); err != nil {
		return err
	}

	err := atomicfile.WriteFile(w.Path, Render(cs), FileMode, atomicfile.Options{
		BeforeRename: w.beforeRename,
	})
	if err != nil {
		return classifyWriteError(err)
	}
	return nil
}

// checkValue rejects bytes the JSON encoder would replace with U+FFFD
func checkValue(provider, field, value string) error {
	if !utf8.ValidString(value) {
		return fmt.Errorf("%w: %w: %s.%s", ErrValidationFailed, ErrInvalidValue, provider, field)
	}
	return nil
}

// classifyWriteError maps a failed protocol step onto the store error kinds
func classifyWriteError(err error) error {
	var ferr *atomicfile.Error
	if errors.As(err, &ferr) && ferr.Op == atomicfile.OpChmod {
		return fmt.Errorf("%w: %w", ErrPermission, err)
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}
