// Package atomicfile replaces files through a same-directory temp file and
// a single rename, so readers only ever see the old or the new content.
package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// Operations reported in Error.Op
const (
	OpCreate = "create"
	OpWrite  = "write"
	OpSync   = "sync"
	OpClose  = "close"
	OpChmod  = "chmod"
	OpRename = "rename"
)

// Error describes which step of the write protocol failed
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Options tunes a single write
type Options struct {
	// BeforeRename runs after the temp file is complete and before it
	// replaces the target. A non-nil error aborts the write.
	BeforeRename func(tmpPath string) error
}

// WriteFile writes data to path with the given permissions.
// The target is untouched unless every step up to the rename succeeds.
func WriteFile(path string, data []byte, perm os.FileMode, opts Options) (err error) {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &Error{Op: OpCreate, Path: dir, Err: err}
	}
	tmpPath := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	// Tighten before any content lands on disk
	if err := tmp.Chmod(perm); err != nil {
		return &Error{Op: OpChmod, Path: tmpPath, Err: err}
	}
	if _, err := tmp.Write(data); err != nil {
		return &Error{Op: OpWrite, Path: tmpPath, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return &Error{Op: OpSync, Path: tmpPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &Error{Op: OpClose, Path: tmpPath, Err: err}
	}

	// CreateTemp and umask can both leave broader bits; set them explicitly.
	if err := os.Chmod(tmpPath, perm); err != nil {
		return &Error{Op: OpChmod, Path: tmpPath, Err: err}
	}

	if opts.BeforeRename != nil {
		if err := opts.BeforeRename(tmpPath); err != nil {
			return err
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return &Error{Op: OpRename, Path: path, Err: err}
	}

	if err := os.Chmod(path, perm); err != nil {
		return &Error{Op: OpChmod, Path: path, Err: err}
	}

	syncDir(dir)
	return nil
}

// syncDir flushes the rename to disk where the platform allows it
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
