package store

import (
	"fmt"
	"os"

	"github.com/semmy-space/agentkeys/internal/logging"
)

// Required modes for the secrets directory and store file
const (
	DirMode  os.FileMode = 0700
	FileMode os.FileMode = 0600
)

// Guard enforces owner-only permissions around the store
type Guard struct {
	Log logging.Logger
}

// EnsureDir creates dir with owner-only access, or repairs an existing one
// that grants group/other permissions.
func (g Guard) EnsureDir(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(dir, DirMode); err != nil {
			return fmt.Errorf("%w: create %s: %w", ErrPermission, dir, err)
		}
		g.Log.Debugf("created secrets directory %s", dir)
		// MkdirAll is subject to umask
		return g.chmod(dir, DirMode)
	}
	if err != nil {
		return fmt.Errorf("%w: stat %s: %w", ErrPermission, dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrPermission, dir)
	}

	if perm := info.Mode().Perm(); perm != DirMode {
		g.Log.Warnf("secrets directory %s has mode %04o, resetting to %04o", dir, perm, DirMode)
		return g.chmod(dir, DirMode)
	}
	return nil
}

// EnsureFile resets the store file to owner read/write. A missing file is not an error.
func (g Guard) EnsureFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: stat %s: %w", ErrPermission, path, err)
	}

	if perm := info.Mode().Perm(); perm != FileMode {
		g.Log.Warnf("credential store %s has mode %04o, resetting to %04o", path, perm, FileMode)
		return g.chmod(path, FileMode)
	}
	return nil
}

func (g Guard) chmod(path string, mode os.FileMode) error {
	if err := os.Chmod(path, mode); err != nil {
		return fmt.Errorf("%w: chmod %s: %w", ErrPermission, path, err)
	}
	return nil
}

// PermissionReport describes the modes found on disk
type PermissionReport struct {
	Dir        string
	DirExists  bool
	DirMode    os.FileMode
	File       string
	FileExists bool
	FileMode   os.FileMode
}

// Secure reports whether everything that exists is owner-only
func (r PermissionReport) Secure() bool {
	return len(r.Problems()) == 0
}

// Problems lists human-readable permission issues
func (r PermissionReport) Problems() []string {
	var problems []string
	if r.DirExists && r.DirMode&0077 != 0 {
		problems = append(problems, fmt.Sprintf("directory %s has insecure permissions %04o (expected %04o)", r.Dir, r.DirMode, DirMode))
	}
	if r.FileExists && r.FileMode&0077 != 0 {
		problems = append(problems, fmt.Sprintf("file %s has insecure permissions %04o (expected %04o)", r.File, r.FileMode, FileMode))
	}
	return problems
}

// Inspect reads the current modes without changing anything
func (g Guard) Inspect(dir, path string) PermissionReport {
	report := PermissionReport{Dir: dir, File: path}
	if info, err := os.Stat(dir); err == nil {
		report.DirExists = true
		report.DirMode = info.Mode().Perm()
	}
	if info, err := os.Stat(path); err == nil {
		report.FileExists = true
		report.FileMode = info.Mode().Perm()
	}
	return report
}
