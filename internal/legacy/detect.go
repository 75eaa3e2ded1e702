package legacy

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/adrg/xdg"
)

// KeyringSkipReason says why migration should not open the OS keyring here,
// or returns "" when keyring import can go ahead. Under WSL and in headless
// Linux sessions keyring.Open blocks or fails waiting for a Secret Service
// daemon, so those sessions import from scripts and the environment only.
func KeyringSkipReason() string {
	switch {
	case IsWSL():
		return "running under WSL"
	case IsHeadless():
		return "no display session (DISPLAY and WAYLAND_DISPLAY unset)"
	}
	return ""
}

// WarnKeyringSkipped tells the operator once per machine that keyring import
// was skipped. AGENTKEYS_QUIET=1 suppresses it.
func WarnKeyringSkipped(w io.Writer, reason string) {
	msg := fmt.Sprintf("Note: skipping OS keyring import (%s); credentials stored there by older builds were not migrated.", reason)
	warnOnce(w, skipMarkerPath(), msg)
}

func warnOnce(w io.Writer, marker, msg string) {
	if quietMode() {
		return
	}
	if _, err := os.Stat(marker); err == nil {
		return
	}
	fmt.Fprintln(w, msg)

	if err := os.MkdirAll(filepath.Dir(marker), 0700); err != nil {
		return
	}
	_ = os.WriteFile(marker, []byte("1"), 0600)
}

func skipMarkerPath() string {
	return filepath.Join(xdg.DataHome, "agentkeys", ".keyring-import-skipped")
}

func quietMode() bool {
	v := os.Getenv("AGENTKEYS_QUIET")
	return v == "1" || v == "true"
}

// IsWSL returns true if running under Windows Subsystem for Linux.
func IsWSL() bool {
	if runtime.GOOS != "linux" {
		return false
	}

	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return false
	}

	version := strings.ToLower(string(data))
	return strings.Contains(version, "microsoft") || strings.Contains(version, "wsl")
}

// IsHeadless returns true on Linux when no X11 or Wayland display is set.
// macOS and Windows always have a session keychain.
func IsHeadless() bool {
	if runtime.GOOS != "linux" {
		return false
	}
	return os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == ""
}
