package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	// DefaultKeysFile is the store file name inside the secrets directory
	DefaultKeysFile = "api_keys.json"

	// DefaultKeyringService is the keyring service older builds wrote to
	DefaultKeyringService = "schmagent"
)

// ConfigDir returns the config directory for agentkeys.
// CONFIG_PATH overrides the XDG location (typically ~/.config/agentkeys/).
func ConfigDir() string {
	if dir := os.Getenv("CONFIG_PATH"); dir != "" {
		return dir
	}
	return filepath.Join(xdg.ConfigHome, "agentkeys")
}

// ConfigPath returns the full path to the config file
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json5")
}

// DefaultSecretsDir returns ~/.secrets/schmagent, the directory the assistant reads keys from
func DefaultSecretsDir() string {
	return filepath.Join(xdg.Home, ".secrets", "schmagent")
}

// StorePath resolves the credential store file.
// dir and file come from flags (kong fills them from SECRETS_PATH and
// API_KEYS_FILE), then the config file, then the defaults. A relative
// file name is joined to the directory.
func StorePath(dir, file string, cfg *Config) string {
	if dir == "" && cfg != nil {
		dir = cfg.SecretsDir
	}
	if dir == "" {
		dir = DefaultSecretsDir()
	}
	dir = expandHome(dir)

	if file == "" && cfg != nil {
		file = cfg.KeysFile
	}
	if file == "" {
		file = DefaultKeysFile
	}
	file = expandHome(file)

	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(dir, file)
}

// KeyringServiceName returns the configured keyring service name or the default
func (c *Config) KeyringServiceName() string {
	if c.KeyringService != "" {
		return c.KeyringService
	}
	return DefaultKeyringService
}

func expandHome(path string) string {
	if path == "~" {
		return xdg.Home
	}
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(xdg.Home, path[2:])
	}
	return path
}
