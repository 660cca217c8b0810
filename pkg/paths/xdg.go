package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Environment variable names
const (
	// EnvMonjaDataDir overrides the XDG data directory for monja
	EnvMonjaDataDir = "MONJA_DATA_DIR"

	// EnvMonjaConfigDir overrides the XDG config directory for monja
	EnvMonjaConfigDir = "MONJA_CONFIG_DIR"
)

// MonjaDirName is the directory name for monja-specific files under the
// XDG base directories.
const MonjaDirName = "monja"

// DataDir returns the monja data directory, where the index generations
// live. It respects MONJA_DATA_DIR, falling back to the XDG data home.
func DataDir() string {
	if dir := os.Getenv(EnvMonjaDataDir); dir != "" {
		return dir
	}
	return filepath.Join(xdg.DataHome, MonjaDirName)
}

// ConfigDir returns the monja config directory, where the profile lives.
// It respects MONJA_CONFIG_DIR, falling back to the XDG config home.
func ConfigDir() string {
	if dir := os.Getenv(EnvMonjaConfigDir); dir != "" {
		return dir
	}
	return filepath.Join(xdg.ConfigHome, MonjaDirName)
}

// ProfileConfigPath returns the default location of monja-profile.toml.
func ProfileConfigPath() string {
	return filepath.Join(ConfigDir(), ProfileConfigName)
}

// DefaultRepoDir returns the conventional repo location used by init.
func DefaultRepoDir() string {
	return filepath.Join(xdg.DataHome, MonjaDirName, "repo")
}
