package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// AppDir is the directory name under the XDG data and state homes.
	AppDir = "pv"
	// DBFile holds the run history.
	DBFile = "runs.db"
	// LogFile receives TUI logs.
	LogFile = "pv.log"
)

// xdgDir returns $env/pv, falling back to ~/fallback/pv.
func xdgDir(env, fallback string) string {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, fallback)
	}
	return filepath.Join(base, AppDir)
}

// DataDir returns the data directory ($XDG_DATA_HOME/pv).
func DataDir() string {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// StateDir returns the state directory ($XDG_STATE_HOME/pv).
func StateDir() string {
	return xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

// DBPath returns the path to the run history database.
func DBPath() string {
	return filepath.Join(DataDir(), DBFile)
}

// LogPath returns the path to the TUI log file.
func LogPath() string {
	return filepath.Join(StateDir(), LogFile)
}

// EnsureDir creates dir if needed.
func EnsureDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("cannot determine home directory")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
