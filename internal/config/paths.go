package config

import (
	"os"
	"path/filepath"
	"strings"
)

const appDirName = ".fabbro"

// DataDir returns the project-local fabbro directory. FABBRO_DIR overrides
// the default of .fabbro in the working directory.
func DataDir() string {
	if dir := strings.TrimSpace(os.Getenv("FABBRO_DIR")); dir != "" {
		return filepath.Clean(dir)
	}
	return appDirName
}

// SessionsDir returns the directory where .fem session files are stored.
func SessionsDir() string {
	return filepath.Join(DataDir(), "sessions")
}

// DBPath returns the path to the bbolt session database.
func DBPath() string {
	return filepath.Join(DataDir(), "fabbro.db")
}

// ConfigPath returns the path to the TOML settings file.
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.toml")
}

func IsInitialized() bool {
	info, err := os.Stat(DataDir())
	return err == nil && info.IsDir()
}

// Init creates the data and sessions directories. It is safe to re-run.
func Init() error {
	return os.MkdirAll(SessionsDir(), 0o755)
}
