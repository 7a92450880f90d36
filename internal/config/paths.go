package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "netview"

// DataDir returns the platform-specific data directory of the tool.
// - macOS: ~/Library/Application Support/netview/
// - Linux: $XDG_DATA_HOME/netview/ or ~/.local/share/netview/
// - Windows: %APPDATA%/netview/
// The directory is not created.
func DataDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		baseDir = filepath.Join(homeDir, "Library", "Application Support")

	case "windows":
		baseDir = os.Getenv("APPDATA")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, "AppData", "Roaming")
		}

	default:
		baseDir = os.Getenv("XDG_DATA_HOME")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, ".local", "share")
		}
	}

	return filepath.Join(baseDir, appName), nil
}

// searchPaths lists where a network file named by a bare default path is
// looked for, in order of preference.
func (c Config) searchPaths() []string {
	paths := []string{c.Path}
	if c.pathSet || filepath.IsAbs(c.Path) {
		return paths
	}
	name := filepath.Base(c.Path)
	paths = append(paths, filepath.Join("nnue", name))
	if dir, err := DataDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "nnue", name))
	}
	return paths
}

// Locate resolves Path to an existing file. A path given on the command
// line is used as is; the default name is also looked up in ./nnue and in
// the data directory.
func (c *Config) Locate() error {
	paths := c.searchPaths()
	for _, p := range paths {
		if fileExists(p) {
			c.Path = p
			return nil
		}
	}
	return fmt.Errorf("network file not found (tried %v): %w", paths, os.ErrNotExist)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
