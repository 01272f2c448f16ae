package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the configuration file looked up on the search path.
const FileName = "sovereign.yaml"

// ErrNotFound is returned by Resolve when no configuration file exists.
var ErrNotFound = errors.New("config: no configuration file found")

// SearchPaths returns the candidate configuration files in priority
// order: $XDG_CONFIG_HOME/sovereign (or ~/.config/sovereign), then the
// working directory.
func SearchPaths() []string {
	var paths []string
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		paths = append(paths, filepath.Join(dir, "sovereign", FileName))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "sovereign", FileName))
	}
	return append(paths, FileName)
}

// Resolve returns the configuration file to load. A non-empty explicit
// path must exist; otherwise the first existing entry of SearchPaths wins.
func Resolve(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config: %w", err)
		}
		return explicit, nil
	}

	for _, p := range SearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", ErrNotFound
}
