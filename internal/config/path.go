// Package config resolves user-supplied configuration values into usable
// runtime values.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves ~ and $VAR references in a filesystem path, so config
// values like "~/.local/share/hoekwacht/hoekwacht.db" or
// "$HOME/.config/hoekwacht" work as written. Paths without either are
// returned unchanged.
func ExpandPath(path string) string {
	switch {
	case path == "~":
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	case strings.HasPrefix(path, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	return os.ExpandEnv(path)
}
