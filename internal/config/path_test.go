package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	t.Setenv("HOEKWACHT_TEST_DIR", "/var/data")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain path", "/tmp/db.sqlite", "/tmp/db.sqlite"},
		{"tilde prefix", "~/data/db.sqlite", filepath.Join(home, "data/db.sqlite")},
		{"bare tilde", "~", home},
		{"env var", "$HOEKWACHT_TEST_DIR/db.sqlite", "/var/data/db.sqlite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.input))
		})
	}
}
