package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Help(t *testing.T) {
	out := &bytes.Buffer{}
	cfg, exit, err := Parse([]string{"-h"}, out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_Defaults(t *testing.T) {
	cfg, exit, err := Parse(nil, &bytes.Buffer{})
	require.NoError(t, err)
	assert.False(t, exit)
	assert.Equal(t, ":8000", cfg.Server.Listen)
	assert.Nil(t, cfg.Snapshot)
}

func TestParse_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "isbnmap.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
server {
  listen = ":9000"
}
log {
  level = "warn"
}
`), 0600))

	cfg, _, err := Parse([]string{
		"-config", path,
		"-listen", ":7000",
		"-source", "/data",
		"-snapshot-dir", "/cache",
		"-log-format", "JSON",
	}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.Listen)
	assert.Equal(t, "/data", cfg.Source.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	require.NotNil(t, cfg.Snapshot)
	assert.Equal(t, "/cache", cfg.Snapshot.Path)
	assert.Equal(t, "zstd", cfg.Snapshot.Compression)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown flag", []string{"--nope"}, "flag provided but not defined: -nope"},
		{"stray argument", []string{"extra"}, `unexpected argument "extra"`},
		{"missing config", []string{"-config", "/does/not/exist.hcl"}, "failed to read config file"},
		{"bad level", []string{"-log-level", "loud"}, "invalid level"},
		{"bad kind", []string{"-source-kind", "ftp"}, "unknown kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(tt.args, &bytes.Buffer{})
			require.Error(t, err)

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
