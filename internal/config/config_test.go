package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/isbnmap/archive"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, KindLocal, cfg.Source.Kind)
	assert.Equal(t, uint64(978_000_000_000), cfg.Source.BaseOffset)
	assert.Nil(t, cfg.Snapshot)
	require.NotNil(t, cfg.Server.RateLimit)
	assert.Equal(t, 50.0, *cfg.Server.RateLimit)
}

func TestParse(t *testing.T) {
	src := `
source {
  kind     = "minio"
  bucket   = "isbn"
  endpoint = "localhost:9000"
  required = ["md5", "isbndb"]
}

snapshot {
  path = "/tmp/cache"
}

server {
  listen     = "127.0.0.1:9090"
  rate_limit = 0
}

log {
  format = "json"
}
`
	cfg, err := Parse([]byte(src), "isbnmap.hcl")
	require.NoError(t, err)

	assert.Equal(t, KindMinIO, cfg.Source.Kind)
	assert.Equal(t, "isbn", cfg.Source.Bucket)
	assert.Equal(t, DefaultArchiveName, cfg.Source.Name)
	assert.Equal(t, uint64(978_000_000_000), cfg.Source.BaseOffset)

	ds, err := cfg.RequiredDatasets()
	require.NoError(t, err)
	assert.Equal(t, []archive.Dataset{archive.MD5, archive.ISBNdb}, ds)

	require.NotNil(t, cfg.Snapshot)
	assert.Equal(t, "/tmp/cache", cfg.Snapshot.Path)
	assert.Equal(t, "catalog.snap", cfg.Snapshot.Name)
	assert.Equal(t, "zstd", cfg.Snapshot.Compression)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Listen)
	assert.Equal(t, "go-json", cfg.Server.Codec)
	require.NotNil(t, cfg.Server.RateLimit)
	assert.Zero(t, *cfg.Server.RateLimit)
	assert.Equal(t, 100, cfg.Server.Burst)

	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", `source {`, "failed to parse"},
		{"unknown block", `cache {}`, "failed to decode"},
		{"unknown attribute", `server { port = 1 }`, "failed to decode"},
		{"snapshot without path", `snapshot {}`, "failed to decode"},
		{"unknown kind", `source { kind = "ftp" }`, `unknown kind "ftp"`},
		{"s3 without bucket", `source { kind = "s3" }`, "bucket is required"},
		{"minio without endpoint", `source {
  kind   = "minio"
  bucket = "b"
}`, "endpoint is required"},
		{"unknown dataset", `source { required = ["nope"] }`, "unknown dataset"},
		{"bad compression", `snapshot {
  path        = "x"
  compression = "brotli"
}`, "unknown compression"},
		{"bad codec", `server { codec = "xml" }`, "unknown codec"},
		{"negative rate", `server { rate_limit = -1 }`, "rate_limit"},
		{"bad level", `log { level = "trace" }`, "invalid level"},
		{"bad format", `log { format = "yaml" }`, "invalid format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "test.hcl")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "isbnmap.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`source { path = "/data" }`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data", cfg.Source.Path)

	_, err = Load(filepath.Join(t.TempDir(), "missing.hcl"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
