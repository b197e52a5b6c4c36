package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/hupe1980/isbnmap/archive"
	"github.com/hupe1980/isbnmap/codec"
	"github.com/hupe1980/isbnmap/snapshot"
)

// Source kinds.
const (
	KindLocal = "local"
	KindS3    = "s3"
	KindMinIO = "minio"
	KindHTTP  = "http"
)

// DefaultArchiveName is the file name the archive is published under.
const DefaultArchiveName = "aa_isbn13_codes_20241204T185335Z.benc.zst"

// Config is the process configuration.
type Config struct {
	Source   Source
	Snapshot *Snapshot // nil disables snapshots
	Server   Server
	Log      Log
}

// Source locates the archive.
type Source struct {
	Kind string `hcl:"kind,optional"`

	// Path is the directory of a local source or the base URL of an http source.
	Path string `hcl:"path,optional"`
	Name string `hcl:"name,optional"`

	// Query is appended to http source URLs.
	Query string `hcl:"query,optional"`

	Bucket    string `hcl:"bucket,optional"`
	Prefix    string `hcl:"prefix,optional"`
	Endpoint  string `hcl:"endpoint,optional"`
	Region    string `hcl:"region,optional"`
	AccessKey string `hcl:"access_key,optional"`
	SecretKey string `hcl:"secret_key,optional"`
	Insecure  bool   `hcl:"insecure,optional"`

	BaseOffset uint64   `hcl:"base_offset,optional"`
	Required   []string `hcl:"required,optional"`

	MemoryLimit int64 `hcl:"memory_limit,optional"`
	IOLimit     int64 `hcl:"io_limit,optional"`
}

// Snapshot configures the local snapshot written after an archive load.
type Snapshot struct {
	Path        string `hcl:"path"`
	Name        string `hcl:"name,optional"`
	Compression string `hcl:"compression,optional"`
}

// Server configures the HTTP surface.
type Server struct {
	Listen    string   `hcl:"listen,optional"`
	Codec     string   `hcl:"codec,optional"`
	StaticDir string   `hcl:"static_dir,optional"`
	RateLimit *float64 `hcl:"rate_limit,optional"`
	Burst     int      `hcl:"burst,optional"`
}

// Log configures the process logger.
type Log struct {
	Format string `hcl:"format,optional"`
	Level  string `hcl:"level,optional"`
}

type file struct {
	Source   *Source   `hcl:"source,block"`
	Snapshot *Snapshot `hcl:"snapshot,block"`
	Server   *Server   `hcl:"server,block"`
	Log      *Log      `hcl:"log,block"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	rate := 50.0
	return Config{
		Source: Source{
			Kind:       KindLocal,
			Path:       ".",
			Name:       DefaultArchiveName,
			BaseOffset: 978_000_000_000,
			Required:   []string{"md5"},
		},
		Server: Server{
			Listen:    ":8000",
			Codec:     "go-json",
			RateLimit: &rate,
			Burst:     100,
		},
		Log: Log{
			Format: "text",
			Level:  "info",
		},
	}
}

// Load reads and decodes the file at path over Default.
func Load(path string) (Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(src, path)
}

// Parse decodes HCL source over Default. filename is used in diagnostics.
func Parse(src []byte, filename string) (Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to parse HCL file %s: %s", filename, diags.Error())
	}

	var raw file
	if diags := gohcl.DecodeBody(f.Body, nil, &raw); diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to decode HCL file %s: %s", filename, diags.Error())
	}

	cfg := Default()
	cfg.merge(raw)
	return cfg, cfg.Validate()
}

func (c *Config) merge(f file) {
	if s := f.Source; s != nil {
		overlay(&c.Source.Kind, s.Kind)
		overlay(&c.Source.Path, s.Path)
		overlay(&c.Source.Name, s.Name)
		overlay(&c.Source.Query, s.Query)
		overlay(&c.Source.Bucket, s.Bucket)
		overlay(&c.Source.Prefix, s.Prefix)
		overlay(&c.Source.Endpoint, s.Endpoint)
		overlay(&c.Source.Region, s.Region)
		overlay(&c.Source.AccessKey, s.AccessKey)
		overlay(&c.Source.SecretKey, s.SecretKey)
		overlay(&c.Source.Insecure, s.Insecure)
		overlay(&c.Source.BaseOffset, s.BaseOffset)
		overlay(&c.Source.MemoryLimit, s.MemoryLimit)
		overlay(&c.Source.IOLimit, s.IOLimit)
		if s.Required != nil {
			c.Source.Required = s.Required
		}
	}

	if s := f.Snapshot; s != nil {
		snap := &Snapshot{Name: "catalog.snap", Compression: "zstd"}
		overlay(&snap.Path, s.Path)
		overlay(&snap.Name, s.Name)
		overlay(&snap.Compression, s.Compression)
		c.Snapshot = snap
	}

	if s := f.Server; s != nil {
		overlay(&c.Server.Listen, s.Listen)
		overlay(&c.Server.Codec, s.Codec)
		overlay(&c.Server.StaticDir, s.StaticDir)
		overlay(&c.Server.Burst, s.Burst)
		if s.RateLimit != nil {
			c.Server.RateLimit = s.RateLimit
		}
	}

	if l := f.Log; l != nil {
		overlay(&c.Log.Format, l.Format)
		overlay(&c.Log.Level, l.Level)
	}
}

func overlay[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error

	switch c.Source.Kind {
	case KindLocal, KindHTTP:
		if c.Source.Path == "" {
			errs = append(errs, fmt.Errorf("source: path is required for kind %q", c.Source.Kind))
		}
	case KindS3, KindMinIO:
		if c.Source.Bucket == "" {
			errs = append(errs, fmt.Errorf("source: bucket is required for kind %q", c.Source.Kind))
		}
		if c.Source.Kind == KindMinIO && c.Source.Endpoint == "" {
			errs = append(errs, errors.New("source: endpoint is required for kind \"minio\""))
		}
	default:
		errs = append(errs, fmt.Errorf("source: unknown kind %q", c.Source.Kind))
	}
	if c.Source.Name == "" {
		errs = append(errs, errors.New("source: name must not be empty"))
	}
	if _, err := c.RequiredDatasets(); err != nil {
		errs = append(errs, fmt.Errorf("source: %w", err))
	}

	if c.Snapshot != nil {
		if _, err := snapshot.ParseCompression(c.Snapshot.Compression); err != nil {
			errs = append(errs, fmt.Errorf("snapshot: %w", err))
		}
	}

	if _, ok := codec.ByName(c.Server.Codec); !ok {
		errs = append(errs, fmt.Errorf("server: unknown codec %q", c.Server.Codec))
	}
	if r := c.Server.RateLimit; r != nil && *r < 0 {
		errs = append(errs, fmt.Errorf("server: rate_limit must not be negative, got %v", *r))
	}

	if !slices.Contains([]string{"text", "json"}, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log: invalid format %q: must be 'text' or 'json'", c.Log.Format))
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log: invalid level %q: must be 'debug', 'info', 'warn', or 'error'", c.Log.Level))
	}

	return errors.Join(errs...)
}

// RequiredDatasets parses Source.Required.
func (c Config) RequiredDatasets() ([]archive.Dataset, error) {
	out := make([]archive.Dataset, 0, len(c.Source.Required))
	for _, name := range c.Source.Required {
		d, err := archive.ParseDataset(name)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
