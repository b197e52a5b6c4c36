package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/hupe1980/isbnmap/internal/config"
)

// ExitError carries the exit code for a failed parse.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns the merged
// configuration, whether the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*config.Config, bool, error) {
	fs := flag.NewFlagSet("isbnmap", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.Usage = func() {
		fmt.Fprint(output, `
isbnmap - serve the ISBN availability map over HTTP.

Usage:
  isbnmap [options]

Options:
`)
		fs.PrintDefaults()
	}

	configPath := fs.String("config", "", "Path to an HCL configuration file.")
	listen := fs.String("listen", "", "Address to listen on, e.g. ':8000'.")
	sourcePath := fs.String("source", "", "Directory (local) or base URL (http) holding the archive.")
	sourceKind := fs.String("source-kind", "", "Archive store. Options: 'local', 's3', 'minio', 'http'.")
	archiveName := fs.String("archive", "", "Name of the archive in the store.")
	snapshotDir := fs.String("snapshot-dir", "", "Directory for the decoded snapshot. Empty keeps the file setting.")
	staticDir := fs.String("static", "", "Directory with the front-end to serve on /.")
	logFormat := fs.String("log-format", "", "Log output format. Options: 'text' or 'json'.")
	logLevel := fs.String("log-level", "", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if fs.NArg() > 0 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected argument %q", fs.Arg(0))}
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		cfg = loaded
	}

	set(&cfg.Server.Listen, *listen)
	set(&cfg.Source.Path, *sourcePath)
	set(&cfg.Source.Kind, strings.ToLower(*sourceKind))
	set(&cfg.Source.Name, *archiveName)
	set(&cfg.Server.StaticDir, *staticDir)
	set(&cfg.Log.Format, strings.ToLower(*logFormat))
	set(&cfg.Log.Level, strings.ToLower(*logLevel))

	if *snapshotDir != "" {
		if cfg.Snapshot == nil {
			cfg.Snapshot = &config.Snapshot{Name: "catalog.snap", Compression: "zstd"}
		}
		cfg.Snapshot.Path = *snapshotDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	return &cfg, false, nil
}

func set(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
