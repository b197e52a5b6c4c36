package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/hupe1980/isbnmap"
	"github.com/hupe1980/isbnmap/blobstore"
	"github.com/hupe1980/isbnmap/blobstore/httpstore"
	"github.com/hupe1980/isbnmap/blobstore/minio"
	"github.com/hupe1980/isbnmap/blobstore/s3"
	"github.com/hupe1980/isbnmap/codec"
	"github.com/hupe1980/isbnmap/internal/cli"
	"github.com/hupe1980/isbnmap/internal/config"
	"github.com/hupe1980/isbnmap/server"
	"github.com/hupe1980/isbnmap/snapshot"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, outW io.Writer, args []string) error {
	cfg, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	logger := newLogger(cfg.Log)

	store, err := openStore(ctx, cfg.Source)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	pc := server.NewPrometheusCollector(reg)

	rc := isbnmap.NewResourceController(isbnmap.ResourceConfig{
		MemoryLimitBytes:   cfg.Source.MemoryLimit,
		IOLimitBytesPerSec: cfg.Source.IOLimit,
	})

	opts, err := mapOptions(cfg, logger, pc, rc)
	if err != nil {
		return err
	}

	m, err := isbnmap.Open(ctx, store, cfg.Source.Name, opts...)
	if err != nil {
		return fmt.Errorf("load %s: %w", cfg.Source.Name, err)
	}
	defer func() { _ = m.Close() }()

	c, _ := codec.ByName(cfg.Server.Codec)

	scfg := server.DefaultConfig()
	if r := cfg.Server.RateLimit; r != nil {
		scfg.RateLimit = rate.Limit(*r)
	}
	if cfg.Server.Burst > 0 {
		scfg.Burst = cfg.Server.Burst
	}

	srv := server.New(m,
		server.WithConfig(scfg),
		server.WithCodec(c),
		server.WithLogger(logger),
		server.WithPrometheus(pc, reg),
		server.WithResourceController(rc),
		server.WithStaticDir(cfg.Server.StaticDir),
	)
	return srv.ListenAndServe(ctx, cfg.Server.Listen)
}

func newLogger(cfg config.Log) *isbnmap.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		return isbnmap.NewJSONLogger(level)
	}
	return isbnmap.NewTextLogger(level)
}

func mapOptions(cfg *config.Config, logger *isbnmap.Logger, mc isbnmap.MetricsCollector, rc *isbnmap.ResourceController) ([]isbnmap.Option, error) {
	required, err := cfg.RequiredDatasets()
	if err != nil {
		return nil, err
	}

	opts := []isbnmap.Option{
		isbnmap.WithBaseOffset(cfg.Source.BaseOffset),
		isbnmap.WithRequiredDatasets(required...),
		isbnmap.WithLogger(logger),
		isbnmap.WithMetricsCollector(mc),
		isbnmap.WithResourceController(rc),
	}

	if snap := cfg.Snapshot; snap != nil {
		if err := os.MkdirAll(snap.Path, 0o755); err != nil {
			return nil, fmt.Errorf("snapshot dir: %w", err)
		}
		c, err := snapshot.ParseCompression(snap.Compression)
		if err != nil {
			return nil, err
		}
		opts = append(opts, isbnmap.WithSnapshot(blobstore.NewLocalStore(snap.Path), snap.Name, c))
	}

	return opts, nil
}

func openStore(ctx context.Context, src config.Source) (blobstore.BlobStore, error) {
	switch src.Kind {
	case config.KindLocal:
		return blobstore.NewLocalStore(src.Path), nil

	case config.KindHTTP:
		store, err := httpstore.NewStore(src.Path, httpstore.WithQuery(src.Query))
		if err != nil {
			return nil, err
		}
		return store, nil

	case config.KindS3:
		var loadOpts []func(*awsconfig.LoadOptions) error
		if src.Region != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(src.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, fmt.Errorf("aws config: %w", err)
		}
		client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
			if src.Endpoint != "" {
				o.BaseEndpoint = aws.String(src.Endpoint)
				o.UsePathStyle = true
			}
		})
		return s3.NewStore(client, src.Bucket, s3.WithPrefix(src.Prefix)), nil

	case config.KindMinIO:
		client, err := miniogo.New(src.Endpoint, &miniogo.Options{
			Creds:  credentials.NewStaticV4(src.AccessKey, src.SecretKey, ""),
			Secure: !src.Insecure,
			Region: src.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return minio.NewStore(client, src.Bucket, src.Prefix), nil

	default:
		return nil, fmt.Errorf("unknown source kind %q", src.Kind)
	}
}
