package isbnmap

import (
	"github.com/hupe1980/isbnmap/archive"
	"github.com/hupe1980/isbnmap/blobstore"
	"github.com/hupe1980/isbnmap/index"
	"github.com/hupe1980/isbnmap/internal/resource"
	"github.com/hupe1980/isbnmap/snapshot"
)

// ResourceConfig holds load-time resource limits.
type ResourceConfig = resource.Config

// ResourceController enforces a ResourceConfig during load.
type ResourceController = resource.Controller

// NewResourceController creates a controller for WithResourceController.
func NewResourceController(cfg ResourceConfig) *ResourceController {
	return resource.NewController(cfg)
}

type snapshotConfig struct {
	store       blobstore.BlobStore
	name        string
	compression snapshot.Compression
}

type options struct {
	baseOffset       uint64
	required         []Dataset
	snapshot         *snapshotConfig
	metricsCollector MetricsCollector
	logger           *Logger
	rc               *ResourceController
}

func defaultOptions() options {
	return options{
		baseOffset:       index.DefaultBaseOffset,
		required:         []Dataset{archive.MD5},
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
}

// Option configures Open.
type Option func(*options)

// WithBaseOffset sets the ISBN body (12 digits, no check digit) that maps to
// position 0. The default is 978000000000.
func WithBaseOffset(base uint64) Option {
	return func(o *options) {
		o.baseOffset = base
	}
}

// WithRequiredDatasets replaces the datasets that must be present in the
// archive. The default is md5 only.
func WithRequiredDatasets(ds ...Dataset) Option {
	return func(o *options) {
		o.required = ds
	}
}

// WithSnapshot enables the snapshot cache. Open reads name from store before
// falling back to the archive, and writes it after a successful archive load.
func WithSnapshot(store blobstore.BlobStore, name string, c snapshot.Compression) Option {
	return func(o *options) {
		o.snapshot = &snapshotConfig{store: store, name: name, compression: c}
	}
}

// WithMetricsCollector sets a custom metrics collector for monitoring operations.
//
// Example:
//
//	metrics := &isbnmap.BasicMetricsCollector{}
//	m, err := isbnmap.Open(ctx, store, name, isbnmap.WithMetricsCollector(metrics))
//
//	// Later, check metrics
//	stats := metrics.GetStats()
//	fmt.Printf("Queries: %d, Avg latency: %dns\n", stats.QueryCount, stats.QueryAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger sets a structured logger for observability.
//
// Example:
//
//	logger := isbnmap.NewJSONLogger(slog.LevelInfo)
//	m, err := isbnmap.Open(ctx, store, name, isbnmap.WithLogger(logger))
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithResourceController bounds memory, decode concurrency and read
// throughput while loading.
func WithResourceController(rc *ResourceController) Option {
	return func(o *options) {
		o.rc = rc
	}
}
