package archive

import (
	"log/slog"

	"github.com/hupe1980/isbnmap/index"
	"github.com/hupe1980/isbnmap/internal/resource"
)

// Option configures Load and New.
type Option func(*options)

type options struct {
	required []Dataset
	base     uint64
	logger   *slog.Logger
	rc       *resource.Controller
}

func defaultOptions() options {
	return options{
		required: []Dataset{MD5},
		base:     index.DefaultBaseOffset,
		logger:   slog.New(slog.DiscardHandler),
	}
}

// WithRequired replaces the set of datasets that must be present.
// Calling it with no arguments makes every dataset optional.
func WithRequired(ds ...Dataset) Option {
	return func(o *options) {
		o.required = ds
	}
}

// WithBaseOffset sets the ISBN body mapped to position 0 of every dataset.
func WithBaseOffset(base uint64) Option {
	return func(o *options) {
		o.base = base
	}
}

// WithLogger sets the logger used for load diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithResourceController bounds decode concurrency and charges decoded run
// buffers against the controller's memory budget.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}
