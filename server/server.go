package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/hupe1980/isbnmap"
	"github.com/hupe1980/isbnmap/codec"
	"github.com/hupe1980/isbnmap/internal/cache"
)

// Option configures a Server.
type Option func(*Server)

// WithConfig replaces the view geometry and request limits.
func WithConfig(cfg Config) Option {
	return func(s *Server) {
		s.cfg = cfg
	}
}

// WithCodec sets the response codec. The default is codec.Default.
func WithCodec(c codec.Codec) Option {
	return func(s *Server) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l *isbnmap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPrometheus records request latency in pc and serves g on /metrics.
func WithPrometheus(pc *PrometheusCollector, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.prom = pc
		s.metricsHandler = promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	}
}

// WithResourceController charges cached tiles to rc's memory budget.
func WithResourceController(rc *isbnmap.ResourceController) Option {
	return func(s *Server) {
		s.rc = rc
	}
}

// WithStaticDir serves the front-end from dir on /.
func WithStaticDir(dir string) Option {
	return func(s *Server) {
		s.staticDir = dir
	}
}

// Server serves one loaded Map.
type Server struct {
	m      *isbnmap.Map
	cfg    Config
	codec  codec.Codec
	logger *isbnmap.Logger

	limiter        *rate.Limiter
	prom           *PrometheusCollector
	metricsHandler http.Handler
	staticDir      string

	views sync.Map // isbnmap.Dataset -> *globalView
	tiles *cache.LRU
	rc    *isbnmap.ResourceController

	handler http.Handler
}

// globalView memoizes the first successfully built grid of a dataset.
type globalView struct {
	mu   sync.Mutex
	grid [][]int
}

func (v *globalView) load(build func() ([][]int, error)) ([][]int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.grid != nil {
		return v.grid, nil
	}
	grid, err := build()
	if err != nil {
		return nil, err
	}
	v.grid = grid
	return grid, nil
}

// New creates a Server for m.
func New(m *isbnmap.Map, optFns ...Option) *Server {
	s := &Server{
		m:      m,
		cfg:    DefaultConfig(),
		codec:  codec.Default,
		logger: isbnmap.NoopLogger(),
	}
	for _, fn := range optFns {
		fn(s)
	}

	s.tiles = cache.NewLRU(s.cfg.TileCacheBytes, s.rc)

	if s.cfg.RateLimit > 0 {
		s.limiter = rate.NewLimiter(s.cfg.RateLimit, max(s.cfg.Burst, 1))
	}

	mux := http.NewServeMux()
	s.route(mux, "GET /api/isbn/{isbn}", s.handleISBN)
	s.route(mux, "GET /api/samples", s.handleSamples)
	s.route(mux, "GET /api/samples/{n}", s.handleSamples)
	s.route(mux, "GET /api/isbns", s.handleISBNs)
	s.route(mux, "GET /api/detail_view", s.handleDetailView)
	s.route(mux, "GET /api/cluster_view", s.handleClusterView)
	s.route(mux, "GET /api/global_view", s.handleGlobalView)
	s.route(mux, "GET /api/get_tile", s.handleTile)
	s.route(mux, "GET /api/stats", s.handleStats)

	if s.metricsHandler != nil {
		mux.Handle("GET /metrics", s.metricsHandler)
	}
	if s.staticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(s.staticDir)))
	}

	s.handler = s.withRequestID(mux)
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoContext(ctx, "server starting", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	s.logger.InfoContext(ctx, "server shutting down")
	return srv.Shutdown(shutdownCtx)
}
