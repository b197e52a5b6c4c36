package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/isbnmap"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

type ctxKey struct{}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := context.WithValue(r.Context(), ctxKey{}, s.logger.WithRequestID(id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requestLogger(ctx context.Context) *isbnmap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*isbnmap.Logger); ok {
		return l
	}
	return s.logger
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// route registers h under pattern behind rate limiting and instrumentation.
func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}

		if s.limiter != nil && !s.limiter.Allow() {
			s.writeError(rec, r, http.StatusTooManyRequests, errRateLimited)
		} else {
			h(rec, r)
		}

		d := time.Since(start)
		if s.prom != nil {
			s.prom.observeRequest(pattern, strconv.Itoa(rec.code), d)
		}
		s.requestLogger(r.Context()).DebugContext(r.Context(), "request",
			"route", pattern,
			"path", r.URL.Path,
			"code", rec.code,
			"duration", d,
		)
	}))
}
