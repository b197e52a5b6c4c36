package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/isbnmap"
	"github.com/hupe1980/isbnmap/index"
	"github.com/hupe1980/isbnmap/internal/cache"
)

var (
	errRateLimited = errors.New("rate limit exceeded")
	errBadParam    = errors.New("bad parameter")
)

type statusResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type tileResponse struct {
	TileX int        `json:"tile_x"`
	TileY int        `json:"tile_y"`
	Data  [][]uint64 `json:"data"`
}

type statsResponse struct {
	Dataset string      `json:"dataset"`
	Stats   index.Stats `json:"stats"`
}

// bitmask encodes as a JSON array of 0 and 1, one per bit up to Len.
type bitmask struct {
	*bitset.BitSet
}

func (b bitmask) MarshalJSON() ([]byte, error) {
	n := b.Len()
	out := make([]byte, 0, 2*n+2)
	out = append(out, '[')
	for i := uint(0); i < n; i++ {
		if i > 0 {
			out = append(out, ',')
		}
		if b.Test(i) {
			out = append(out, '1')
		} else {
			out = append(out, '0')
		}
	}
	return append(out, ']'), nil
}

func (s *Server) write(w http.ResponseWriter, r *http.Request, code int, v any) {
	body, err := s.codec.Marshal(v)
	if err != nil {
		s.requestLogger(r.Context()).ErrorContext(r.Context(), "encode response", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeBody(w, code, body)
}

func writeBody(w http.ResponseWriter, code int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, code int, err error) {
	if code >= http.StatusInternalServerError {
		s.requestLogger(r.Context()).ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	s.write(w, r, code, errorResponse{Error: err.Error()})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.writeError(w, r, statusCode(err), err)
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, errBadParam),
		errors.Is(err, isbnmap.ErrInvalidIdentifier),
		errors.Is(err, isbnmap.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, isbnmap.ErrUnknownDataset):
		return http.StatusNotFound
	case errors.Is(err, isbnmap.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func dataset(r *http.Request) (isbnmap.Dataset, error) {
	name := r.URL.Query().Get("dataset")
	if name == "" {
		return isbnmap.MD5, nil
	}
	return isbnmap.ParseDataset(name)
}

func intParam(raw, name string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", errBadParam, name, raw)
	}
	return v, nil
}

func (s *Server) handleISBN(w http.ResponseWriter, r *http.Request) {
	d, err := dataset(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	ok, err := s.m.IsAvailable(r.Context(), d, r.PathValue("isbn"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	status := "unavailable"
	if ok {
		status = "available"
	}
	s.write(w, r, http.StatusOK, statusResponse{Status: status})
}

func (s *Server) handleSamples(w http.ResponseWriter, r *http.Request) {
	d, err := dataset(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	n, err := intParam(r.PathValue("n"), "n", s.cfg.SampleCount)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	ids, err := s.m.ExtractRuns(r.Context(), d, n, s.cfg.MaxExtract)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.write(w, r, http.StatusOK, ids)
}

func (s *Server) handleISBNs(w http.ResponseWriter, r *http.Request) {
	d, err := dataset(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	limit, err := intParam(r.URL.Query().Get("limit"), "limit", s.cfg.MaxExtract)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if s.cfg.MaxExtract > 0 && (limit <= 0 || limit > s.cfg.MaxExtract) {
		limit = s.cfg.MaxExtract
	}

	ids, err := s.m.ExtractIDs(r.Context(), d, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.write(w, r, http.StatusOK, ids)
}

func (s *Server) handleDetailView(w http.ResponseWriter, r *http.Request) {
	d, err := dataset(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	entries, err := s.m.CheckFrom(r.Context(), d, r.URL.Query().Get("base_isbn"), s.cfg.DetailCount)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.write(w, r, http.StatusOK, entries)
}

func (s *Server) handleClusterView(w http.ResponseWriter, r *http.Request) {
	d, err := dataset(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	bits, err := s.m.MaskBits(r.Context(), d, r.URL.Query().Get("base_isbn"), s.cfg.ClusterCount)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.write(w, r, http.StatusOK, bitmask{bits})
}

func (s *Server) handleGlobalView(w http.ResponseWriter, r *http.Request) {
	d, err := dataset(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	v, _ := s.views.LoadOrStore(d, &globalView{})
	view := v.(*globalView)
	grid, err := view.load(func() ([][]int, error) {
		ctx := context.WithoutCancel(r.Context())
		return s.m.AggregateGrid(ctx, d, s.cfg.GlobalWidth, s.cfg.GlobalHeight, s.cfg.GlobalScale)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.write(w, r, http.StatusOK, grid)
}

func (s *Server) handleTile(w http.ResponseWriter, r *http.Request) {
	d, err := dataset(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	q := r.URL.Query()
	if q.Get("tile_x") == "" || q.Get("tile_y") == "" {
		s.fail(w, r, fmt.Errorf("%w: tile_x and tile_y are required", errBadParam))
		return
	}
	tileX, err := intParam(q.Get("tile_x"), "tile_x", 0)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	tileY, err := intParam(q.Get("tile_y"), "tile_y", 0)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	key := cache.Key{Route: "tile", Dataset: uint8(d), X: tileX, Y: tileY}
	if body, ok := s.tiles.Get(key); ok {
		writeBody(w, http.StatusOK, body)
		return
	}

	g, err := s.m.Tile(r.Context(), d, tileX, tileY, s.cfg.TileSize, s.cfg.TileSize, s.cfg.TileGridWidth, s.cfg.TileGridHeight, 1)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	rows := make([][]uint64, g.Height)
	for y := range rows {
		rows[y] = g.Counts[y*g.Width : (y+1)*g.Width]
	}

	body, err := s.codec.Marshal(tileResponse{TileX: tileX, TileY: tileY, Data: rows})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.tiles.Set(key, body)
	writeBody(w, http.StatusOK, body)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	datasets := s.m.Datasets()
	out := make([]statsResponse, 0, len(datasets))
	for _, d := range datasets {
		st, err := s.m.Stats(d)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out = append(out, statsResponse{Dataset: d.String(), Stats: st})
	}
	s.write(w, r, http.StatusOK, out)
}
