package httpstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/isbnmap/blobstore"
)

const (
	defaultUserAgent = "Mozilla/5.0"
	defaultReferer   = "https://software.annas-archive.li"
	defaultPartSize  = 8 * 1024 * 1024
)

// ErrReadOnly is returned by Put.
var ErrReadOnly = errors.New("httpstore: store is read-only")

// Option configures a Store.
type Option func(*Store)

// WithClient sets the HTTP client. The default is http.DefaultClient.
func WithClient(c *http.Client) Option {
	return func(s *Store) {
		if c != nil {
			s.client = c
		}
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(s *Store) {
		s.header.Set(key, value)
	}
}

// WithQuery appends a raw query string to every blob URL.
func WithQuery(rawQuery string) Option {
	return func(s *Store) {
		s.rawQuery = rawQuery
	}
}

// WithConcurrency sets the part size and number of parallel ranged GETs used by Fetch.
func WithConcurrency(partSize int64, n int) Option {
	return func(s *Store) {
		if partSize > 0 {
			s.partSize = partSize
		}
		if n > 0 {
			s.concurrency = n
		}
	}
}

// Store reads blobs below a base URL.
type Store struct {
	client      *http.Client
	base        string
	rawQuery    string
	header      http.Header
	partSize    int64
	concurrency int
}

// NewStore creates a Store rooted at baseURL.
func NewStore(baseURL string, opts ...Option) (*Store, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("httpstore: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("httpstore: unsupported scheme %q", u.Scheme)
	}

	s := &Store{
		client:      http.DefaultClient,
		base:        strings.TrimSuffix(u.String(), "/"),
		header:      http.Header{},
		partSize:    defaultPartSize,
		concurrency: 4,
	}
	s.header.Set("User-Agent", defaultUserAgent)
	s.header.Set("Referer", defaultReferer)

	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) url(name string) string {
	u := s.base + "/" + url.PathEscape(name)
	if s.rawQuery != "" {
		u += "?" + s.rawQuery
	}
	return u
}

func (s *Store) do(ctx context.Context, method, target, rng string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range s.header {
		req.Header[k] = v
	}
	if rng != "" {
		req.Header.Set("Range", rng)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%s: %w", target, blobstore.ErrNotFound)
	case resp.StatusCode >= 300:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("httpstore: %s %s: %s", method, target, resp.Status)
	}
	return resp, nil
}

// Open issues a HEAD request for name.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	target := s.url(name)

	resp, err := s.do(ctx, http.MethodHead, target, "")
	if err != nil {
		return nil, err
	}
	_ = resp.Body.Close()

	if resp.ContentLength < 0 {
		return nil, fmt.Errorf("httpstore: %s: unknown content length", target)
	}

	return &httpBlob{
		store:  s,
		url:    target,
		size:   resp.ContentLength,
		ranges: resp.Header.Get("Accept-Ranges") == "bytes",
	}, nil
}

// Put always fails with ErrReadOnly.
func (s *Store) Put(context.Context, string, []byte) error {
	return ErrReadOnly
}

// httpBlob implements blobstore.Blob and blobstore.Fetcher.
type httpBlob struct {
	store  *Store
	url    string
	size   int64
	ranges bool
}

func (b *httpBlob) Close() error { return nil }

func (b *httpBlob) Size() int64 { return b.size }

// ReadAt reads len(p) bytes at off with one ranged GET.
func (b *httpBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if off >= b.size {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	end := min(off+int64(len(p)), b.size)
	n, err := b.readRange(ctx, p[:end-off], off)
	if err != nil {
		return n, err
	}
	if int64(len(p)) > end-off {
		return n, io.EOF
	}
	return n, nil
}

func (b *httpBlob) readRange(ctx context.Context, p []byte, off int64) (int, error) {
	resp, err := b.store.do(ctx, http.MethodGet, b.url, fmt.Sprintf("bytes=%d-%d", off, off+int64(len(p))-1))
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusPartialContent {
		// The server ignored the range and sent the whole body.
		if _, err := io.CopyN(io.Discard, resp.Body, off); err != nil {
			return 0, err
		}
	}

	n, err := io.ReadFull(resp.Body, p)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return n, io.EOF
	}
	return n, err
}

// Fetch downloads the whole blob, in parallel parts when the server
// advertises range support.
func (b *httpBlob) Fetch(ctx context.Context) ([]byte, error) {
	buf := make([]byte, b.size)
	if b.size == 0 {
		return buf, nil
	}

	if !b.ranges {
		resp, err := b.store.do(ctx, http.MethodGet, b.url, "")
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		if _, err := io.ReadFull(resp.Body, buf); err != nil {
			return nil, fmt.Errorf("httpstore: %s: %w", b.url, err)
		}
		return buf, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.store.concurrency)
	for off := int64(0); off < b.size; off += b.store.partSize {
		part := buf[off:min(off+b.store.partSize, b.size)]
		g.Go(func() error {
			n, err := b.readRange(ctx, part, off)
			if err != nil {
				return err
			}
			if n != len(part) {
				return fmt.Errorf("httpstore: %s: short part at %d", b.url, off)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return buf, nil
}
