package httpstore

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/isbnmap/blobstore"
)

func newServer(t *testing.T, data []byte, ranges bool) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var gets atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != defaultUserAgent || r.Header.Get("Referer") != defaultReferer {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		if r.URL.Path != "/isbn/codes.zst" {
			http.NotFound(w, r)
			return
		}
		if r.Method == http.MethodGet {
			gets.Add(1)
		}
		if !ranges {
			r.Header.Del("Range")
			w.Header().Set("Content-Length", strconv.Itoa(len(data)))
			if r.Method == http.MethodGet {
				_, _ = w.Write(data)
			}
			return
		}
		http.ServeContent(w, r, "codes.zst", time.Time{}, bytes.NewReader(data))
	}))
	t.Cleanup(srv.Close)
	return srv, &gets
}

func TestStore_Open(t *testing.T) {
	data := []byte("0123456789abcdefg")
	srv, _ := newServer(t, data, true)

	s, err := NewStore(srv.URL + "/isbn/")
	require.NoError(t, err)

	_, err = s.Open(context.Background(), "missing.zst")
	require.ErrorIs(t, err, blobstore.ErrNotFound)

	blob, err := s.Open(context.Background(), "codes.zst")
	require.NoError(t, err)
	defer func() { _ = blob.Close() }()
	assert.Equal(t, int64(len(data)), blob.Size())

	t.Run("ReadAt", func(t *testing.T) {
		p := make([]byte, 4)
		n, err := blob.ReadAt(context.Background(), p, 10)
		require.NoError(t, err)
		assert.Equal(t, "abcd", string(p[:n]))

		n, err = blob.ReadAt(context.Background(), p, 15)
		require.ErrorIs(t, err, io.EOF)
		assert.Equal(t, "fg", string(p[:n]))

		_, err = blob.ReadAt(context.Background(), p, 17)
		require.ErrorIs(t, err, io.EOF)
	})

	t.Run("ReadAll", func(t *testing.T) {
		got, err := blobstore.ReadAll(context.Background(), blob, nil)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})
}

func TestStore_FetchParts(t *testing.T) {
	data := bytes.Repeat([]byte("isbn"), 100)
	srv, gets := newServer(t, data, true)

	s, err := NewStore(srv.URL+"/isbn", WithConcurrency(64, 3))
	require.NoError(t, err)

	blob, err := s.Open(context.Background(), "codes.zst")
	require.NoError(t, err)

	f, ok := blob.(blobstore.Fetcher)
	require.True(t, ok)

	got, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, int32(7), gets.Load())
}

func TestStore_FetchWithoutRanges(t *testing.T) {
	data := []byte("no ranges here")
	srv, gets := newServer(t, data, false)

	s, err := NewStore(srv.URL + "/isbn")
	require.NoError(t, err)

	blob, err := s.Open(context.Background(), "codes.zst")
	require.NoError(t, err)

	got, err := blob.(blobstore.Fetcher).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, int32(1), gets.Load())

	// ranged reads still work when the server sends the whole body
	p := make([]byte, 6)
	n, err := blob.ReadAt(context.Background(), p, 3)
	require.NoError(t, err)
	assert.Equal(t, "ranges", string(p[:n]))
}

func TestStore_Errors(t *testing.T) {
	_, err := NewStore("ftp://example.com")
	require.Error(t, err)

	srv, _ := newServer(t, nil, true)
	s, err := NewStore(srv.URL, WithHeader("User-Agent", "curl"))
	require.NoError(t, err)

	_, err = s.Open(context.Background(), "codes.zst")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")

	require.ErrorIs(t, s.Put(context.Background(), "x", nil), ErrReadOnly)
}

func TestStore_Query(t *testing.T) {
	s, err := NewStore("https://example.com/raw/", WithQuery("inline=false"))
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/raw/codes.zst?inline=false", s.url("codes.zst"))
}
