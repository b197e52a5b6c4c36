package minio

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/isbnmap/blobstore"
)

// fakeS3 serves read-only objects under /bucket/key.
func fakeS3(t *testing.T, objects map[string][]byte) *minio.Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, ok := objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			if r.Method != http.MethodHead {
				_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>not found</Message></Error>`)
			}
			return
		}
		w.Header().Set("ETag", `"0123456789abcdef"`)
		w.Header().Set("Content-Type", "application/octet-stream")
		http.ServeContent(w, r, "", time.Unix(1733338415, 0), bytes.NewReader(data))
	}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	client, err := minio.New(u.Host, &minio.Options{
		Creds:        credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure:       false,
		Region:       "us-east-1",
		BucketLookup: minio.BucketLookupPath,
	})
	require.NoError(t, err)
	return client
}

func TestStore_OpenAndRead(t *testing.T) {
	data := []byte("hello minio world")
	client := fakeS3(t, map[string][]byte{"/isbn/archives/codes.benc.zst": data})
	store := NewStore(client, "isbn", "archives/")
	ctx := context.Background()

	blob, err := store.Open(ctx, "codes.benc.zst")
	require.NoError(t, err)
	defer blob.Close()
	require.Equal(t, int64(len(data)), blob.Size())

	t.Run("ranged", func(t *testing.T) {
		buf := make([]byte, 5)
		n, err := blob.ReadAt(ctx, buf, 6)
		require.NoError(t, err)
		assert.Equal(t, 5, n)
		assert.Equal(t, "minio", string(buf))
	})

	t.Run("tail", func(t *testing.T) {
		buf := make([]byte, 10)
		n, err := blob.ReadAt(ctx, buf, 12)
		assert.ErrorIs(t, err, io.EOF)
		assert.Equal(t, "world", string(buf[:n]))
	})

	t.Run("fetch", func(t *testing.T) {
		got, err := blobstore.ReadAll(ctx, blob, nil)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})
}

func TestStore_OpenNotFound(t *testing.T) {
	store := NewStore(fakeS3(t, nil), "isbn", "")

	_, err := store.Open(context.Background(), "missing")
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}

// TestStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestStore_Integration(t *testing.T) {
	endpoint := "localhost:9000"
	bucket := "test-isbnmap"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, "test-prefix/")

	data := []byte("snapshot bytes")
	require.NoError(t, store.Put(ctx, "catalog.snap", data))

	blob, err := store.Open(ctx, "catalog.snap")
	require.NoError(t, err)
	defer blob.Close()

	got, err := blobstore.ReadAll(ctx, blob, nil)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}
