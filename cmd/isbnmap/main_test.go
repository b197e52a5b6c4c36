package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/isbnmap/blobstore"
	"github.com/hupe1980/isbnmap/blobstore/httpstore"
	"github.com/hupe1980/isbnmap/internal/config"
	"github.com/hupe1980/isbnmap/runlength"
	"github.com/hupe1980/isbnmap/testutil"
)

func TestRun_ShouldExit(t *testing.T) {
	out := &bytes.Buffer{}
	require.NoError(t, run(context.Background(), out, []string{"-h"}))
	assert.Contains(t, out.String(), "Usage:")
}

func TestRun_ParseError(t *testing.T) {
	err := run(context.Background(), &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_MissingArchive(t *testing.T) {
	err := run(context.Background(), &bytes.Buffer{}, []string{"-source", t.TempDir(), "-log-level", "error"})
	require.Error(t, err)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestRun_ServesUntilCanceled(t *testing.T) {
	dir := t.TempDir()
	data, err := testutil.Archive(map[string]runlength.Runs{"md5": runlength.New(3, 2, 5)})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "codes.zst"), data, 0600))

	snapDir := filepath.Join(t.TempDir(), "cache")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx, &bytes.Buffer{}, []string{
			"-source", dir,
			"-archive", "codes.zst",
			"-snapshot-dir", snapDir,
			"-listen", "127.0.0.1:0",
			"-log-level", "error",
		})
	}()

	// the archive load leaves a snapshot behind before the server starts
	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(snapDir, "catalog.snap"))
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	store, err := openStore(ctx, config.Source{Kind: config.KindLocal, Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &blobstore.LocalStore{}, store)

	store, err = openStore(ctx, config.Source{Kind: config.KindHTTP, Path: "https://example.com/raw"})
	require.NoError(t, err)
	assert.IsType(t, &httpstore.Store{}, store)

	_, err = openStore(ctx, config.Source{Kind: config.KindHTTP, Path: "ftp://example.com"})
	require.Error(t, err)

	_, err = openStore(ctx, config.Source{Kind: "tape"})
	require.Error(t, err)
}
