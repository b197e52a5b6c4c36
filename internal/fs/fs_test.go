package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS(t *testing.T) {
	tmp := t.TempDir()
	lfs := LocalFS{}

	dir := filepath.Join(tmp, "subdir")
	require.NoError(t, lfs.MkdirAll(dir, 0755))

	fpath := filepath.Join(dir, "test.txt")
	f, err := lfs.OpenFile(fpath, os.O_CREATE|os.O_WRONLY, 0644)
	require.NoError(t, err)

	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())

	newPath := filepath.Join(dir, "renamed.txt")
	require.NoError(t, lfs.Rename(fpath, newPath))

	data, err := os.ReadFile(newPath)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, lfs.Remove(newPath))
	_, err = os.Stat(newPath)
	assert.True(t, os.IsNotExist(err))
}

func TestFaultyFS(t *testing.T) {
	tmp := t.TempDir()
	ffs := NewFaultyFS(nil)
	ffs.AddRule("limited", Fault{FailAfterBytes: 4})
	ffs.AddRule("nosync", Fault{FailAfterBytes: -1, FailOnSync: true})
	ffs.AddRule("noclose", Fault{FailAfterBytes: -1, FailOnClose: true, Err: os.ErrPermission})

	open := func(name string) File {
		f, err := ffs.OpenFile(filepath.Join(tmp, name), os.O_CREATE|os.O_WRONLY, 0644)
		require.NoError(t, err)
		return f
	}

	t.Run("write limit", func(t *testing.T) {
		f := open("limited.bin")
		_, err := f.Write([]byte("abc"))
		require.NoError(t, err)
		_, err = f.Write([]byte("de"))
		require.ErrorIs(t, err, ErrInjected)
		require.NoError(t, f.Close())
	})

	t.Run("sync", func(t *testing.T) {
		f := open("nosync.bin")
		require.ErrorIs(t, f.Sync(), ErrInjected)
		require.NoError(t, f.Close())
	})

	t.Run("close", func(t *testing.T) {
		f := open("noclose.bin")
		require.ErrorIs(t, f.Close(), os.ErrPermission)
	})

	t.Run("unmatched", func(t *testing.T) {
		f := open("plain.bin")
		_, err := f.Write(make([]byte, 1024))
		require.NoError(t, err)
		require.NoError(t, f.Sync())
		require.NoError(t, f.Close())
	})
}
