package fs_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-case/pkg/simplecase"
	"github.com/tendant/simple-case/pkg/simplecase/storage/fs"
)

func TestFSBackend_BasicOps(t *testing.T) {
	tmp := t.TempDir()
	backend, err := fs.New(fs.Config{BaseDir: tmp})
	require.NoError(t, err)

	ctx := context.Background()
	key := "ModuleOutput/zip/42/inner/readme.txt"
	data := []byte("hello fs")

	require.NoError(t, backend.Upload(ctx, key, bytes.NewReader(data)))

	meta, err := backend.GetObjectMeta(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), meta.Size)
	assert.Contains(t, meta.ContentType, "text/plain")

	rc, err := backend.Download(ctx, key)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, data, got)

	// overwrite replaces the whole file
	require.NoError(t, backend.Upload(ctx, key, bytes.NewReader([]byte("x"))))
	meta, err = backend.GetObjectMeta(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), meta.Size)

	require.NoError(t, backend.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(tmp, "ModuleOutput"))
	assert.True(t, os.IsNotExist(err), "empty directories should be cleaned up")

	_, err = backend.Download(ctx, key)
	assert.ErrorIs(t, err, simplecase.ErrBlobNotFound)
	assert.ErrorIs(t, backend.Delete(ctx, key), simplecase.ErrBlobNotFound)
}

func TestFSBackend_RejectsEscapingKeys(t *testing.T) {
	backend, err := fs.New(fs.Config{BaseDir: t.TempDir()})
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"../outside.txt", "a/../../outside.txt", ""} {
		assert.Error(t, backend.Upload(ctx, key, bytes.NewReader(nil)), key)
		_, err := backend.Download(ctx, key)
		assert.Error(t, err, key)
	}
}

func TestFSBackend_DownloadURL(t *testing.T) {
	ctx := context.Background()

	backend, err := fs.New(fs.Config{BaseDir: t.TempDir()})
	require.NoError(t, err)
	_, err = backend.GetDownloadURL(ctx, "a.txt", "")
	assert.ErrorIs(t, err, simplecase.ErrNoDownloadURL)

	backend, err = fs.New(fs.Config{BaseDir: t.TempDir(), URLPrefix: "http://localhost:8080/blobs/"})
	require.NoError(t, err)
	u, err := backend.GetDownloadURL(ctx, "derived/a.txt", "my file.txt")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/blobs/derived/a.txt?filename=my+file.txt", u)
}

func TestNew_RequiresBaseDir(t *testing.T) {
	_, err := fs.New(fs.Config{})
	assert.Error(t, err)
}
