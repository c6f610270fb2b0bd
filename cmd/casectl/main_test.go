package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-case/pkg/simplecase"
	"github.com/tendant/simple-case/pkg/simplecase/config"
)

// setupCase writes a small case database and points DATABASE_URL at it.
//
//	1 image disk.dd
//	└─ 2 file system
//	   └─ 3 dir
//	      ├─ 4 a.zip (100)
//	      │  └─ 5 inner.txt derived (40)
//	      └─ 6 b.txt (7)
func setupCase(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	dbURL := "sqlite://" + filepath.Join(t.TempDir(), "case.db")
	t.Setenv("DATABASE_URL", dbURL)
	t.Setenv("STORAGE_URL", "memory://")
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := config.Load(config.WithDatabase(config.DatabaseSQLite, dbURL))
	require.NoError(t, err)
	c, err := cfg.BuildCase(ctx, nil, nil)
	require.NoError(t, err)
	defer c.Close()

	file := func(id, parent simplecase.ObjectID, name string, ft simplecase.FileType, size int64) *simplecase.ObjectRecord {
		return &simplecase.ObjectRecord{ID: id, ParentID: parent, Type: simplecase.ObjectTypeFile,
			File: &simplecase.FileInfo{FileAttributes: simplecase.FileAttributes{
				FileType: ft,
				Name:     name,
				Size:     size,
				MetaType: simplecase.MetaTypeReg,
				Known:    simplecase.KnownStatusUnknown,
			}}}
	}
	dir := file(3, 2, "dir", simplecase.FileTypeFS, 0)
	dir.File.MetaType = simplecase.MetaTypeDir
	inner := file(5, 4, "inner.txt", simplecase.FileTypeDerived, 40)
	inner.File.LocalPath = "derived/5/inner.txt"

	for _, rec := range []*simplecase.ObjectRecord{
		{ID: 1, Type: simplecase.ObjectTypeImage, Image: &simplecase.ImageInfo{Name: "disk.dd", Type: "raw", Size: 8192}},
		{ID: 2, ParentID: 1, Type: simplecase.ObjectTypeFileSystem, FileSystem: &simplecase.FileSystemInfo{Type: "ext4", BlockSize: 1024, BlockCount: 8}},
		dir,
		file(4, 3, "a.zip", simplecase.FileTypeFS, 100),
		inner,
		file(6, 3, "b.txt", simplecase.FileTypeFS, 7),
	} {
		_, err := c.AddObject(ctx, rec)
		require.NoError(t, err)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestLs_Roots(t *testing.T) {
	setupCase(t)

	out, err := run(t, "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "disk.dd")
	assert.Contains(t, out, "image")
}

func TestLs_Children(t *testing.T) {
	setupCase(t)

	out, err := run(t, "ls", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "a.zip")
	assert.Contains(t, out, "b.txt")

	// a file lists its derived children only
	out, err = run(t, "ls", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "inner.txt")
	assert.Contains(t, out, "derived_file")
}

func TestLs_IDs(t *testing.T) {
	setupCase(t)

	out, err := run(t, "ls", "--ids", "3")
	require.NoError(t, err)
	assert.Equal(t, []string{"4", "6"}, strings.Fields(out))
}

func TestLs_Errors(t *testing.T) {
	setupCase(t)

	_, err := run(t, "ls", "abc")
	assert.ErrorContains(t, err, "invalid object id")

	_, err = run(t, "ls", "999")
	require.Error(t, err)
	assert.True(t, simplecase.IsNotFound(err))
}

func TestWalk(t *testing.T) {
	setupCase(t)

	out, err := run(t, "walk", "1")
	require.NoError(t, err)
	assert.Regexp(t, `Visited\s*:?\s*6`, out)
	assert.Regexp(t, `Total bytes\s*:?\s*147`, out)
	assert.Regexp(t, `derived_file\s+1`, out)
	assert.Regexp(t, `file\s+2`, out)
}

func TestWalk_MaxDepth(t *testing.T) {
	setupCase(t)

	out, err := run(t, "walk", "--max-depth", "1", "1")
	require.NoError(t, err)
	assert.Regexp(t, `Visited\s*:?\s*2`, out)
	assert.Regexp(t, `Total bytes\s*:?\s*0`, out)
}

func TestInit_InvalidLogLevel(t *testing.T) {
	setupCase(t)
	t.Setenv("LOG_LEVEL", "loud")

	_, err := run(t, "ls")
	assert.ErrorContains(t, err, "invalid LOG_LEVEL")
}

func TestInvalidConfiguration(t *testing.T) {
	t.Setenv("DATABASE_URL", "mysql://localhost/db")

	_, err := run(t, "ls")
	assert.ErrorContains(t, err, "invalid configuration")
}
