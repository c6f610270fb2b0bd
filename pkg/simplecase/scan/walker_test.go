package scan_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-case/pkg/simplecase"
	"github.com/tendant/simple-case/pkg/simplecase/repo/memory"
	"github.com/tendant/simple-case/pkg/simplecase/scan"
)

func file(id, parent simplecase.ObjectID, name string, ft simplecase.FileType) *simplecase.ObjectRecord {
	return &simplecase.ObjectRecord{ID: id, ParentID: parent, Type: simplecase.ObjectTypeFile,
		File: &simplecase.FileInfo{FileAttributes: simplecase.FileAttributes{FileType: ft, Name: name, Size: 10}}}
}

// newTree builds
//
//	1 image
//	└─ 2 file system
//	   ├─ 3 dir
//	   │  ├─ 4 a.zip
//	   │  │  └─ 5 derived
//	   │  └─ 6 b.txt
//	   └─ 7 c.txt
func newTree(t *testing.T) (*simplecase.Case, *memory.Repository, simplecase.Content) {
	t.Helper()
	ctx := context.Background()
	repo := memory.New()
	dir := file(3, 2, "dir", simplecase.FileTypeFS)
	dir.File.MetaType = simplecase.MetaTypeDir
	for _, rec := range []*simplecase.ObjectRecord{
		{ID: 1, Type: simplecase.ObjectTypeImage, Image: &simplecase.ImageInfo{Name: "disk.dd"}},
		{ID: 2, ParentID: 1, Type: simplecase.ObjectTypeFileSystem, FileSystem: &simplecase.FileSystemInfo{Type: "ext4"}},
		dir,
		file(4, 3, "a.zip", simplecase.FileTypeFS),
		file(5, 4, "inner.txt", simplecase.FileTypeDerived),
		file(6, 3, "b.txt", simplecase.FileTypeFS),
		file(7, 2, "c.txt", simplecase.FileTypeFS),
	} {
		require.NoError(t, repo.CreateObject(ctx, rec))
	}
	c, err := simplecase.Open(simplecase.WithRepository(repo))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	root, err := c.GetContentByID(ctx, 1)
	require.NoError(t, err)
	return c, repo, root
}

func TestWalker_PreOrder(t *testing.T) {
	ctx := context.Background()
	_, _, root := newTree(t)

	var order []simplecase.ObjectID
	result, err := scan.New(nil).ForEach(ctx, root, func(_ context.Context, c simplecase.Content) error {
		order = append(order, c.ID())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []simplecase.ObjectID{1, 2, 3, 4, 5, 6, 7}, order)
	assert.Equal(t, int64(7), result.TotalVisited)
	assert.Zero(t, result.TotalFailed)
	assert.Equal(t, 4, result.DeepestLevel)
}

func TestWalker_ContinuesAfterFailures(t *testing.T) {
	ctx := context.Background()
	_, repo, root := newTree(t)

	// a malformed derived row makes a.zip's children unresolvable
	bad := file(8, 4, "bad", simplecase.FileTypeDerived)
	bad.File.Size = -1
	require.NoError(t, repo.CreateObject(ctx, bad))

	var order []simplecase.ObjectID
	visitor := simplecase.ContentFunc(func(c simplecase.Content) error {
		order = append(order, c.ID())
		if c.ID() == 6 {
			return errors.New("cannot read b.txt")
		}
		return nil
	})

	result, err := scan.New(nil).Walk(ctx, root, scan.WalkOptions{Visitor: visitor})
	require.NoError(t, err)
	assert.Equal(t, []simplecase.ObjectID{1, 2, 3, 4, 6, 7}, order)
	assert.Equal(t, []simplecase.ObjectID{4, 6}, result.FailedIDs)
	assert.Equal(t, int64(2), result.TotalFailed)
	assert.Equal(t, int64(4), result.TotalVisited)
}

func TestWalker_MaxDepth(t *testing.T) {
	_, _, root := newTree(t)

	var order []simplecase.ObjectID
	visitor := simplecase.ContentFunc(func(c simplecase.Content) error {
		order = append(order, c.ID())
		return nil
	})
	result, err := scan.New(nil).Walk(context.Background(), root, scan.WalkOptions{Visitor: visitor, MaxDepth: 2})
	require.NoError(t, err)
	assert.Equal(t, []simplecase.ObjectID{1, 2, 3, 7}, order)
	assert.Equal(t, 2, result.DeepestLevel)
}

func TestWalker_Cancellation(t *testing.T) {
	_, _, root := newTree(t)
	ctx, cancel := context.WithCancel(context.Background())

	visitor := simplecase.ContentFunc(func(c simplecase.Content) error {
		if c.ID() == 3 {
			cancel()
		}
		return nil
	})
	result, err := scan.New(nil).Walk(ctx, root, scan.WalkOptions{Visitor: visitor})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(3), result.TotalVisited)
	assert.Empty(t, result.FailedIDs)
}

func TestWalker_ClosedCase(t *testing.T) {
	c, _, root := newTree(t)
	require.NoError(t, c.Close())

	result, err := scan.New(nil).Walk(context.Background(), root, scan.WalkOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, []simplecase.ObjectID{1}, result.FailedIDs)
}

func TestWalker_Options(t *testing.T) {
	_, _, root := newTree(t)
	w := scan.New(nil)

	_, err := w.Walk(context.Background(), root, scan.WalkOptions{})
	assert.Error(t, err)

	var calls int
	result, err := w.Walk(context.Background(), root, scan.WalkOptions{
		DryRun:        true,
		ProgressEvery: 3,
		OnProgress:    func(visited, failed int64) { calls++ },
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.TotalVisited)
	assert.Equal(t, 3, calls)
}
