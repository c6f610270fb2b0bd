package simplecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-case/pkg/simplecase"
	"github.com/tendant/simple-case/pkg/simplecase/repo/memory"
)

func TestFile_Children(t *testing.T) {
	ctx := context.Background()
	c, _ := openCase(t)
	file := mustGet[*simplecase.File](t, c, 42)

	t.Run("Attributes", func(t *testing.T) {
		assert.Equal(t, simplecase.ObjectID(42), file.ID())
		assert.Equal(t, int64(1024), file.Size())
		assert.Equal(t, simplecase.KnownStatusKnown, file.Known())
		assert.Equal(t, "report.zip", file.Name())
		assert.True(t, file.HasMD5())
		assert.True(t, file.IsFile())
		assert.False(t, file.IsDir())
		assert.True(t, file.IsAllocated())
		assert.Same(t, c, file.Case())
	})

	t.Run("DerivedOnly", func(t *testing.T) {
		children, err := file.Children(ctx)
		require.NoError(t, err)
		assert.Equal(t, []simplecase.ObjectID{100, 101}, idsOf(children))
		for _, child := range children {
			assert.IsType(t, &simplecase.DerivedFile{}, child)
		}
	})

	t.Run("IDsMatchChildren", func(t *testing.T) {
		children, err := file.Children(ctx)
		require.NoError(t, err)
		ids, err := file.ChildrenIDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, idsOf(children), ids)
		assert.Equal(t, []simplecase.ObjectID{100, 101}, ids)
	})

	t.Run("Idempotent", func(t *testing.T) {
		first, err := file.Children(ctx)
		require.NoError(t, err)
		second, err := file.Children(ctx)
		require.NoError(t, err)
		assert.Equal(t, idsOf(first), idsOf(second))
	})

	t.Run("NoChildren", func(t *testing.T) {
		empty := mustGet[*simplecase.File](t, c, 300)

		children, err := empty.Children(ctx)
		require.NoError(t, err)
		assert.NotNil(t, children)
		assert.Empty(t, children)

		ids, err := empty.ChildrenIDs(ctx)
		require.NoError(t, err)
		assert.NotNil(t, ids)
		assert.Empty(t, ids)
	})
}

func TestFile_ChildrenFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("StoreFailure", func(t *testing.T) {
		repo := &flakyRepository{Repository: memory.New()}
		buildTree(t, repo)
		c, err := simplecase.Open(simplecase.WithRepository(repo))
		require.NoError(t, err)
		file := mustGet[*simplecase.File](t, c, 42)

		repo.down.Store(true)

		children, err := file.Children(ctx)
		assert.Nil(t, children)
		var accessErr *simplecase.CoreAccessError
		require.ErrorAs(t, err, &accessErr)
		assert.Equal(t, simplecase.ObjectID(42), accessErr.ObjectID)
		assert.Equal(t, "children", accessErr.Op)
		assert.Equal(t, []simplecase.FileType{simplecase.FileTypeDerived}, accessErr.Kinds)
		assert.ErrorIs(t, err, errStoreDown)

		ids, err := file.ChildrenIDs(ctx)
		assert.Nil(t, ids)
		require.ErrorAs(t, err, &accessErr)
		assert.Equal(t, "children_ids", accessErr.Op)
		assert.ErrorIs(t, err, errStoreDown)

		repo.down.Store(false)
		ids, err = file.ChildrenIDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []simplecase.ObjectID{100, 101}, ids)
	})

	t.Run("ClosedCase", func(t *testing.T) {
		c, _ := openCase(t)
		file := mustGet[*simplecase.File](t, c, 42)
		require.NoError(t, c.Close())

		_, err := file.Children(ctx)
		var accessErr *simplecase.CoreAccessError
		require.ErrorAs(t, err, &accessErr)
		assert.ErrorIs(t, err, simplecase.ErrCaseClosed)

		_, err = file.ChildrenIDs(ctx)
		assert.ErrorIs(t, err, simplecase.ErrCaseClosed)

		_, err = file.Parent(ctx)
		assert.ErrorIs(t, err, simplecase.ErrCaseClosed)

		_, err = file.Artifacts(ctx)
		assert.ErrorIs(t, err, simplecase.ErrCaseClosed)
	})

	t.Run("MalformedChild", func(t *testing.T) {
		c, repo := openCase(t)
		bad := fileRecord(102, 42, "bad.txt", simplecase.FileTypeDerived, 1)
		bad.File.MD5 = "abc"
		require.NoError(t, repo.CreateObject(ctx, bad))
		file := mustGet[*simplecase.File](t, c, 42)

		children, err := file.Children(ctx)
		assert.Nil(t, children)
		var accessErr *simplecase.CoreAccessError
		require.ErrorAs(t, err, &accessErr)
		var constructionErr *simplecase.ConstructionError
		require.ErrorAs(t, err, &constructionErr)
		assert.Equal(t, simplecase.ObjectID(102), constructionErr.ObjectID)
		assert.Equal(t, "md5", constructionErr.Field)

		ids, err := file.ChildrenIDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []simplecase.ObjectID{100, 101, 102}, ids)
	})
}

func TestFile_Describe(t *testing.T) {
	c, _ := openCase(t)
	file := mustGet[*simplecase.File](t, c, 42)

	plain := file.Describe(false)
	assert.Equal(t, plain, file.Describe(false))
	assert.Equal(t, plain, file.String())
	assert.True(t, strings.HasPrefix(plain, "Content [\tobjID 42\tname report.zip\tparentID 6]\t"))
	assert.Contains(t, plain, "AbstractFile [\tfileType fs\tsize 1024\tknown known\tmd5 "+testMD5)
	assert.Contains(t, plain, "FsContent [\tfsObjID 4\tattrType 128")
	assert.True(t, strings.HasSuffix(plain, "File [\t]\t"))
	assert.NotContains(t, plain, c.ID().String())

	stateful := file.Describe(true)
	assert.Contains(t, stateful, "case "+c.ID().String())
	assert.Contains(t, stateful, "closed false")
	assert.Equal(t, stateful, file.Describe(true))

	require.NoError(t, c.Close())
	assert.Contains(t, file.Describe(true), "closed true")
	assert.Equal(t, plain, file.Describe(false))
}

func TestFile_FileSystemAccessors(t *testing.T) {
	ctx := context.Background()
	c, _ := openCase(t)
	file := mustGet[*simplecase.File](t, c, 42)

	fs, err := file.FileSystem(ctx)
	require.NoError(t, err)
	assert.Equal(t, simplecase.ObjectID(4), fs.ID())
	assert.Equal(t, "ntfs", fs.Type())

	assert.Equal(t, "r/rrw-r--r--", file.ModeString())
	assert.Equal(t, simplecase.AttrTypeNTFSData, file.AttrType())
	assert.Equal(t, int64(1042), file.MetaAddr())
	assert.True(t, file.MetaFlags().Has(simplecase.MetaFlagUsed))
	assert.Equal(t, "Allocated | Used", file.MetaFlags().String())
	assert.True(t, file.ModifiedAt().IsZero())
}

func TestFile_ModeString(t *testing.T) {
	tests := []struct {
		name string
		mode int
		want string
	}{
		{"plain", 0o644, "r/rrw-r--r--"},
		{"setuid exec", 0o4755, "r/rrwsr-xr-x"},
		{"setgid no exec", 0o2640, "r/rrw-r-S---"},
		{"sticky", 0o1777, "r/rrwxrwxrwt"},
		{"sticky no exec", 0o1776, "r/rrwxrwxrwT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := memory.New()
			rec := fileRecord(7, 0, "x", simplecase.FileTypeFS, 1)
			rec.File.Mode = tt.mode
			c, err := simplecase.Open(simplecase.WithRepository(repo))
			require.NoError(t, err)
			content, err := c.AddObject(context.Background(), rec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, content.(*simplecase.File).ModeString())
		})
	}
}

func TestFile_NilCase(t *testing.T) {
	var c *simplecase.Case
	_, err := c.ResolveChildren(context.Background(), 42, simplecase.FileTypeDerived)
	var accessErr *simplecase.CoreAccessError
	require.True(t, errors.As(err, &accessErr))
	assert.ErrorIs(t, err, simplecase.ErrCaseClosed)
	assert.True(t, c.Closed())
}
