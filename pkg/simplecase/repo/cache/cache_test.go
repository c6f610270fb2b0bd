package cache_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-case/pkg/simplecase"
	"github.com/tendant/simple-case/pkg/simplecase/repo/cache"
	"github.com/tendant/simple-case/pkg/simplecase/repo/memory"
)

// countingRepository counts GetObject calls that reach the backing store.
type countingRepository struct {
	*memory.Repository
	gets int
}

func (r *countingRepository) GetObject(ctx context.Context, id simplecase.ObjectID) (*simplecase.ObjectRecord, error) {
	r.gets++
	return r.Repository.GetObject(ctx, id)
}

func image(name string) *simplecase.ObjectRecord {
	return &simplecase.ObjectRecord{Type: simplecase.ObjectTypeImage, Image: &simplecase.ImageInfo{Name: name}}
}

func TestCacheRepository(t *testing.T) {
	ctx := context.Background()
	backing := &countingRepository{Repository: memory.New()}
	for _, name := range []string{"a.dd", "b.dd", "c.dd"} {
		require.NoError(t, backing.Repository.CreateObject(ctx, image(name)))
	}

	repo, err := cache.New(backing, 2)
	require.NoError(t, err)

	t.Run("ReadThrough", func(t *testing.T) {
		rec, err := repo.GetObject(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "a.dd", rec.Image.Name)

		rec, err = repo.GetObject(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "a.dd", rec.Image.Name)
		assert.Equal(t, 1, backing.gets)
	})

	t.Run("CopiesOnRead", func(t *testing.T) {
		rec, err := repo.GetObject(ctx, 1)
		require.NoError(t, err)
		rec.Image.Name = "mutated"

		again, err := repo.GetObject(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "a.dd", again.Image.Name)
	})

	t.Run("Eviction", func(t *testing.T) {
		repo.Purge()
		backing.gets = 0
		for _, id := range []simplecase.ObjectID{1, 2, 3, 1} {
			_, err := repo.GetObject(ctx, id)
			require.NoError(t, err)
		}
		assert.Equal(t, 4, backing.gets)
		assert.Equal(t, 2, repo.Len())
	})

	t.Run("NotFoundIsNotCached", func(t *testing.T) {
		backing.gets = 0
		_, err := repo.GetObject(ctx, 42)
		assert.ErrorIs(t, err, simplecase.ErrObjectNotFound)
		_, err = repo.GetObject(ctx, 42)
		assert.ErrorIs(t, err, simplecase.ErrObjectNotFound)
		assert.Equal(t, 2, backing.gets)
	})

	t.Run("ListChildrenWarms", func(t *testing.T) {
		repo.Purge()
		backing.gets = 0
		roots, err := repo.ListRootObjects(ctx)
		require.NoError(t, err)
		assert.Len(t, roots, 3)

		// ListRootObjects is a pass-through on the embedded repository
		assert.Equal(t, 0, repo.Len())

		_, err = repo.ListChildren(ctx, simplecase.ListChildrenParams{ParentID: 0})
		require.NoError(t, err)
		_, err = repo.GetObject(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, 0, backing.gets)
	})
}

func TestCacheRepository_NewChildrenVisible(t *testing.T) {
	ctx := context.Background()
	repo, err := cache.New(memory.New(), 16)
	require.NoError(t, err)
	c, err := simplecase.Open(simplecase.WithRepository(repo))
	require.NoError(t, err)

	img, err := c.AddObject(ctx, image("disk.dd"))
	require.NoError(t, err)
	ids, err := img.ChildrenIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = c.AddObject(ctx, &simplecase.ObjectRecord{ParentID: img.ID(), Type: simplecase.ObjectTypeVolumeSystem,
		VolumeSystem: &simplecase.VolumeSystemInfo{Type: "gpt"}})
	require.NoError(t, err)

	ids, err = img.ChildrenIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestNew_InvalidSize(t *testing.T) {
	_, err := cache.New(memory.New(), 0)
	assert.Error(t, err)
}
