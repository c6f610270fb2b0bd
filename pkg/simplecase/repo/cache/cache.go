// Package cache provides a read-through LRU cache over object rows of a
// simplecase.Repository.
//
// Object rows never change once written, so GetObject results can be kept
// indefinitely. Child listings are not cached: new derived children may be
// added at any time and callers must always see them.
package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tendant/simple-case/pkg/simplecase"
)

// Repository wraps a simplecase.Repository with an LRU of object rows.
type Repository struct {
	simplecase.Repository
	rows *lru.Cache[simplecase.ObjectID, *simplecase.ObjectRecord]
}

// New wraps repo with a cache holding up to size rows.
func New(repo simplecase.Repository, size int) (*Repository, error) {
	rows, err := lru.New[simplecase.ObjectID, *simplecase.ObjectRecord](size)
	if err != nil {
		return nil, fmt.Errorf("create row cache: %w", err)
	}
	return &Repository{Repository: repo, rows: rows}, nil
}

// CreateObject persists the row and caches it.
func (r *Repository) CreateObject(ctx context.Context, rec *simplecase.ObjectRecord) error {
	if err := r.Repository.CreateObject(ctx, rec); err != nil {
		return err
	}
	r.rows.Add(rec.ID, rec.Clone())
	return nil
}

// GetObject serves the row from the cache when present. Misses, including
// ErrObjectNotFound, are not remembered.
func (r *Repository) GetObject(ctx context.Context, id simplecase.ObjectID) (*simplecase.ObjectRecord, error) {
	if rec, ok := r.rows.Get(id); ok {
		return rec.Clone(), nil
	}
	rec, err := r.Repository.GetObject(ctx, id)
	if err != nil {
		return nil, err
	}
	r.rows.Add(id, rec.Clone())
	return rec, nil
}

// ListChildren passes through and warms the cache with the returned rows.
func (r *Repository) ListChildren(ctx context.Context, params simplecase.ListChildrenParams) ([]*simplecase.ObjectRecord, error) {
	recs, err := r.Repository.ListChildren(ctx, params)
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		r.rows.Add(rec.ID, rec.Clone())
	}
	return recs, nil
}

// Len returns the number of cached rows.
func (r *Repository) Len() int {
	return r.rows.Len()
}

// Purge drops every cached row.
func (r *Repository) Purge() {
	r.rows.Purge()
}

// Close purges the cache and closes the wrapped repository when it holds
// resources.
func (r *Repository) Close() error {
	r.rows.Purge()
	if closer, ok := r.Repository.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
