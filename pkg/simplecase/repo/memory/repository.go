package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tendant/simple-case/pkg/simplecase"
)

// Repository implements simplecase.Repository using in-memory storage
type Repository struct {
	mu             sync.RWMutex
	objects        map[simplecase.ObjectID]*simplecase.ObjectRecord
	childrenByID   map[simplecase.ObjectID][]simplecase.ObjectID // parent -> sorted child ids
	artifacts      map[simplecase.ObjectID][]*simplecase.ArtifactRecord
	nextObjectID   simplecase.ObjectID
	nextArtifactID int64
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		objects:      make(map[simplecase.ObjectID]*simplecase.ObjectRecord),
		childrenByID: make(map[simplecase.ObjectID][]simplecase.ObjectID),
		artifacts:    make(map[simplecase.ObjectID][]*simplecase.ArtifactRecord),
	}
}

// Object operations

func (r *Repository) CreateObject(ctx context.Context, rec *simplecase.ObjectRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.ID == 0 {
		rec.ID = r.nextObjectID + 1
	}
	if _, exists := r.objects[rec.ID]; exists {
		return fmt.Errorf("object %d already exists", rec.ID)
	}
	if rec.ID > r.nextObjectID {
		r.nextObjectID = rec.ID
	}

	// Store a copy to avoid external modifications
	r.objects[rec.ID] = rec.Clone()

	ids := r.childrenByID[rec.ParentID]
	i := sort.Search(len(ids), func(i int) bool { return ids[i] >= rec.ID })
	ids = append(ids, 0)
	copy(ids[i+1:], ids[i:])
	ids[i] = rec.ID
	r.childrenByID[rec.ParentID] = ids

	return nil
}

func (r *Repository) GetObject(ctx context.Context, id simplecase.ObjectID) (*simplecase.ObjectRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, exists := r.objects[id]
	if !exists {
		return nil, simplecase.ErrObjectNotFound
	}
	return rec.Clone(), nil
}

func (r *Repository) ListRootObjects(ctx context.Context) ([]*simplecase.ObjectRecord, error) {
	return r.ListChildren(ctx, simplecase.ListChildrenParams{ParentID: 0})
}

func (r *Repository) ListChildren(ctx context.Context, params simplecase.ListChildrenParams) ([]*simplecase.ObjectRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*simplecase.ObjectRecord, 0)
	for _, id := range r.childrenByID[params.ParentID] {
		rec := r.objects[id]
		if params.Matches(rec) {
			result = append(result, rec.Clone())
		}
	}
	return result, nil
}

func (r *Repository) ListChildIDs(ctx context.Context, params simplecase.ListChildrenParams) ([]simplecase.ObjectID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]simplecase.ObjectID, 0)
	for _, id := range r.childrenByID[params.ParentID] {
		if params.Matches(r.objects[id]) {
			result = append(result, id)
		}
	}
	return result, nil
}

// Artifact operations

func (r *Repository) CreateArtifact(ctx context.Context, rec *simplecase.ArtifactRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.objects[rec.ObjectID]; !exists {
		return simplecase.ErrObjectNotFound
	}
	if rec.ArtifactID == 0 {
		r.nextArtifactID++
		rec.ArtifactID = r.nextArtifactID
	} else if rec.ArtifactID > r.nextArtifactID {
		r.nextArtifactID = rec.ArtifactID
	}
	r.artifacts[rec.ObjectID] = append(r.artifacts[rec.ObjectID], rec.Clone())
	return nil
}

func (r *Repository) ListArtifacts(ctx context.Context, objectID simplecase.ObjectID) ([]*simplecase.ArtifactRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*simplecase.ArtifactRecord, 0, len(r.artifacts[objectID]))
	for _, a := range r.artifacts[objectID] {
		result = append(result, a.Clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ArtifactID < result[j].ArtifactID })
	return result, nil
}
