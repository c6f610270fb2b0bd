package simplecase

import (
	"context"
	"io"
	"time"
)

// Repository defines the row store behind a case. Implementations own the
// schema, SQL and connection handling; the case only sees records.
type Repository interface {
	// CreateObject persists rec. When rec.ID is zero the repository assigns
	// the next ID and writes it back into rec.
	CreateObject(ctx context.Context, rec *ObjectRecord) error

	// GetObject returns ErrObjectNotFound when no row has the given ID.
	GetObject(ctx context.Context, id ObjectID) (*ObjectRecord, error)

	// ListRootObjects returns objects without a parent, ordered by ID.
	ListRootObjects(ctx context.Context) ([]*ObjectRecord, error)

	// ListChildren returns the matching children ordered by ID. No children
	// is an empty result, not an error.
	ListChildren(ctx context.Context, params ListChildrenParams) ([]*ObjectRecord, error)

	// ListChildIDs is ListChildren without materializing rows.
	ListChildIDs(ctx context.Context, params ListChildrenParams) ([]ObjectID, error)

	// Artifact operations
	CreateArtifact(ctx context.Context, rec *ArtifactRecord) error
	ListArtifacts(ctx context.Context, objectID ObjectID) ([]*ArtifactRecord, error)
}

// BlobStore holds the bytes of derived and local files.
type BlobStore interface {
	// Upload stores the content under key
	Upload(ctx context.Context, key string, reader io.Reader) error

	// Download opens the content stored under key
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the content stored under key
	Delete(ctx context.Context, key string) error

	// GetObjectMeta returns size and type information for key
	GetObjectMeta(ctx context.Context, key string) (*ObjectMeta, error)

	// GetDownloadURL returns a URL for downloading key, or ErrNoDownloadURL
	// when the backend has none
	GetDownloadURL(ctx context.Context, key string, downloadFilename string) (string, error)
}

// ObjectMeta contains metadata about a blob in storage
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
	Metadata    map[string]string
}

// Metrics observes case store calls. A nil Metrics disables collection.
type Metrics interface {
	// ObserveResolution records one store round-trip: op is the case
	// operation ("children", "children_ids", "parent", "get", ...).
	ObserveResolution(op string, duration time.Duration, err error)

	// ObserveEntities records how many entities a call materialized.
	ObserveEntities(op string, count int)
}
