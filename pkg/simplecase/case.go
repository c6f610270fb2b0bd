package simplecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/tendant/simple-case/pkg/simplecase/objectkey"
)

// Case is an open forensic case: the store every content entity resolves its
// children, parents and artifacts through. A Case is safe for concurrent use.
// Entities loaded from a Case hold a non-owning handle to it and must not be
// used after Close.
type Case struct {
	id      uuid.UUID
	repo    Repository
	blobs   BlobStore
	logger  *slog.Logger
	metrics Metrics
	keys    objectkey.Generator
	closed  atomic.Bool
}

// Option represents a functional option for configuring a case
type Option func(*Case)

// WithRepository sets the row store of the case
func WithRepository(repo Repository) Option {
	return func(c *Case) {
		c.repo = repo
	}
}

// WithBlobStore sets the store holding derived and local file bytes
func WithBlobStore(store BlobStore) Option {
	return func(c *Case) {
		c.blobs = store
	}
}

// WithLogger sets the logger of the case
func WithLogger(logger *slog.Logger) Option {
	return func(c *Case) {
		c.logger = logger
	}
}

// WithMetrics sets the collector observing store calls
func WithMetrics(m Metrics) Option {
	return func(c *Case) {
		c.metrics = m
	}
}

// WithKeyGenerator sets how blob keys are named for files added with
// AddDerivedFile. Generators that use the case ID see the ID of this open
// handle, which changes on every Open; existing files keep working because
// the key is stored in the row.
func WithKeyGenerator(g objectkey.Generator) Option {
	return func(c *Case) {
		c.keys = g
	}
}

// Open creates a case over the configured repository.
func Open(options ...Option) (*Case, error) {
	c := &Case{id: uuid.New()}
	for _, option := range options {
		option(c)
	}
	if c.repo == nil {
		return nil, ErrRepositoryRequired
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.keys == nil {
		c.keys = objectkey.NewRecommendedGenerator()
	}
	c.logger = c.logger.With("case_id", c.id.String())
	c.logger.Debug("case opened")
	return c, nil
}

// ID identifies this open handle of the case. It is generated by Open and
// is not persisted.
func (c *Case) ID() uuid.UUID {
	if c == nil {
		return uuid.Nil
	}
	return c.id
}

// Closed reports whether Close was called. A nil case is closed.
func (c *Case) Closed() bool {
	return c == nil || c.closed.Load()
}

// Close marks the case closed and releases the repository when it holds
// resources. Closing twice is a no-op.
func (c *Case) Close() error {
	if c == nil || c.closed.Swap(true) {
		return nil
	}
	c.logger.Debug("case closed")
	if closer, ok := c.repo.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("close repository: %w", err)
		}
	}
	return nil
}

// ResolveChildren loads the children of parentID ordered by ascending ID.
// With no kinds every child object is returned; otherwise only file rows
// whose FileType is listed. No children yields an empty, non-nil slice.
// Any failure is reported as a *CoreAccessError and no partial list is
// returned.
func (c *Case) ResolveChildren(ctx context.Context, parentID ObjectID, kinds ...FileType) ([]Content, error) {
	const op = "children"
	start := time.Now()
	if err := c.live(op, parentID, kinds); err != nil {
		return nil, err
	}

	recs, err := c.repo.ListChildren(ctx, ListChildrenParams{ParentID: parentID, FileTypes: kinds})
	if err != nil {
		return nil, c.fail(op, parentID, kinds, start, err)
	}

	children := make([]Content, 0, len(recs))
	for _, rec := range recs {
		child, err := c.newContent(rec)
		if err != nil {
			return nil, c.fail(op, parentID, kinds, start, err)
		}
		children = append(children, child)
	}
	c.observe(op, start, len(children))
	return children, nil
}

// ResolveChildrenIDs returns the IDs ResolveChildren would load, in the same
// order, without materializing entities.
func (c *Case) ResolveChildrenIDs(ctx context.Context, parentID ObjectID, kinds ...FileType) ([]ObjectID, error) {
	const op = "children_ids"
	start := time.Now()
	if err := c.live(op, parentID, kinds); err != nil {
		return nil, err
	}

	ids, err := c.repo.ListChildIDs(ctx, ListChildrenParams{ParentID: parentID, FileTypes: kinds})
	if err != nil {
		return nil, c.fail(op, parentID, kinds, start, err)
	}
	if ids == nil {
		ids = []ObjectID{}
	}
	c.observe(op, start, len(ids))
	return ids, nil
}

// GetContentByID loads one entity. A missing row is reported as a
// *CoreAccessError wrapping ErrObjectNotFound.
func (c *Case) GetContentByID(ctx context.Context, id ObjectID) (Content, error) {
	const op = "get"
	start := time.Now()
	if err := c.live(op, id, nil); err != nil {
		return nil, err
	}
	content, err := c.load(ctx, id)
	if err != nil {
		return nil, c.fail(op, id, nil, start, err)
	}
	c.observe(op, start, 1)
	return content, nil
}

// ResolveParent loads the parent of id. Root objects have no parent and
// yield nil.
func (c *Case) ResolveParent(ctx context.Context, id ObjectID) (Content, error) {
	const op = "parent"
	start := time.Now()
	if err := c.live(op, id, nil); err != nil {
		return nil, err
	}
	rec, err := c.repo.GetObject(ctx, id)
	if err != nil {
		return nil, c.fail(op, id, nil, start, err)
	}
	return c.parentOf(ctx, id, rec.ParentID)
}

// parentOf loads parentID on behalf of id.
func (c *Case) parentOf(ctx context.Context, id, parentID ObjectID) (Content, error) {
	const op = "parent"
	start := time.Now()
	if err := c.live(op, id, nil); err != nil {
		return nil, err
	}
	if parentID == 0 {
		c.observe(op, start, 0)
		return nil, nil
	}
	parent, err := c.load(ctx, parentID)
	if err != nil {
		return nil, c.fail(op, id, nil, start, err)
	}
	c.observe(op, start, 1)
	return parent, nil
}

// RootObjects loads the objects without a parent, normally the images.
func (c *Case) RootObjects(ctx context.Context) ([]Content, error) {
	const op = "roots"
	start := time.Now()
	if err := c.live(op, 0, nil); err != nil {
		return nil, err
	}
	recs, err := c.repo.ListRootObjects(ctx)
	if err != nil {
		return nil, c.fail(op, 0, nil, start, err)
	}
	roots := make([]Content, 0, len(recs))
	for _, rec := range recs {
		content, err := c.newContent(rec)
		if err != nil {
			return nil, c.fail(op, 0, nil, start, err)
		}
		roots = append(roots, content)
	}
	c.observe(op, start, len(roots))
	return roots, nil
}

// Images returns the root objects that are disk images.
func (c *Case) Images(ctx context.Context) ([]*Image, error) {
	roots, err := c.RootObjects(ctx)
	if err != nil {
		return nil, err
	}
	images := make([]*Image, 0, len(roots))
	for _, root := range roots {
		if img, ok := root.(*Image); ok {
			images = append(images, img)
		}
	}
	return images, nil
}

// Artifacts loads the blackboard artifacts attached to id.
func (c *Case) Artifacts(ctx context.Context, id ObjectID) ([]*Artifact, error) {
	const op = "artifacts"
	start := time.Now()
	if err := c.live(op, id, nil); err != nil {
		return nil, err
	}
	recs, err := c.repo.ListArtifacts(ctx, id)
	if err != nil {
		return nil, c.fail(op, id, nil, start, err)
	}
	artifacts := make([]*Artifact, 0, len(recs))
	for _, rec := range recs {
		artifacts = append(artifacts, newArtifact(c, rec))
	}
	c.observe(op, start, len(artifacts))
	return artifacts, nil
}

// AddObject validates and persists rec and returns the entity for it. When
// rec.ID is zero the repository assigns one and writes it back into rec. A
// malformed record is rejected with a *ConstructionError before anything is
// written.
func (c *Case) AddObject(ctx context.Context, rec *ObjectRecord) (Content, error) {
	const op = "add"
	start := time.Now()
	if err := c.live(op, rec.ID, nil); err != nil {
		return nil, err
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	if rec.ParentID != 0 {
		if _, err := c.repo.GetObject(ctx, rec.ParentID); err != nil {
			return nil, c.fail(op, rec.ID, nil, start, fmt.Errorf("parent %d: %w", rec.ParentID, err))
		}
	}
	if err := c.repo.CreateObject(ctx, rec); err != nil {
		return nil, c.fail(op, rec.ID, nil, start, err)
	}
	content, err := c.newContent(rec)
	if err != nil {
		return nil, c.fail(op, rec.ID, nil, start, err)
	}
	c.observe(op, start, 1)
	return content, nil
}

// AddArtifact persists an artifact for an existing object.
func (c *Case) AddArtifact(ctx context.Context, rec *ArtifactRecord) (*Artifact, error) {
	const op = "add_artifact"
	start := time.Now()
	if err := c.live(op, rec.ObjectID, nil); err != nil {
		return nil, err
	}
	if rec.ArtifactType == "" {
		return nil, &ConstructionError{ObjectID: rec.ObjectID, Field: "artifact_type", Reason: "empty type"}
	}
	if _, err := c.repo.GetObject(ctx, rec.ObjectID); err != nil {
		return nil, c.fail(op, rec.ObjectID, nil, start, err)
	}
	if err := c.repo.CreateArtifact(ctx, rec); err != nil {
		return nil, c.fail(op, rec.ObjectID, nil, start, err)
	}
	c.observe(op, start, 1)
	return newArtifact(c, rec), nil
}

// AddDerivedFile stores the bytes read from r in the blob store and adds
// rec as a derived or local file pointing at them. When rec has no
// LocalPath a key is generated. A zero Size is set to the number of bytes
// stored; any other Size must match it. If the row cannot be written the
// stored blob is removed again.
func (c *Case) AddDerivedFile(ctx context.Context, rec *ObjectRecord, r io.Reader) (*DerivedFile, error) {
	const op = "add_derived"
	start := time.Now()
	if err := c.live(op, rec.ID, nil); err != nil {
		return nil, err
	}
	if rec.Type != ObjectTypeFile || rec.File == nil ||
		(rec.File.FileType != FileTypeDerived && rec.File.FileType != FileTypeLocal) {
		return nil, &ConstructionError{ObjectID: rec.ID, Field: "file_type", Reason: "only derived and local files carry stored bytes"}
	}
	if c.blobs == nil {
		return nil, c.fail(op, rec.ID, nil, start, ErrNoBlobStore)
	}
	if rec.File.LocalPath == "" {
		rec.File.LocalPath = c.keys.GenerateKey(c.id, uuid.New(), &objectkey.KeyMetadata{
			FileName: rec.File.Name,
			FileType: string(rec.File.FileType),
			ParentID: int64(rec.ParentID),
		})
	}
	key := rec.File.LocalPath

	counter := &countingReader{r: r}
	if err := c.blobs.Upload(ctx, key, counter); err != nil {
		return nil, c.fail(op, rec.ID, nil, start, fmt.Errorf("upload %s: %w", key, err))
	}
	if rec.File.Size == 0 {
		rec.File.Size = counter.n
	}

	var (
		content Content
		err     error
	)
	if rec.File.Size != counter.n {
		err = &ConstructionError{ObjectID: rec.ID, Field: "size",
			Reason: fmt.Sprintf("recorded %d bytes, stored %d", rec.File.Size, counter.n)}
	} else {
		content, err = c.AddObject(ctx, rec)
	}
	if err != nil {
		if delErr := c.blobs.Delete(ctx, key); delErr != nil {
			c.logger.Warn("failed to remove orphaned blob", "key", key, "error", delErr)
		}
		return nil, err
	}
	c.observe(op, start, 1)
	return content.(*DerivedFile), nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}

// UniquePath builds the path of id by walking its ancestors up to the root:
// image and volume segments are prefixed ("img_", "vol_"), volume systems
// and file systems contribute nothing, files contribute their name.
func (c *Case) UniquePath(ctx context.Context, id ObjectID) (string, error) {
	const op = "path"
	start := time.Now()
	if err := c.live(op, id, nil); err != nil {
		return "", err
	}

	var segments []string
	seen := make(map[ObjectID]struct{})
	for cur := id; cur != 0; {
		if _, ok := seen[cur]; ok {
			return "", c.fail(op, id, nil, start,
				&ConstructionError{ObjectID: cur, Field: "par_obj_id", Reason: "parent cycle"})
		}
		seen[cur] = struct{}{}

		content, err := c.load(ctx, cur)
		if err != nil {
			return "", c.fail(op, id, nil, start, err)
		}
		if s := content.pathSegment(); s != "" {
			segments = append(segments, s)
		}
		cur = content.ParentID()
	}
	slices.Reverse(segments)
	c.observe(op, start, len(seen))
	return "/" + strings.Join(segments, "/"), nil
}

// blobStore returns the store holding the bytes of id under key.
func (c *Case) blobStore(op string, id ObjectID, key string, start time.Time) (BlobStore, error) {
	if err := c.live(op, id, nil); err != nil {
		return nil, err
	}
	if c.blobs == nil {
		return nil, c.fail(op, id, nil, start, ErrNoBlobStore)
	}
	if key == "" {
		return nil, c.fail(op, id, nil, start,
			&ConstructionError{ObjectID: id, Field: "local_path", Reason: "no blob key recorded"})
	}
	return c.blobs, nil
}

// openBlob opens the bytes of a derived or local file.
func (c *Case) openBlob(ctx context.Context, id ObjectID, key string) (io.ReadCloser, error) {
	const op = "open"
	start := time.Now()
	blobs, err := c.blobStore(op, id, key, start)
	if err != nil {
		return nil, err
	}
	r, err := blobs.Download(ctx, key)
	if err != nil {
		return nil, c.fail(op, id, nil, start, err)
	}
	c.observe(op, start, 1)
	return r, nil
}

func (c *Case) statBlob(ctx context.Context, id ObjectID, key string) (*ObjectMeta, error) {
	const op = "stat"
	start := time.Now()
	blobs, err := c.blobStore(op, id, key, start)
	if err != nil {
		return nil, err
	}
	meta, err := blobs.GetObjectMeta(ctx, key)
	if err != nil {
		return nil, c.fail(op, id, nil, start, err)
	}
	c.observe(op, start, 1)
	return meta, nil
}

// blobURL returns ErrNoDownloadURL unwrapped when the backend only serves
// bytes through Download.
func (c *Case) blobURL(ctx context.Context, id ObjectID, key, filename string) (string, error) {
	const op = "download_url"
	start := time.Now()
	blobs, err := c.blobStore(op, id, key, start)
	if err != nil {
		return "", err
	}
	u, err := blobs.GetDownloadURL(ctx, key, filename)
	if errors.Is(err, ErrNoDownloadURL) {
		return "", err
	}
	if err != nil {
		return "", c.fail(op, id, nil, start, err)
	}
	c.observe(op, start, 1)
	return u, nil
}

func (c *Case) load(ctx context.Context, id ObjectID) (Content, error) {
	rec, err := c.repo.GetObject(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.newContent(rec)
}

// newContent builds the entity variant matching a persisted row.
func (c *Case) newContent(rec *ObjectRecord) (Content, error) {
	if rec.ID <= 0 {
		return nil, &ConstructionError{ObjectID: rec.ID, Field: "obj_id", Reason: "object has no id"}
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	switch rec.Type {
	case ObjectTypeImage:
		return newImage(c, rec), nil
	case ObjectTypeVolumeSystem:
		return newVolumeSystem(c, rec), nil
	case ObjectTypeVolume:
		return newVolume(c, rec), nil
	case ObjectTypeFileSystem:
		return newFileSystem(c, rec), nil
	}

	switch rec.File.FileType {
	case FileTypeFS:
		if isDirRecord(rec.File) {
			return newDirectory(c, rec), nil
		}
		return newFile(c, rec), nil
	case FileTypeCarved, FileTypeUnallocBlocks, FileTypeUnusedBlocks:
		return newLayoutFile(c, rec), nil
	case FileTypeDerived, FileTypeLocal:
		return newDerivedFile(c, rec), nil
	case FileTypeVirtualDir:
		return newVirtualDirectory(c, rec), nil
	}
	return nil, &ConstructionError{ObjectID: rec.ID, Field: "file_type", Reason: "unsupported file type " + string(rec.File.FileType)}
}

// isDirRecord trusts the metadata type and falls back to the directory
// entry type when the metadata record is gone.
func isDirRecord(f *FileInfo) bool {
	if f.MetaType != MetaTypeUndef {
		return f.MetaType == MetaTypeDir
	}
	return f.NameType == NameTypeDir
}

func (c *Case) live(op string, id ObjectID, kinds []FileType) error {
	if !c.Closed() {
		return nil
	}
	err := &CoreAccessError{ObjectID: id, Op: op, Kinds: slices.Clone(kinds), Err: ErrCaseClosed}
	if c != nil && c.metrics != nil {
		c.metrics.ObserveResolution(op, 0, err)
	}
	return err
}

func (c *Case) fail(op string, id ObjectID, kinds []FileType, start time.Time, err error) error {
	if c.metrics != nil {
		c.metrics.ObserveResolution(op, time.Since(start), err)
	}
	var ce *ConstructionError
	if errors.As(err, &ce) {
		c.logger.Error("malformed object row", "op", op, "object_id", int64(id), "row_id", int64(ce.ObjectID), "field", ce.Field, "error", err)
	} else if !errors.Is(err, ErrObjectNotFound) {
		c.logger.Warn("case access failed", "op", op, "object_id", int64(id), "error", err)
	}
	return &CoreAccessError{ObjectID: id, Op: op, Kinds: slices.Clone(kinds), Err: err}
}

func (c *Case) observe(op string, start time.Time, count int) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveResolution(op, time.Since(start), nil)
	c.metrics.ObserveEntities(op, count)
}
