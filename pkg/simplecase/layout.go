package simplecase

import (
	"context"
	"fmt"
	"io"
	"slices"
)

// LayoutFile is a file not backed by a file-system entry: a carved file or
// a run of unallocated or unused blocks. Its bytes are the listed image
// ranges in sequence order.
type LayoutFile struct {
	abstractFile
	ranges []LayoutRange
}

func newLayoutFile(store *Case, rec *ObjectRecord) *LayoutFile {
	lf := &LayoutFile{ranges: slices.Clone(rec.File.Layout)}
	lf.abstractContent = abstractContent{id: rec.ID, parentID: rec.ParentID, name: rec.File.Name, store: store}
	lf.attrs = rec.File.FileAttributes
	slices.SortStableFunc(lf.ranges, func(a, b LayoutRange) int { return a.Sequence - b.Sequence })
	return lf
}

// Ranges returns the image byte runs of the file ordered by sequence.
func (lf *LayoutFile) Ranges() []LayoutRange {
	return slices.Clone(lf.ranges)
}

// RangesSize sums the lengths of the byte runs.
func (lf *LayoutFile) RangesSize() int64 {
	var n int64
	for _, r := range lf.ranges {
		n += r.ByteLen
	}
	return n
}

func (lf *LayoutFile) Accept(v ItemVisitor) error {
	return v.VisitLayoutFile(lf)
}

func (lf *LayoutFile) AcceptContent(v ContentVisitor) error {
	return v.VisitLayoutFile(lf)
}

func (lf *LayoutFile) Children(ctx context.Context) ([]Content, error) {
	return lf.derivedChildren(ctx)
}

func (lf *LayoutFile) ChildrenIDs(ctx context.Context) ([]ObjectID, error) {
	return lf.derivedChildrenIDs(ctx)
}

func (lf *LayoutFile) Describe(preserveState bool) string {
	return lf.abstractFile.describe(preserveState) + fmt.Sprintf("LayoutFile [\tranges %d]\t", len(lf.ranges))
}

func (lf *LayoutFile) String() string {
	return lf.Describe(false)
}

// DerivedFile is a file produced by post-processing another file, such as an
// archive member or an extracted attachment. Its bytes live in the case's
// blob store under LocalPath.
type DerivedFile struct {
	abstractFile
	localPath string
}

func newDerivedFile(store *Case, rec *ObjectRecord) *DerivedFile {
	df := &DerivedFile{localPath: rec.File.LocalPath}
	df.abstractContent = abstractContent{id: rec.ID, parentID: rec.ParentID, name: rec.File.Name, store: store}
	df.attrs = rec.File.FileAttributes
	return df
}

// LocalPath is the blob store key of the file's bytes.
func (df *DerivedFile) LocalPath() string { return df.localPath }

// Open returns a reader over the file's bytes. The caller closes it.
func (df *DerivedFile) Open(ctx context.Context) (io.ReadCloser, error) {
	return df.store.openBlob(ctx, df.id, df.localPath)
}

// Stat returns the size and type of the stored bytes, which may differ
// from the recorded Size of rows written outside AddDerivedFile.
func (df *DerivedFile) Stat(ctx context.Context) (*ObjectMeta, error) {
	return df.store.statBlob(ctx, df.id, df.localPath)
}

// DownloadURL returns a URL the bytes can be fetched from directly, or
// ErrNoDownloadURL when the blob store has none.
func (df *DerivedFile) DownloadURL(ctx context.Context) (string, error) {
	return df.store.blobURL(ctx, df.id, df.localPath, df.name)
}

func (df *DerivedFile) Accept(v ItemVisitor) error {
	return v.VisitDerivedFile(df)
}

func (df *DerivedFile) AcceptContent(v ContentVisitor) error {
	return v.VisitDerivedFile(df)
}

func (df *DerivedFile) Children(ctx context.Context) ([]Content, error) {
	return df.derivedChildren(ctx)
}

func (df *DerivedFile) ChildrenIDs(ctx context.Context) ([]ObjectID, error) {
	return df.derivedChildrenIDs(ctx)
}

func (df *DerivedFile) Describe(preserveState bool) string {
	return df.abstractFile.describe(preserveState) + fmt.Sprintf("DerivedFile [\tlocalPath %s]\t", df.localPath)
}

func (df *DerivedFile) String() string {
	return df.Describe(false)
}

// VirtualDirectory groups files that have no real parent directory, for
// example the carved files of a volume. Its children are every file row
// under it.
type VirtualDirectory struct {
	abstractFile
}

func newVirtualDirectory(store *Case, rec *ObjectRecord) *VirtualDirectory {
	vd := &VirtualDirectory{}
	vd.abstractContent = abstractContent{id: rec.ID, parentID: rec.ParentID, name: rec.File.Name, store: store}
	vd.attrs = rec.File.FileAttributes
	return vd
}

func (vd *VirtualDirectory) Accept(v ItemVisitor) error {
	return v.VisitVirtualDirectory(vd)
}

func (vd *VirtualDirectory) AcceptContent(v ContentVisitor) error {
	return v.VisitVirtualDirectory(vd)
}

func (vd *VirtualDirectory) Describe(preserveState bool) string {
	return vd.abstractFile.describe(preserveState) + "VirtualDirectory [\t]\t"
}

func (vd *VirtualDirectory) String() string {
	return vd.Describe(false)
}
