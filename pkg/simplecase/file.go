package simplecase

import "context"

// File is a file-system file stream: allocated, unallocated or virtual. A
// File has no file-system children. Its only children are derived content
// produced by post-processing (extracted or carved sub-objects).
type File struct {
	fsContent
}

func newFile(store *Case, rec *ObjectRecord) *File {
	f := &File{}
	f.abstractContent = abstractContent{id: rec.ID, parentID: rec.ParentID, name: rec.File.Name, store: store}
	f.attrs = rec.File.FileAttributes
	return f
}

// Accept dispatches to v.VisitFile.
func (f *File) Accept(v ItemVisitor) error {
	return v.VisitFile(f)
}

// AcceptContent dispatches to v.VisitFile.
func (f *File) AcceptContent(v ContentVisitor) error {
	return v.VisitFile(f)
}

// Children returns the derived content of the file, ordered by ID.
func (f *File) Children(ctx context.Context) ([]Content, error) {
	return f.derivedChildren(ctx)
}

// ChildrenIDs returns the IDs of the derived content of the file.
func (f *File) ChildrenIDs(ctx context.Context) ([]ObjectID, error) {
	return f.derivedChildrenIDs(ctx)
}

func (f *File) Describe(preserveState bool) string {
	return f.fsContent.describe(preserveState) + "File [\t]\t"
}

func (f *File) String() string {
	return f.Describe(false)
}
