package simplecase

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Item is anything stored in a case that an ItemVisitor can visit.
type Item interface {
	// Accept calls the visitor method matching the item's concrete type.
	Accept(v ItemVisitor) error
}

// Content is a node of the case object tree: an image, volume system,
// volume, file system, directory or file.
//
// Content values are built by a Case from persisted rows and are read-only.
// Children and parents are not held in memory; every traversal call goes
// back to the case store. The set of implementations is closed.
type Content interface {
	Item

	ID() ObjectID
	ParentID() ObjectID
	Name() string
	Size() int64

	// Case returns the store the entity was loaded from. The entity must not
	// outlive it; after Case.Close every resolution call fails.
	Case() *Case

	// Children returns the children of this entity in store order.
	Children(ctx context.Context) ([]Content, error)

	// ChildrenIDs returns the IDs Children would return, in the same order.
	ChildrenIDs(ctx context.Context) ([]ObjectID, error)

	// Parent returns nil for root objects.
	Parent(ctx context.Context) (Content, error)

	// Artifacts returns the blackboard artifacts attached to this entity.
	Artifacts(ctx context.Context) ([]*Artifact, error)

	// UniquePath returns the slash-separated path of the entity from its
	// image, e.g. "/img_disk.E01/vol_2/Users/a.txt".
	UniquePath(ctx context.Context) (string, error)

	// AcceptContent calls the visitor method matching the concrete type.
	AcceptContent(v ContentVisitor) error

	// Describe renders the entity's attributes. With preserveState the
	// output also carries the state of the store handle.
	Describe(preserveState bool) string
	String() string

	// pathSegment is this entity's component of its unique path.
	pathSegment() string
}

// abstractContent holds what every content entity has: identity and a
// non-owning handle to the case it came from.
type abstractContent struct {
	id       ObjectID
	parentID ObjectID
	name     string
	store    *Case
}

func (c *abstractContent) ID() ObjectID { return c.id }
func (c *abstractContent) ParentID() ObjectID { return c.parentID }
func (c *abstractContent) Name() string { return c.name }
func (c *abstractContent) Case() *Case { return c.store }

// Children returns every child object.
func (c *abstractContent) Children(ctx context.Context) ([]Content, error) {
	return c.store.ResolveChildren(ctx, c.id)
}

// ChildrenIDs returns the IDs of every child object.
func (c *abstractContent) ChildrenIDs(ctx context.Context) ([]ObjectID, error) {
	return c.store.ResolveChildrenIDs(ctx, c.id)
}

func (c *abstractContent) Parent(ctx context.Context) (Content, error) {
	return c.store.parentOf(ctx, c.id, c.parentID)
}

func (c *abstractContent) Artifacts(ctx context.Context) ([]*Artifact, error) {
	return c.store.Artifacts(ctx, c.id)
}

func (c *abstractContent) UniquePath(ctx context.Context) (string, error) {
	return c.store.UniquePath(ctx, c.id)
}

func (c *abstractContent) describe(preserveState bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Content [\tobjID %d\tname %s\tparentID %d", c.id, c.name, c.parentID)
	if preserveState {
		if c.store == nil {
			b.WriteString("\tcase <nil>")
		} else {
			fmt.Fprintf(&b, "\tcase %s\tclosed %t", c.store.ID(), c.store.Closed())
		}
	}
	b.WriteString("]\t")
	return b.String()
}

// abstractFile is the base of every file-like entity, whether it lives in a
// parsed file system or was produced later (carved, derived, virtual).
type abstractFile struct {
	abstractContent
	attrs FileAttributes
}

func (f *abstractFile) Size() int64 { return f.attrs.Size }
func (f *abstractFile) FileType() FileType { return f.attrs.FileType }
func (f *abstractFile) NameType() NameType { return f.attrs.NameType }
func (f *abstractFile) MetaType() MetaType { return f.attrs.MetaType }
func (f *abstractFile) NameFlags() NameFlag { return f.attrs.NameFlags }
func (f *abstractFile) MetaFlags() MetaFlag { return f.attrs.MetaFlags }
func (f *abstractFile) MD5() string { return f.attrs.MD5 }
func (f *abstractFile) Known() KnownStatus { return f.attrs.Known }
func (f *abstractFile) ParentPath() string { return f.attrs.ParentPath }
func (f *abstractFile) Ctime() int64 { return f.attrs.Ctime }
func (f *abstractFile) Crtime() int64 { return f.attrs.Crtime }
func (f *abstractFile) Atime() int64 { return f.attrs.Atime }
func (f *abstractFile) Mtime() int64 { return f.attrs.Mtime }
func (f *abstractFile) ChangedAt() time.Time { return epochTime(f.attrs.Ctime) }
func (f *abstractFile) CreatedAt() time.Time { return epochTime(f.attrs.Crtime) }
func (f *abstractFile) AccessedAt() time.Time { return epochTime(f.attrs.Atime) }
func (f *abstractFile) ModifiedAt() time.Time { return epochTime(f.attrs.Mtime) }
func (f *abstractFile) Attributes() FileAttributes { return f.attrs }

// HasMD5 reports whether a digest was recorded for the file.
func (f *abstractFile) HasMD5() bool {
	return f.attrs.MD5 != ""
}

// IsDir reports whether the name or metadata layer marks this as a directory.
func (f *abstractFile) IsDir() bool {
	return f.attrs.MetaType == MetaTypeDir || f.attrs.NameType == NameTypeDir
}

// IsFile reports whether the entity is a regular file.
func (f *abstractFile) IsFile() bool {
	return f.attrs.MetaType == MetaTypeReg ||
		(f.attrs.MetaType == MetaTypeUndef && f.attrs.NameType == NameTypeReg)
}

// IsAllocated reports whether the directory entry is allocated.
func (f *abstractFile) IsAllocated() bool {
	return f.attrs.NameFlags == NameFlagAlloc
}

// derivedChildren resolves the post-processing children of a file. Files
// never have file-system children of their own.
func (f *abstractFile) derivedChildren(ctx context.Context) ([]Content, error) {
	return f.store.ResolveChildren(ctx, f.id, FileTypeDerived)
}

func (f *abstractFile) derivedChildrenIDs(ctx context.Context) ([]ObjectID, error) {
	return f.store.ResolveChildrenIDs(ctx, f.id, FileTypeDerived)
}

func (f *abstractFile) pathSegment() string { return f.attrs.Name }

func (f *abstractFile) describe(preserveState bool) string {
	var b strings.Builder
	b.WriteString(f.abstractContent.describe(preserveState))
	fmt.Fprintf(&b, "AbstractFile [\tfileType %s\tsize %d\tknown %s\tmd5 %s\tparentPath %s",
		f.attrs.FileType, f.attrs.Size, f.attrs.Known, f.attrs.MD5, f.attrs.ParentPath)
	fmt.Fprintf(&b, "\tdirType %s\tmetaType %s\tdirFlag %s\tmetaFlags %s",
		f.attrs.NameType, f.attrs.MetaType, f.attrs.NameFlags, f.attrs.MetaFlags)
	fmt.Fprintf(&b, "\tctime %d\tcrtime %d\tatime %d\tmtime %d]\t",
		f.attrs.Ctime, f.attrs.Crtime, f.attrs.Atime, f.attrs.Mtime)
	return b.String()
}
