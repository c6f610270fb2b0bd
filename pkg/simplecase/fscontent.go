package simplecase

import (
	"context"
	"fmt"
	"strings"
)

// fsContent is the base of entities read from a parsed file system. On top
// of the file attributes it exposes the file-system addressing: the metadata
// record (MetaAddr, MetaSeq) and the data stream within it (AttrType,
// AttrID). One metadata record may back several entities, one per stream.
type fsContent struct {
	abstractFile
}

func (f *fsContent) FileSystemID() ObjectID { return f.attrs.FileSystemID }
func (f *fsContent) AttrType() AttrType { return f.attrs.AttrType }
func (f *fsContent) AttrID() int { return f.attrs.AttrID }
func (f *fsContent) MetaAddr() int64 { return f.attrs.MetaAddr }
func (f *fsContent) MetaSeq() int { return f.attrs.MetaSeq }
func (f *fsContent) Mode() int { return f.attrs.Mode }
func (f *fsContent) UID() int { return f.attrs.UID }
func (f *fsContent) GID() int { return f.attrs.GID }

// FileSystem loads the file system the entity belongs to.
func (f *fsContent) FileSystem(ctx context.Context) (*FileSystem, error) {
	c, err := f.store.GetContentByID(ctx, f.attrs.FileSystemID)
	if err != nil {
		return nil, err
	}
	fs, ok := c.(*FileSystem)
	if !ok {
		return nil, &CoreAccessError{
			ObjectID: f.id,
			Op:       "file_system",
			Err: &ConstructionError{
				ObjectID: f.attrs.FileSystemID,
				Field:    "fs_obj_id",
				Reason:   fmt.Sprintf("object is a %T, not a file system", c),
			},
		}
	}
	return fs, nil
}

// ModeString renders the type and permission bits in ls(1) form, e.g.
// "r/rrwxr-xr-x".
func (f *fsContent) ModeString() string {
	var b strings.Builder
	b.WriteString(f.attrs.NameType.String())
	b.WriteByte('/')
	b.WriteString(f.attrs.MetaType.String())

	const perms = "rwxrwxrwx"
	mode := f.attrs.Mode
	for i := 0; i < 9; i++ {
		bit := 1 << uint(8-i)
		ch := byte('-')
		if mode&bit != 0 {
			ch = perms[i]
		}
		// setuid, setgid and sticky replace the execute slots
		switch {
		case i == 2 && mode&0o4000 != 0:
			ch = specialBit(ch, 's')
		case i == 5 && mode&0o2000 != 0:
			ch = specialBit(ch, 's')
		case i == 8 && mode&0o1000 != 0:
			ch = specialBit(ch, 't')
		}
		b.WriteByte(ch)
	}
	return b.String()
}

func specialBit(exec byte, set byte) byte {
	if exec == '-' {
		return set - 'a' + 'A'
	}
	return set
}

func (f *fsContent) describe(preserveState bool) string {
	return f.abstractFile.describe(preserveState) + fmt.Sprintf(
		"FsContent [\tfsObjID %d\tattrType %d\tattrID %d\tmetaAddr %d\tmetaSeq %d\tmode %o\tuid %d\tgid %d]\t",
		f.attrs.FileSystemID, f.attrs.AttrType, f.attrs.AttrID,
		f.attrs.MetaAddr, f.attrs.MetaSeq, f.attrs.Mode, f.attrs.UID, f.attrs.GID)
}
