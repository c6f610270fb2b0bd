package simplecase

import "slices"

const md5HexLen = 32

// Validate checks that the record can be turned into an entity.
func (r *ObjectRecord) Validate() error {
	if r.ID < 0 {
		return &ConstructionError{ObjectID: r.ID, Field: "obj_id", Reason: "negative id"}
	}
	if r.ParentID < 0 || (r.ParentID != 0 && r.ParentID == r.ID) {
		return &ConstructionError{ObjectID: r.ID, Field: "par_obj_id", Reason: "invalid parent"}
	}

	set := 0
	for _, p := range []bool{r.Image != nil, r.VolumeSystem != nil, r.Volume != nil, r.FileSystem != nil, r.File != nil} {
		if p {
			set++
		}
	}
	if set != 1 {
		return &ConstructionError{ObjectID: r.ID, Field: "type", Reason: "exactly one info record must be set"}
	}

	switch r.Type {
	case ObjectTypeImage:
		if r.Image == nil {
			return r.mismatch()
		}
	case ObjectTypeVolumeSystem:
		if r.VolumeSystem == nil {
			return r.mismatch()
		}
	case ObjectTypeVolume:
		if r.Volume == nil {
			return r.mismatch()
		}
	case ObjectTypeFileSystem:
		if r.FileSystem == nil {
			return r.mismatch()
		}
	case ObjectTypeFile:
		if r.File == nil {
			return r.mismatch()
		}
		return r.File.validate(r.ID)
	default:
		return &ConstructionError{ObjectID: r.ID, Field: "type", Reason: "unknown object type " + string(r.Type)}
	}
	return nil
}

func (r *ObjectRecord) mismatch() error {
	return &ConstructionError{ObjectID: r.ID, Field: "type", Reason: "info does not match type " + string(r.Type)}
}

func (f *FileInfo) validate(id ObjectID) error {
	if f.Size < 0 {
		return &ConstructionError{ObjectID: id, Field: "size", Reason: "negative size"}
	}
	if f.MD5 != "" && len(f.MD5) != md5HexLen {
		return &ConstructionError{ObjectID: id, Field: "md5", Reason: "digest must be 32 hex characters"}
	}
	switch f.FileType {
	case FileTypeFS, FileTypeCarved, FileTypeDerived, FileTypeLocal,
		FileTypeUnallocBlocks, FileTypeUnusedBlocks, FileTypeVirtualDir:
	default:
		return &ConstructionError{ObjectID: id, Field: "file_type", Reason: "unknown file type " + string(f.FileType)}
	}
	switch f.Known {
	case "", KnownStatusUnknown, KnownStatusKnown, KnownStatusKnownBad, KnownStatusNotSearched:
	default:
		return &ConstructionError{ObjectID: id, Field: "known", Reason: "unknown status " + string(f.Known)}
	}
	return nil
}

// Matches reports whether rec is selected by the params' FileTypes filter.
// The parent is not checked.
func (p ListChildrenParams) Matches(rec *ObjectRecord) bool {
	if len(p.FileTypes) == 0 {
		return true
	}
	if rec.Type != ObjectTypeFile || rec.File == nil {
		return false
	}
	return slices.Contains(p.FileTypes, rec.File.FileType)
}

// Clone returns a deep copy of the record.
func (r *ObjectRecord) Clone() *ObjectRecord {
	c := *r
	if r.Image != nil {
		img := *r.Image
		img.Paths = slices.Clone(r.Image.Paths)
		c.Image = &img
	}
	if r.VolumeSystem != nil {
		vs := *r.VolumeSystem
		c.VolumeSystem = &vs
	}
	if r.Volume != nil {
		v := *r.Volume
		c.Volume = &v
	}
	if r.FileSystem != nil {
		fs := *r.FileSystem
		c.FileSystem = &fs
	}
	if r.File != nil {
		f := *r.File
		f.Layout = slices.Clone(r.File.Layout)
		c.File = &f
	}
	return &c
}

// Clone returns a deep copy of the artifact record.
func (a *ArtifactRecord) Clone() *ArtifactRecord {
	c := *a
	c.Attributes = slices.Clone(a.Attributes)
	return &c
}
