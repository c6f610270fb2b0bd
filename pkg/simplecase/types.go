package simplecase

import (
	"fmt"
	"strings"
	"time"
)

// ObjectID identifies an object within a case. IDs are assigned by the
// repository and never reused. Zero means "no object".
type ObjectID int64

// ObjectType is the kind of a persisted object row.
type ObjectType string

// Object type constants (typed).
const (
	ObjectTypeImage        ObjectType = "image"
	ObjectTypeVolumeSystem ObjectType = "volume_system"
	ObjectTypeVolume       ObjectType = "volume"
	ObjectTypeFileSystem   ObjectType = "file_system"
	ObjectTypeFile         ObjectType = "file"
)

// FileType records how a file row came to exist in the case.
type FileType string

// File type constants (typed).
const (
	FileTypeFS            FileType = "fs"
	FileTypeCarved        FileType = "carved"
	FileTypeDerived       FileType = "derived"
	FileTypeLocal         FileType = "local"
	FileTypeUnallocBlocks FileType = "unalloc_blocks"
	FileTypeUnusedBlocks  FileType = "unused_blocks"
	FileTypeVirtualDir    FileType = "virtual_dir"
)

// KnownStatus classifies a file against a reference hash set.
type KnownStatus string

// Known status constants (typed).
const (
	KnownStatusUnknown     KnownStatus = "unknown"
	KnownStatusKnown       KnownStatus = "known"
	KnownStatusKnownBad    KnownStatus = "known_bad"
	KnownStatusNotSearched KnownStatus = "not_searched"
)

// AttrType is the file-system attribute type of a data stream.
type AttrType int

// Attribute types as reported by the parsing engine. NTFS values are the
// on-disk attribute type codes.
const (
	AttrTypeNotFound      AttrType = 0x00
	AttrTypeDefault       AttrType = 0x01
	AttrTypeNTFSSI        AttrType = 0x10
	AttrTypeNTFSAttrList  AttrType = 0x20
	AttrTypeNTFSFName     AttrType = 0x30
	AttrTypeNTFSObjID     AttrType = 0x40
	AttrTypeNTFSSec       AttrType = 0x50
	AttrTypeNTFSVName     AttrType = 0x60
	AttrTypeNTFSVInfo     AttrType = 0x70
	AttrTypeNTFSData      AttrType = 0x80
	AttrTypeNTFSIdxRoot   AttrType = 0x90
	AttrTypeNTFSIdxAlloc  AttrType = 0xA0
	AttrTypeNTFSBitmap    AttrType = 0xB0
	AttrTypeNTFSSymlnk    AttrType = 0xC0
	AttrTypeNTFSReparse   AttrType = 0xC0
	AttrTypeNTFSEAInfo    AttrType = 0xD0
	AttrTypeNTFSEA        AttrType = 0xE0
	AttrTypeNTFSProp      AttrType = 0xF0
	AttrTypeNTFSLog       AttrType = 0x100
	AttrTypeUnixIndir     AttrType = 0x1001
	AttrTypeUnixExtent    AttrType = 0x1002
)

// NameType is the type recorded in a directory entry.
type NameType int

// Name types.
const (
	NameTypeUndef NameType = iota
	NameTypeFIFO
	NameTypeChr
	NameTypeDir
	NameTypeBlk
	NameTypeReg
	NameTypeLnk
	NameTypeSock
	NameTypeShad
	NameTypeWht
	NameTypeVirt
)

var nameTypeLabels = [...]string{"-", "p", "c", "d", "b", "r", "l", "s", "h", "w", "v"}

func (t NameType) String() string {
	if t < 0 || int(t) >= len(nameTypeLabels) {
		return fmt.Sprintf("NameType(%d)", int(t))
	}
	return nameTypeLabels[t]
}

// MetaType is the type recorded in a metadata (inode) record.
type MetaType int

// Metadata types.
const (
	MetaTypeUndef MetaType = iota
	MetaTypeReg
	MetaTypeDir
	MetaTypeFIFO
	MetaTypeChr
	MetaTypeBlk
	MetaTypeLnk
	MetaTypeShad
	MetaTypeSock
	MetaTypeWht
	MetaTypeVirt
)

var metaTypeLabels = [...]string{"-", "r", "d", "p", "c", "b", "l", "h", "s", "w", "v"}

func (t MetaType) String() string {
	if t < 0 || int(t) >= len(metaTypeLabels) {
		return fmt.Sprintf("MetaType(%d)", int(t))
	}
	return metaTypeLabels[t]
}

// NameFlag is the allocation state of a directory entry.
type NameFlag int

// Name flags.
const (
	NameFlagAlloc   NameFlag = 1
	NameFlagUnalloc NameFlag = 2
)

func (f NameFlag) String() string {
	switch f {
	case NameFlagAlloc:
		return "Allocated"
	case NameFlagUnalloc:
		return "Unallocated"
	default:
		return fmt.Sprintf("NameFlag(%d)", int(f))
	}
}

// MetaFlag is a bit set describing the state of a metadata record.
type MetaFlag int

// Metadata flag bits.
const (
	MetaFlagAlloc   MetaFlag = 0x01
	MetaFlagUnalloc MetaFlag = 0x02
	MetaFlagUsed    MetaFlag = 0x04
	MetaFlagUnused  MetaFlag = 0x08
	MetaFlagComp    MetaFlag = 0x10
	MetaFlagOrphan  MetaFlag = 0x20
)

var metaFlagLabels = []struct {
	flag  MetaFlag
	label string
}{
	{MetaFlagAlloc, "Allocated"},
	{MetaFlagUnalloc, "Unallocated"},
	{MetaFlagUsed, "Used"},
	{MetaFlagUnused, "Unused"},
	{MetaFlagComp, "Compressed"},
	{MetaFlagOrphan, "Orphan"},
}

// Has reports whether every bit of flag is set.
func (f MetaFlag) Has(flag MetaFlag) bool {
	return f&flag == flag
}

// String renders the set bits in a fixed order, separated by " | ".
func (f MetaFlag) String() string {
	var parts []string
	for _, l := range metaFlagLabels {
		if f.Has(l.flag) {
			parts = append(parts, l.label)
		}
	}
	return strings.Join(parts, " | ")
}

// FileAttributes is the metadata a file-like entity carries from its row.
// Timestamps are epoch seconds; zero means the value was not recorded.
type FileAttributes struct {
	FileSystemID ObjectID    `json:"fs_obj_id,omitempty"`
	FileType     FileType    `json:"file_type"`
	AttrType     AttrType    `json:"attr_type"`
	AttrID       int         `json:"attr_id"`
	Name         string      `json:"name"`
	MetaAddr     int64       `json:"meta_addr"`
	MetaSeq      int         `json:"meta_seq"`
	NameType     NameType    `json:"dir_type"`
	MetaType     MetaType    `json:"meta_type"`
	NameFlags    NameFlag    `json:"dir_flags"`
	MetaFlags    MetaFlag    `json:"meta_flags"`
	Size         int64       `json:"size"`
	Ctime        int64       `json:"ctime"`
	Crtime       int64       `json:"crtime"`
	Atime        int64       `json:"atime"`
	Mtime        int64       `json:"mtime"`
	Mode         int         `json:"mode"`
	UID          int         `json:"uid"`
	GID          int         `json:"gid"`
	MD5          string      `json:"md5,omitempty"`
	Known        KnownStatus `json:"known"`
	ParentPath   string      `json:"parent_path"`
}

// LayoutRange is one contiguous run of bytes in the image that makes up part
// of a layout file.
type LayoutRange struct {
	ByteStart int64 `json:"byte_start"`
	ByteLen   int64 `json:"byte_len"`
	Sequence  int   `json:"sequence"`
}

// ImageInfo describes a disk image.
type ImageInfo struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	SectorSize int64    `json:"sector_size"`
	Size       int64    `json:"size"`
	TimeZone   string   `json:"time_zone,omitempty"`
	Paths      []string `json:"paths,omitempty"`
}

// VolumeSystemInfo describes a partition table.
type VolumeSystemInfo struct {
	Type        string `json:"type"`
	ImageOffset int64  `json:"image_offset"`
	BlockSize   int64  `json:"block_size"`
}

// VolumeInfo describes a single partition.
type VolumeInfo struct {
	Addr        int64  `json:"addr"`
	Start       int64  `json:"start"`
	Length      int64  `json:"length"`
	Flags       int    `json:"flags"`
	Description string `json:"description,omitempty"`
}

// FileSystemInfo describes a parsed file system.
type FileSystemInfo struct {
	Type        string `json:"type"`
	ImageOffset int64  `json:"image_offset"`
	BlockSize   int64  `json:"block_size"`
	BlockCount  int64  `json:"block_count"`
	RootInum    int64  `json:"root_inum"`
	FirstInum   int64  `json:"first_inum"`
	LastInum    int64  `json:"last_inum"`
}

// FileInfo is the row payload of a file object.
type FileInfo struct {
	FileAttributes

	// Layout lists the image byte runs of carved and unallocated-block files.
	Layout []LayoutRange `json:"layout,omitempty"`

	// LocalPath is the blob store key holding a derived or local file's bytes.
	LocalPath string `json:"local_path,omitempty"`
}

// ObjectRecord is one persisted object row. Exactly one of the info pointers
// is set, matching Type.
type ObjectRecord struct {
	ID       ObjectID   `json:"obj_id"`
	ParentID ObjectID   `json:"par_obj_id,omitempty"`
	Type     ObjectType `json:"type"`

	Image        *ImageInfo        `json:"image,omitempty"`
	VolumeSystem *VolumeSystemInfo `json:"volume_system,omitempty"`
	Volume       *VolumeInfo       `json:"volume,omitempty"`
	FileSystem   *FileSystemInfo   `json:"file_system,omitempty"`
	File         *FileInfo         `json:"file,omitempty"`
}

// ArtifactAttribute is a typed value attached to an artifact.
type ArtifactAttribute struct {
	Type   string `json:"type"`
	Value  string `json:"value"`
	Source string `json:"source,omitempty"`
}

// ArtifactRecord is a persisted blackboard artifact row.
type ArtifactRecord struct {
	ArtifactID   int64               `json:"artifact_id"`
	ObjectID     ObjectID            `json:"obj_id"`
	ArtifactType string              `json:"artifact_type"`
	Attributes   []ArtifactAttribute `json:"attributes,omitempty"`
}

// ListChildrenParams selects the children of one parent object.
type ListChildrenParams struct {
	ParentID ObjectID

	// FileTypes restricts the result to file rows of the listed types.
	// When empty every child object is returned.
	FileTypes []FileType
}

// epochTime converts epoch seconds into a UTC time. Zero stays the zero Time.
func epochTime(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
