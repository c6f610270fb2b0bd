package simplecase

import (
	"fmt"
	"slices"
	"strconv"
)

// volumeSectorSize is the unit of VolumeInfo.Start and VolumeInfo.Length.
const volumeSectorSize = 512

// Image is a disk image added to the case. Its children are the volume
// systems and file systems found in it.
type Image struct {
	abstractContent
	info ImageInfo
}

func newImage(store *Case, rec *ObjectRecord) *Image {
	info := *rec.Image
	info.Paths = slices.Clone(rec.Image.Paths)
	return &Image{
		abstractContent: abstractContent{id: rec.ID, parentID: rec.ParentID, name: info.Name, store: store},
		info:            info,
	}
}

func (i *Image) Size() int64 { return i.info.Size }
func (i *Image) Type() string { return i.info.Type }
func (i *Image) SectorSize() int64 { return i.info.SectorSize }
func (i *Image) TimeZone() string { return i.info.TimeZone }

// Paths returns the paths of the image segments.
func (i *Image) Paths() []string {
	return slices.Clone(i.info.Paths)
}

func (i *Image) Accept(v ItemVisitor) error { return v.VisitImage(i) }
func (i *Image) AcceptContent(v ContentVisitor) error { return v.VisitImage(i) }

func (i *Image) pathSegment() string { return "img_" + i.info.Name }

func (i *Image) Describe(preserveState bool) string {
	return i.abstractContent.describe(preserveState) + fmt.Sprintf(
		"Image [\ttype %s\tsectorSize %d\tsize %d\ttimeZone %s\tpaths %v]\t",
		i.info.Type, i.info.SectorSize, i.info.Size, i.info.TimeZone, i.info.Paths)
}

func (i *Image) String() string { return i.Describe(false) }

// VolumeSystem is a partition table inside an image.
type VolumeSystem struct {
	abstractContent
	info VolumeSystemInfo
}

func newVolumeSystem(store *Case, rec *ObjectRecord) *VolumeSystem {
	return &VolumeSystem{
		abstractContent: abstractContent{id: rec.ID, parentID: rec.ParentID, store: store},
		info:            *rec.VolumeSystem,
	}
}

// Size is always zero; a partition table has no content of its own.
func (vs *VolumeSystem) Size() int64 { return 0 }
func (vs *VolumeSystem) Type() string { return vs.info.Type }
func (vs *VolumeSystem) ImageOffset() int64 { return vs.info.ImageOffset }
func (vs *VolumeSystem) BlockSize() int64 { return vs.info.BlockSize }

func (vs *VolumeSystem) Accept(v ItemVisitor) error { return v.VisitVolumeSystem(vs) }
func (vs *VolumeSystem) AcceptContent(v ContentVisitor) error { return v.VisitVolumeSystem(vs) }

func (vs *VolumeSystem) pathSegment() string { return "" }

func (vs *VolumeSystem) Describe(preserveState bool) string {
	return vs.abstractContent.describe(preserveState) + fmt.Sprintf(
		"VolumeSystem [\ttype %s\timgOffset %d\tblockSize %d]\t",
		vs.info.Type, vs.info.ImageOffset, vs.info.BlockSize)
}

func (vs *VolumeSystem) String() string { return vs.Describe(false) }

// Volume is one partition of a volume system.
type Volume struct {
	abstractContent
	info VolumeInfo
}

func newVolume(store *Case, rec *ObjectRecord) *Volume {
	return &Volume{
		abstractContent: abstractContent{id: rec.ID, parentID: rec.ParentID, name: rec.Volume.Description, store: store},
		info:            *rec.Volume,
	}
}

// Size is the partition length in bytes.
func (v *Volume) Size() int64 { return v.info.Length * volumeSectorSize }
func (v *Volume) Addr() int64 { return v.info.Addr }
func (v *Volume) Start() int64 { return v.info.Start }
func (v *Volume) Length() int64 { return v.info.Length }
func (v *Volume) Flags() int { return v.info.Flags }
func (v *Volume) Description() string { return v.info.Description }

func (v *Volume) Accept(iv ItemVisitor) error { return iv.VisitVolume(v) }
func (v *Volume) AcceptContent(cv ContentVisitor) error { return cv.VisitVolume(v) }

func (v *Volume) pathSegment() string { return "vol_" + strconv.FormatInt(v.info.Addr, 10) }

func (v *Volume) Describe(preserveState bool) string {
	return v.abstractContent.describe(preserveState) + fmt.Sprintf(
		"Volume [\taddr %d\tstart %d\tlength %d\tflags %d\tdesc %s]\t",
		v.info.Addr, v.info.Start, v.info.Length, v.info.Flags, v.info.Description)
}

func (v *Volume) String() string { return v.Describe(false) }

// FileSystem is a parsed file system. Its child is the root directory.
type FileSystem struct {
	abstractContent
	info FileSystemInfo
}

func newFileSystem(store *Case, rec *ObjectRecord) *FileSystem {
	return &FileSystem{
		abstractContent: abstractContent{id: rec.ID, parentID: rec.ParentID, store: store},
		info:            *rec.FileSystem,
	}
}

// Size is the file system extent in bytes.
func (fs *FileSystem) Size() int64 { return fs.info.BlockSize * fs.info.BlockCount }
func (fs *FileSystem) Type() string { return fs.info.Type }
func (fs *FileSystem) ImageOffset() int64 { return fs.info.ImageOffset }
func (fs *FileSystem) BlockSize() int64 { return fs.info.BlockSize }
func (fs *FileSystem) BlockCount() int64 { return fs.info.BlockCount }
func (fs *FileSystem) RootInum() int64 { return fs.info.RootInum }
func (fs *FileSystem) FirstInum() int64 { return fs.info.FirstInum }
func (fs *FileSystem) LastInum() int64 { return fs.info.LastInum }

func (fs *FileSystem) Accept(v ItemVisitor) error { return v.VisitFileSystem(fs) }
func (fs *FileSystem) AcceptContent(v ContentVisitor) error { return v.VisitFileSystem(fs) }

func (fs *FileSystem) pathSegment() string { return "" }

func (fs *FileSystem) Describe(preserveState bool) string {
	return fs.abstractContent.describe(preserveState) + fmt.Sprintf(
		"FileSystem [\ttype %s\timgOffset %d\tblockSize %d\tblockCount %d\trootInum %d\tfirstInum %d\tlastInum %d]\t",
		fs.info.Type, fs.info.ImageOffset, fs.info.BlockSize, fs.info.BlockCount,
		fs.info.RootInum, fs.info.FirstInum, fs.info.LastInum)
}

func (fs *FileSystem) String() string { return fs.Describe(false) }
