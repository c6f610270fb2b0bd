package report

import (
	"github.com/tendant/simple-case/pkg/simplecase"
)

// Record is the flat interchange form of a content entity, used by the HTTP
// API and the command line tools.
type Record struct {
	ID       simplecase.ObjectID `json:"id"`
	ParentID simplecase.ObjectID `json:"parent_id,omitempty"`
	Kind     string              `json:"kind"`
	Name     string              `json:"name"`
	Size     int64               `json:"size"`

	// Container details.
	Type        string `json:"type,omitempty"`
	ImageOffset int64  `json:"image_offset,omitempty"`
	BlockSize   int64  `json:"block_size,omitempty"`
	Addr        int64  `json:"addr,omitempty"`

	// File details.
	FileType  simplecase.FileType    `json:"file_type,omitempty"`
	Known     simplecase.KnownStatus `json:"known,omitempty"`
	MD5       string                 `json:"md5,omitempty"`
	Mode      string                 `json:"mode,omitempty"`
	MetaAddr  int64                  `json:"meta_addr,omitempty"`
	Allocated *bool                  `json:"allocated,omitempty"`
	LocalPath string                 `json:"local_path,omitempty"`
	Ranges    int                    `json:"ranges,omitempty"`
}

// NewRecord converts content to a Record.
func NewRecord(c simplecase.Content) Record {
	b := &recordBuilder{rec: Record{
		ID:       c.ID(),
		ParentID: c.ParentID(),
		Name:     c.Name(),
		Size:     c.Size(),
	}}
	_ = c.AcceptContent(b)
	return b.rec
}

// NewRecords converts a list of content.
func NewRecords(cs []simplecase.Content) []Record {
	out := make([]Record, 0, len(cs))
	for _, c := range cs {
		out = append(out, NewRecord(c))
	}
	return out
}

type recordBuilder struct {
	rec Record
}

type fileLike interface {
	FileType() simplecase.FileType
	Known() simplecase.KnownStatus
	MD5() string
	IsAllocated() bool
}

func (b *recordBuilder) file(kind string, f fileLike) {
	b.rec.Kind = kind
	b.rec.FileType = f.FileType()
	b.rec.Known = f.Known()
	b.rec.MD5 = f.MD5()
	alloc := f.IsAllocated()
	b.rec.Allocated = &alloc
}

func (b *recordBuilder) VisitImage(img *simplecase.Image) error {
	b.rec.Kind = KindImage
	b.rec.Type = img.Type()
	return nil
}

func (b *recordBuilder) VisitVolumeSystem(vs *simplecase.VolumeSystem) error {
	b.rec.Kind = KindVolumeSystem
	b.rec.Type = vs.Type()
	b.rec.ImageOffset = vs.ImageOffset()
	b.rec.BlockSize = vs.BlockSize()
	return nil
}

func (b *recordBuilder) VisitVolume(v *simplecase.Volume) error {
	b.rec.Kind = KindVolume
	b.rec.Addr = v.Addr()
	return nil
}

func (b *recordBuilder) VisitFileSystem(fs *simplecase.FileSystem) error {
	b.rec.Kind = KindFileSystem
	b.rec.Type = fs.Type()
	b.rec.ImageOffset = fs.ImageOffset()
	b.rec.BlockSize = fs.BlockSize()
	return nil
}

func (b *recordBuilder) VisitDirectory(d *simplecase.Directory) error {
	b.file(KindDirectory, d)
	b.rec.Mode = d.ModeString()
	b.rec.MetaAddr = d.MetaAddr()
	return nil
}

func (b *recordBuilder) VisitFile(f *simplecase.File) error {
	b.file(KindFile, f)
	b.rec.Mode = f.ModeString()
	b.rec.MetaAddr = f.MetaAddr()
	return nil
}

func (b *recordBuilder) VisitLayoutFile(f *simplecase.LayoutFile) error {
	b.file(KindLayoutFile, f)
	b.rec.Ranges = len(f.Ranges())
	return nil
}

func (b *recordBuilder) VisitDerivedFile(f *simplecase.DerivedFile) error {
	b.file(KindDerivedFile, f)
	b.rec.LocalPath = f.LocalPath()
	return nil
}

func (b *recordBuilder) VisitVirtualDirectory(d *simplecase.VirtualDirectory) error {
	b.file(KindVirtualDirectory, d)
	return nil
}

// ArtifactRecord is the interchange form of an artifact.
type ArtifactRecord struct {
	ID         int64                          `json:"id"`
	ObjectID   simplecase.ObjectID            `json:"object_id"`
	Type       string                         `json:"type"`
	Attributes []simplecase.ArtifactAttribute `json:"attributes"`
}

// NewArtifactRecords converts artifacts.
func NewArtifactRecords(as []*simplecase.Artifact) []ArtifactRecord {
	out := make([]ArtifactRecord, 0, len(as))
	for _, a := range as {
		out = append(out, ArtifactRecord{
			ID:         a.ID(),
			ObjectID:   a.ObjectID(),
			Type:       a.Type(),
			Attributes: a.Attributes(),
		})
	}
	return out
}
