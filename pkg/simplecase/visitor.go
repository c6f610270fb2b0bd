package simplecase

// ItemVisitor visits every kind of item a case holds: each content variant
// plus blackboard artifacts. Items dispatch with Accept, which calls exactly
// the method matching their concrete type.
type ItemVisitor interface {
	VisitImage(img *Image) error
	VisitVolumeSystem(vs *VolumeSystem) error
	VisitVolume(v *Volume) error
	VisitFileSystem(fs *FileSystem) error
	VisitDirectory(d *Directory) error
	VisitFile(f *File) error
	VisitLayoutFile(f *LayoutFile) error
	VisitDerivedFile(f *DerivedFile) error
	VisitVirtualDirectory(d *VirtualDirectory) error
	VisitArtifact(a *Artifact) error
}

// ContentVisitor visits content entities only. Content dispatches with
// AcceptContent.
type ContentVisitor interface {
	VisitImage(img *Image) error
	VisitVolumeSystem(vs *VolumeSystem) error
	VisitVolume(v *Volume) error
	VisitFileSystem(fs *FileSystem) error
	VisitDirectory(d *Directory) error
	VisitFile(f *File) error
	VisitLayoutFile(f *LayoutFile) error
	VisitDerivedFile(f *DerivedFile) error
	VisitVirtualDirectory(d *VirtualDirectory) error
}

// ContentFunc is a ContentVisitor that handles every variant with one
// function. Embed it in a struct to override selected variants.
type ContentFunc func(c Content) error

func (f ContentFunc) VisitImage(img *Image) error { return f(img) }
func (f ContentFunc) VisitVolumeSystem(vs *VolumeSystem) error { return f(vs) }
func (f ContentFunc) VisitVolume(v *Volume) error { return f(v) }
func (f ContentFunc) VisitFileSystem(fs *FileSystem) error { return f(fs) }
func (f ContentFunc) VisitDirectory(d *Directory) error { return f(d) }
func (f ContentFunc) VisitFile(file *File) error { return f(file) }
func (f ContentFunc) VisitLayoutFile(lf *LayoutFile) error { return f(lf) }
func (f ContentFunc) VisitDerivedFile(df *DerivedFile) error { return f(df) }
func (f ContentFunc) VisitVirtualDirectory(d *VirtualDirectory) error { return f(d) }

// ItemFunc is an ItemVisitor that handles every item with one function.
// Embed it in a struct to override selected variants.
type ItemFunc func(item Item) error

func (f ItemFunc) VisitImage(img *Image) error { return f(img) }
func (f ItemFunc) VisitVolumeSystem(vs *VolumeSystem) error { return f(vs) }
func (f ItemFunc) VisitVolume(v *Volume) error { return f(v) }
func (f ItemFunc) VisitFileSystem(fs *FileSystem) error { return f(fs) }
func (f ItemFunc) VisitDirectory(d *Directory) error { return f(d) }
func (f ItemFunc) VisitFile(file *File) error { return f(file) }
func (f ItemFunc) VisitLayoutFile(lf *LayoutFile) error { return f(lf) }
func (f ItemFunc) VisitDerivedFile(df *DerivedFile) error { return f(df) }
func (f ItemFunc) VisitVirtualDirectory(d *VirtualDirectory) error { return f(d) }
func (f ItemFunc) VisitArtifact(a *Artifact) error { return f(a) }

// Compile-time checks that the adapters cover every variant.
var (
	_ ContentVisitor = ContentFunc(nil)
	_ ItemVisitor    = ItemFunc(nil)
)
