// Package report builds summaries of case content with visitors.
package report

import (
	"github.com/tendant/simple-case/pkg/simplecase"
)

// Kind names, one per item variant.
const (
	KindImage            = "image"
	KindVolumeSystem     = "volume_system"
	KindVolume           = "volume"
	KindFileSystem       = "file_system"
	KindDirectory        = "directory"
	KindFile             = "file"
	KindLayoutFile       = "layout_file"
	KindDerivedFile      = "derived_file"
	KindVirtualDirectory = "virtual_directory"
	KindArtifact         = "artifact"
)

// kindOf names the variant of an item.
type kindOf struct{ kind string }

func (k *kindOf) set(kind string) error {
	k.kind = kind
	return nil
}

func (k *kindOf) VisitImage(*simplecase.Image) error { return k.set(KindImage) }
func (k *kindOf) VisitVolumeSystem(*simplecase.VolumeSystem) error { return k.set(KindVolumeSystem) }
func (k *kindOf) VisitVolume(*simplecase.Volume) error { return k.set(KindVolume) }
func (k *kindOf) VisitFileSystem(*simplecase.FileSystem) error { return k.set(KindFileSystem) }
func (k *kindOf) VisitDirectory(*simplecase.Directory) error { return k.set(KindDirectory) }
func (k *kindOf) VisitFile(*simplecase.File) error { return k.set(KindFile) }
func (k *kindOf) VisitLayoutFile(*simplecase.LayoutFile) error { return k.set(KindLayoutFile) }
func (k *kindOf) VisitDerivedFile(*simplecase.DerivedFile) error { return k.set(KindDerivedFile) }
func (k *kindOf) VisitVirtualDirectory(*simplecase.VirtualDirectory) error { return k.set(KindVirtualDirectory) }
func (k *kindOf) VisitArtifact(*simplecase.Artifact) error { return k.set(KindArtifact) }

// Kind returns the kind name of item.
func Kind(item simplecase.Item) string {
	k := &kindOf{}
	_ = item.Accept(k)
	return k.kind
}

// KindCounter counts visited items per kind, artifacts included.
type KindCounter struct {
	Counts map[string]int
}

// NewKindCounter creates an empty counter.
func NewKindCounter() *KindCounter {
	return &KindCounter{Counts: make(map[string]int)}
}

func (c *KindCounter) add(kind string) error {
	c.Counts[kind]++
	return nil
}

func (c *KindCounter) VisitImage(*simplecase.Image) error { return c.add(KindImage) }
func (c *KindCounter) VisitVolumeSystem(*simplecase.VolumeSystem) error { return c.add(KindVolumeSystem) }
func (c *KindCounter) VisitVolume(*simplecase.Volume) error { return c.add(KindVolume) }
func (c *KindCounter) VisitFileSystem(*simplecase.FileSystem) error { return c.add(KindFileSystem) }
func (c *KindCounter) VisitDirectory(*simplecase.Directory) error { return c.add(KindDirectory) }
func (c *KindCounter) VisitFile(*simplecase.File) error { return c.add(KindFile) }
func (c *KindCounter) VisitLayoutFile(*simplecase.LayoutFile) error { return c.add(KindLayoutFile) }
func (c *KindCounter) VisitDerivedFile(*simplecase.DerivedFile) error { return c.add(KindDerivedFile) }
func (c *KindCounter) VisitVirtualDirectory(*simplecase.VirtualDirectory) error { return c.add(KindVirtualDirectory) }
func (c *KindCounter) VisitArtifact(*simplecase.Artifact) error { return c.add(KindArtifact) }

// Total returns the number of items counted.
func (c *KindCounter) Total() int {
	n := 0
	for _, v := range c.Counts {
		n += v
	}
	return n
}

// SizeSummer totals the bytes of file-like content. Containers are skipped:
// their size is the sum of what they hold, or a disk extent, and would
// count the same bytes twice.
type SizeSummer struct {
	simplecase.ContentFunc

	Bytes int64
	Files int
}

// NewSizeSummer creates a summer that ignores containers.
func NewSizeSummer() *SizeSummer {
	return &SizeSummer{ContentFunc: func(simplecase.Content) error { return nil }}
}

func (s *SizeSummer) add(size int64) error {
	s.Bytes += size
	s.Files++
	return nil
}

func (s *SizeSummer) VisitFile(f *simplecase.File) error { return s.add(f.Size()) }
func (s *SizeSummer) VisitLayoutFile(f *simplecase.LayoutFile) error { return s.add(f.Size()) }
func (s *SizeSummer) VisitDerivedFile(f *simplecase.DerivedFile) error { return s.add(f.Size()) }

var (
	_ simplecase.ItemVisitor    = (*KindCounter)(nil)
	_ simplecase.ContentVisitor = (*KindCounter)(nil)
	_ simplecase.ContentVisitor = (*SizeSummer)(nil)
)
