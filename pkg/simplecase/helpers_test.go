package simplecase_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-case/pkg/simplecase"
	"github.com/tendant/simple-case/pkg/simplecase/repo/memory"
)

const testMD5 = "0123456789abcdef0123456789abcdef"

var errStoreDown = errors.New("store unavailable")

// flakyRepository fails list and get calls while down is set.
type flakyRepository struct {
	*memory.Repository
	down atomic.Bool
}

func (r *flakyRepository) GetObject(ctx context.Context, id simplecase.ObjectID) (*simplecase.ObjectRecord, error) {
	if r.down.Load() {
		return nil, errStoreDown
	}
	return r.Repository.GetObject(ctx, id)
}

func (r *flakyRepository) ListChildren(ctx context.Context, params simplecase.ListChildrenParams) ([]*simplecase.ObjectRecord, error) {
	if r.down.Load() {
		return nil, errStoreDown
	}
	return r.Repository.ListChildren(ctx, params)
}

func (r *flakyRepository) ListChildIDs(ctx context.Context, params simplecase.ListChildrenParams) ([]simplecase.ObjectID, error) {
	if r.down.Load() {
		return nil, errStoreDown
	}
	return r.Repository.ListChildIDs(ctx, params)
}

func imageRecord(id simplecase.ObjectID, name string) *simplecase.ObjectRecord {
	return &simplecase.ObjectRecord{
		ID:   id,
		Type: simplecase.ObjectTypeImage,
		Image: &simplecase.ImageInfo{
			Name: name, Type: "ewf", SectorSize: 512, Size: 4 << 20, Paths: []string{"/evidence/" + name},
		},
	}
}

func fileRecord(id, parent simplecase.ObjectID, name string, ft simplecase.FileType, size int64) *simplecase.ObjectRecord {
	return &simplecase.ObjectRecord{
		ID:       id,
		ParentID: parent,
		Type:     simplecase.ObjectTypeFile,
		File: &simplecase.FileInfo{FileAttributes: simplecase.FileAttributes{
			FileSystemID: 4,
			FileType:     ft,
			AttrType:     simplecase.AttrTypeNTFSData,
			Name:         name,
			MetaAddr:     int64(id) + 1000,
			NameType:     simplecase.NameTypeReg,
			MetaType:     simplecase.MetaTypeReg,
			NameFlags:    simplecase.NameFlagAlloc,
			MetaFlags:    simplecase.MetaFlagAlloc | simplecase.MetaFlagUsed,
			Size:         size,
			Mode:         0o644,
			Known:        simplecase.KnownStatusUnknown,
		}},
	}
}

func dirRecord(id, parent simplecase.ObjectID, name string) *simplecase.ObjectRecord {
	rec := fileRecord(id, parent, name, simplecase.FileTypeFS, 0)
	rec.File.NameType = simplecase.NameTypeDir
	rec.File.MetaType = simplecase.MetaTypeDir
	rec.File.Mode = 0o755
	return rec
}

// buildTree populates repo with one image:
//
//	1 image disk.E01
//	└─ 2 volume system
//	   └─ 3 volume addr 2
//	      └─ 4 file system
//	         ├─ 5 root directory
//	         │  └─ 6 Users
//	         │     ├─ 42 report.zip (known, 1024 bytes)
//	         │     │  ├─ 99 carved
//	         │     │  ├─ 100 derived a.txt
//	         │     │  └─ 101 derived b.txt
//	         │     └─ 300 empty.txt
//	         └─ 200 $CarvedFiles
//	            └─ 201 f0000001.jpg
func buildTree(t *testing.T, repo simplecase.Repository) {
	t.Helper()
	ctx := context.Background()

	report := fileRecord(42, 6, "report.zip", simplecase.FileTypeFS, 1024)
	report.File.Known = simplecase.KnownStatusKnown
	report.File.MD5 = testMD5
	report.File.ParentPath = "/Users/"

	a := fileRecord(100, 42, "a.txt", simplecase.FileTypeDerived, 11)
	a.File.LocalPath = "derived/100/a.txt"
	b := fileRecord(101, 42, "b.txt", simplecase.FileTypeDerived, 5)
	b.File.LocalPath = "derived/101/b.txt"

	carved := fileRecord(99, 42, "f0000099.bin", simplecase.FileTypeCarved, 512)
	carved.File.Layout = []simplecase.LayoutRange{{ByteStart: 8192, ByteLen: 512}}

	vdir := fileRecord(200, 4, "$CarvedFiles", simplecase.FileTypeVirtualDir, 0)
	vdir.File.NameType = simplecase.NameTypeDir
	vdir.File.MetaType = simplecase.MetaTypeDir

	jpg := fileRecord(201, 200, "f0000001.jpg", simplecase.FileTypeCarved, 1536)
	jpg.File.Layout = []simplecase.LayoutRange{
		{ByteStart: 65536, ByteLen: 512, Sequence: 1},
		{ByteStart: 4096, ByteLen: 1024, Sequence: 0},
	}

	records := []*simplecase.ObjectRecord{
		imageRecord(1, "disk.E01"),
		{ID: 2, ParentID: 1, Type: simplecase.ObjectTypeVolumeSystem, VolumeSystem: &simplecase.VolumeSystemInfo{Type: "dos", BlockSize: 512}},
		{ID: 3, ParentID: 2, Type: simplecase.ObjectTypeVolume, Volume: &simplecase.VolumeInfo{Addr: 2, Start: 63, Length: 2048, Description: "NTFS (0x07)"}},
		{ID: 4, ParentID: 3, Type: simplecase.ObjectTypeFileSystem, FileSystem: &simplecase.FileSystemInfo{Type: "ntfs", ImageOffset: 32256, BlockSize: 4096, BlockCount: 256, RootInum: 5, FirstInum: 0, LastInum: 400}},
		dirRecord(5, 4, ""),
		dirRecord(6, 5, "Users"),
		report,
		carved,
		a,
		b,
		fileRecord(300, 6, "empty.txt", simplecase.FileTypeFS, 0),
		vdir,
		jpg,
	}
	for _, rec := range records {
		require.NoError(t, repo.CreateObject(ctx, rec))
	}
}

func openCase(t *testing.T, options ...simplecase.Option) (*simplecase.Case, *memory.Repository) {
	t.Helper()
	repo := memory.New()
	buildTree(t, repo)
	c, err := simplecase.Open(append([]simplecase.Option{simplecase.WithRepository(repo)}, options...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, repo
}

func mustGet[T simplecase.Content](t *testing.T, c *simplecase.Case, id simplecase.ObjectID) T {
	t.Helper()
	content, err := c.GetContentByID(context.Background(), id)
	require.NoError(t, err)
	typed, ok := content.(T)
	require.Truef(t, ok, "object %d is %T", id, content)
	return typed
}

func idsOf(contents []simplecase.Content) []simplecase.ObjectID {
	ids := make([]simplecase.ObjectID, 0, len(contents))
	for _, c := range contents {
		ids = append(ids, c.ID())
	}
	return ids
}
