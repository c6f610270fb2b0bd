package sqlite

import "github.com/tendant/simple-case/pkg/simplecase"

// objectRow is one row of tsk_objects. Volume-level info is stored as JSON
// in the column matching the object type; file rows live in tsk_files.
type objectRow struct {
	ObjID        int64                        `gorm:"column:obj_id;primaryKey;autoIncrement"`
	ParObjID     int64                        `gorm:"column:par_obj_id;index;not null;default:0"`
	Type         string                       `gorm:"column:type;size:32;not null"`
	Image        *simplecase.ImageInfo        `gorm:"column:image_info;serializer:json"`
	VolumeSystem *simplecase.VolumeSystemInfo `gorm:"column:vs_info;serializer:json"`
	Volume       *simplecase.VolumeInfo       `gorm:"column:vol_info;serializer:json"`
	FileSystem   *simplecase.FileSystemInfo   `gorm:"column:fs_info;serializer:json"`
}

func (objectRow) TableName() string { return "tsk_objects" }

// fileRow is one row of tsk_files, keyed by the object it describes.
type fileRow struct {
	ObjID      int64                    `gorm:"column:obj_id;primaryKey;autoIncrement:false"`
	FsObjID    int64                    `gorm:"column:fs_obj_id;index"`
	Type       string                   `gorm:"column:type;size:32;index;not null"`
	AttrType   int                      `gorm:"column:attr_type"`
	AttrID     int                      `gorm:"column:attr_id"`
	Name       string                   `gorm:"column:name;type:text"`
	MetaAddr   int64                    `gorm:"column:meta_addr"`
	MetaSeq    int                      `gorm:"column:meta_seq"`
	DirType    int                      `gorm:"column:dir_type"`
	MetaType   int                      `gorm:"column:meta_type"`
	DirFlags   int                      `gorm:"column:dir_flags"`
	MetaFlags  int                      `gorm:"column:meta_flags"`
	Size       int64                    `gorm:"column:size"`
	Ctime      int64                    `gorm:"column:ctime"`
	Crtime     int64                    `gorm:"column:crtime"`
	Atime      int64                    `gorm:"column:atime"`
	Mtime      int64                    `gorm:"column:mtime"`
	Mode       int                      `gorm:"column:mode"`
	UID        int                      `gorm:"column:uid"`
	GID        int                      `gorm:"column:gid"`
	MD5        string                   `gorm:"column:md5;size:32"`
	Known      string                   `gorm:"column:known;size:16"`
	ParentPath string                   `gorm:"column:parent_path;type:text"`
	Layout     []simplecase.LayoutRange `gorm:"column:layout;serializer:json"`
	LocalPath  string                   `gorm:"column:local_path;type:text"`
}

func (fileRow) TableName() string { return "tsk_files" }

// artifactRow is one row of blackboard_artifacts.
type artifactRow struct {
	ArtifactID   int64                          `gorm:"column:artifact_id;primaryKey;autoIncrement"`
	ObjID        int64                          `gorm:"column:obj_id;index;not null"`
	ArtifactType string                         `gorm:"column:artifact_type;size:128;not null"`
	Attributes   []simplecase.ArtifactAttribute `gorm:"column:attributes;serializer:json"`
}

func (artifactRow) TableName() string { return "blackboard_artifacts" }

func allModels() []any {
	return []any{&objectRow{}, &fileRow{}, &artifactRow{}}
}

func toObjectRow(rec *simplecase.ObjectRecord) *objectRow {
	return &objectRow{
		ObjID:        int64(rec.ID),
		ParObjID:     int64(rec.ParentID),
		Type:         string(rec.Type),
		Image:        rec.Image,
		VolumeSystem: rec.VolumeSystem,
		Volume:       rec.Volume,
		FileSystem:   rec.FileSystem,
	}
}

func toFileRow(id int64, f *simplecase.FileInfo) *fileRow {
	return &fileRow{
		ObjID:      id,
		FsObjID:    int64(f.FileSystemID),
		Type:       string(f.FileType),
		AttrType:   int(f.AttrType),
		AttrID:     f.AttrID,
		Name:       f.Name,
		MetaAddr:   f.MetaAddr,
		MetaSeq:    f.MetaSeq,
		DirType:    int(f.NameType),
		MetaType:   int(f.MetaType),
		DirFlags:   int(f.NameFlags),
		MetaFlags:  int(f.MetaFlags),
		Size:       f.Size,
		Ctime:      f.Ctime,
		Crtime:     f.Crtime,
		Atime:      f.Atime,
		Mtime:      f.Mtime,
		Mode:       f.Mode,
		UID:        f.UID,
		GID:        f.GID,
		MD5:        f.MD5,
		Known:      string(f.Known),
		ParentPath: f.ParentPath,
		Layout:     f.Layout,
		LocalPath:  f.LocalPath,
	}
}

func (o *objectRow) toRecord(f *fileRow) *simplecase.ObjectRecord {
	rec := &simplecase.ObjectRecord{
		ID:           simplecase.ObjectID(o.ObjID),
		ParentID:     simplecase.ObjectID(o.ParObjID),
		Type:         simplecase.ObjectType(o.Type),
		Image:        o.Image,
		VolumeSystem: o.VolumeSystem,
		Volume:       o.Volume,
		FileSystem:   o.FileSystem,
	}
	if f != nil {
		rec.File = f.toFileInfo()
	}
	return rec
}

func (f *fileRow) toFileInfo() *simplecase.FileInfo {
	return &simplecase.FileInfo{
		FileAttributes: simplecase.FileAttributes{
			FileSystemID: simplecase.ObjectID(f.FsObjID),
			FileType:     simplecase.FileType(f.Type),
			AttrType:     simplecase.AttrType(f.AttrType),
			AttrID:       f.AttrID,
			Name:         f.Name,
			MetaAddr:     f.MetaAddr,
			MetaSeq:      f.MetaSeq,
			NameType:     simplecase.NameType(f.DirType),
			MetaType:     simplecase.MetaType(f.MetaType),
			NameFlags:    simplecase.NameFlag(f.DirFlags),
			MetaFlags:    simplecase.MetaFlag(f.MetaFlags),
			Size:         f.Size,
			Ctime:        f.Ctime,
			Crtime:       f.Crtime,
			Atime:        f.Atime,
			Mtime:        f.Mtime,
			Mode:         f.Mode,
			UID:          f.UID,
			GID:          f.GID,
			MD5:          f.MD5,
			Known:        simplecase.KnownStatus(f.Known),
			ParentPath:   f.ParentPath,
		},
		Layout:    f.Layout,
		LocalPath: f.LocalPath,
	}
}
