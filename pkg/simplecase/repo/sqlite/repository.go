// Package sqlite implements simplecase.Repository on a single-file SQLite
// case database through GORM.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tendant/simple-case/pkg/simplecase"
)

// Repository implements simplecase.Repository using GORM over SQLite
type Repository struct {
	db *gorm.DB
}

// Open opens (creating if needed) the case database at path and migrates
// the schema.
func Open(path string) (*Repository, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// WAL journal, 5s busy timeout, enforced foreign keys
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return New(db)
}

// New wraps an open GORM connection and migrates the schema.
func New(db *gorm.DB) (*Repository, error) {
	if err := db.AutoMigrate(allModels()...); err != nil {
		return nil, fmt.Errorf("failed to run database migration: %w", err)
	}
	return &Repository{db: db}, nil
}

// DB returns the underlying GORM connection.
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// Close releases the database connection.
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Object operations

func (r *Repository) CreateObject(ctx context.Context, rec *simplecase.ObjectRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		obj := toObjectRow(rec)
		if err := tx.Create(obj).Error; err != nil {
			return fmt.Errorf("failed to create object: %w", err)
		}
		if rec.File != nil {
			if err := tx.Create(toFileRow(obj.ObjID, rec.File)).Error; err != nil {
				return fmt.Errorf("failed to create file row: %w", err)
			}
		}
		rec.ID = simplecase.ObjectID(obj.ObjID)
		return nil
	})
}

func (r *Repository) GetObject(ctx context.Context, id simplecase.ObjectID) (*simplecase.ObjectRecord, error) {
	db := r.db.WithContext(ctx)

	var obj objectRow
	if err := db.Where("obj_id = ?", int64(id)).Take(&obj).Error; err != nil {
		return nil, convertNotFoundError(err)
	}
	if obj.Type != string(simplecase.ObjectTypeFile) {
		return obj.toRecord(nil), nil
	}

	var file fileRow
	if err := db.Where("obj_id = ?", obj.ObjID).Take(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// the case layer rejects a file object without attributes
			return obj.toRecord(nil), nil
		}
		return nil, fmt.Errorf("failed to get file row: %w", err)
	}
	return obj.toRecord(&file), nil
}

func (r *Repository) ListRootObjects(ctx context.Context) ([]*simplecase.ObjectRecord, error) {
	return r.ListChildren(ctx, simplecase.ListChildrenParams{ParentID: 0})
}

func (r *Repository) ListChildren(ctx context.Context, params simplecase.ListChildrenParams) ([]*simplecase.ObjectRecord, error) {
	var objs []objectRow
	if err := r.childQuery(ctx, params).Select("tsk_objects.*").Find(&objs).Error; err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}

	fileIDs := make([]int64, 0, len(objs))
	for _, o := range objs {
		if o.Type == string(simplecase.ObjectTypeFile) {
			fileIDs = append(fileIDs, o.ObjID)
		}
	}
	files := make(map[int64]*fileRow, len(fileIDs))
	if len(fileIDs) > 0 {
		var rows []fileRow
		if err := r.db.WithContext(ctx).Where("obj_id IN ?", fileIDs).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to load file rows: %w", err)
		}
		for i := range rows {
			files[rows[i].ObjID] = &rows[i]
		}
	}

	result := make([]*simplecase.ObjectRecord, 0, len(objs))
	for i := range objs {
		result = append(result, objs[i].toRecord(files[objs[i].ObjID]))
	}
	return result, nil
}

func (r *Repository) ListChildIDs(ctx context.Context, params simplecase.ListChildrenParams) ([]simplecase.ObjectID, error) {
	var ids []int64
	if err := r.childQuery(ctx, params).Pluck("tsk_objects.obj_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list child ids: %w", err)
	}
	result := make([]simplecase.ObjectID, len(ids))
	for i, id := range ids {
		result[i] = simplecase.ObjectID(id)
	}
	return result, nil
}

func (r *Repository) childQuery(ctx context.Context, params simplecase.ListChildrenParams) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&objectRow{}).Where("tsk_objects.par_obj_id = ?", int64(params.ParentID))
	if len(params.FileTypes) > 0 {
		kinds := make([]string, len(params.FileTypes))
		for i, k := range params.FileTypes {
			kinds[i] = string(k)
		}
		q = q.Joins("JOIN tsk_files ON tsk_files.obj_id = tsk_objects.obj_id").
			Where("tsk_files.type IN ?", kinds)
	}
	return q.Order("tsk_objects.obj_id")
}

// Artifact operations

func (r *Repository) CreateArtifact(ctx context.Context, rec *simplecase.ArtifactRecord) error {
	row := &artifactRow{
		ArtifactID:   rec.ArtifactID,
		ObjID:        int64(rec.ObjectID),
		ArtifactType: rec.ArtifactType,
		Attributes:   rec.Attributes,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to create artifact: %w", err)
	}
	rec.ArtifactID = row.ArtifactID
	return nil
}

func (r *Repository) ListArtifacts(ctx context.Context, objectID simplecase.ObjectID) ([]*simplecase.ArtifactRecord, error) {
	var rows []artifactRow
	if err := r.db.WithContext(ctx).Where("obj_id = ?", int64(objectID)).Order("artifact_id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	result := make([]*simplecase.ArtifactRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, &simplecase.ArtifactRecord{
			ArtifactID:   row.ArtifactID,
			ObjectID:     simplecase.ObjectID(row.ObjID),
			ArtifactType: row.ArtifactType,
			Attributes:   row.Attributes,
		})
	}
	return result, nil
}

// convertNotFoundError converts gorm.ErrRecordNotFound to the domain error.
func convertNotFoundError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return simplecase.ErrObjectNotFound
	}
	return err
}
