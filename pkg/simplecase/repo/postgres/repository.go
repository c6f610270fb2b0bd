package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/simple-case/pkg/simplecase"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements simplecase.Repository using PostgreSQL
type Repository struct {
	db   DBTX
	pool *pgxpool.Pool
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool.
// Closing the repository closes the pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool, pool: pool}
}

// Close releases the connection pool when the repository owns one.
func (r *Repository) Close() error {
	if r.pool != nil {
		r.pool.Close()
	}
	return nil
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("object already exists")
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: %w", operation, simplecase.ErrObjectNotFound)
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return simplecase.ErrObjectNotFound
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

const fileColumns = `obj_id, fs_obj_id, type, attr_type, attr_id, name, meta_addr, meta_seq,
	dir_type, meta_type, dir_flags, meta_flags, size, ctime, crtime, atime, mtime,
	mode, uid, gid, md5, known, parent_path, layout, local_path`

// Object operations

func (r *Repository) CreateObject(ctx context.Context, rec *simplecase.ObjectRecord) error {
	info, err := encodeInfo(rec)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tsk_objects (obj_id, par_obj_id, type, info)
		VALUES (COALESCE(NULLIF($1::bigint, 0), nextval(pg_get_serial_sequence('tsk_objects', 'obj_id'))), $2, $3, $4)
		RETURNING obj_id`
	args := []interface{}{int64(rec.ID), int64(rec.ParentID), string(rec.Type), info}

	if f := rec.File; f != nil {
		// one statement keeps the object and file rows atomic without a tx
		query = `
		WITH o AS (
			INSERT INTO tsk_objects (obj_id, par_obj_id, type, info)
			VALUES (COALESCE(NULLIF($1::bigint, 0), nextval(pg_get_serial_sequence('tsk_objects', 'obj_id'))), $2, $3, $4)
			RETURNING obj_id
		)
		INSERT INTO tsk_files (` + fileColumns + `)
		SELECT obj_id, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28 FROM o
		RETURNING obj_id`
		layout, err := json.Marshal(f.Layout)
		if err != nil {
			return fmt.Errorf("encode layout: %w", err)
		}
		args = append(args,
			int64(f.FileSystemID), string(f.FileType), int(f.AttrType), f.AttrID, f.Name,
			f.MetaAddr, f.MetaSeq, int(f.NameType), int(f.MetaType), int(f.NameFlags), int(f.MetaFlags),
			f.Size, f.Ctime, f.Crtime, f.Atime, f.Mtime, f.Mode, f.UID, f.GID,
			f.MD5, string(f.Known), f.ParentPath, layout, f.LocalPath)
	}

	var id int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return r.handlePostgresError("create object", err)
	}

	if rec.ID != 0 {
		// explicit ids bypass the sequence; move it past them
		_, err := r.db.Exec(ctx, `SELECT setval(pg_get_serial_sequence('tsk_objects', 'obj_id'),
			GREATEST((SELECT MAX(obj_id) FROM tsk_objects), 1))`)
		if err != nil {
			return r.handlePostgresError("advance object sequence", err)
		}
	}
	rec.ID = simplecase.ObjectID(id)
	return nil
}

func (r *Repository) GetObject(ctx context.Context, id simplecase.ObjectID) (*simplecase.ObjectRecord, error) {
	query := `SELECT obj_id, par_obj_id, type, info FROM tsk_objects WHERE obj_id = $1`

	rec, err := scanObject(r.db.QueryRow(ctx, query, int64(id)))
	if err != nil {
		return nil, r.handlePostgresError("get object", err)
	}
	if rec.Type != simplecase.ObjectTypeFile {
		return rec, nil
	}

	files, err := r.loadFiles(ctx, []int64{int64(id)})
	if err != nil {
		return nil, err
	}
	rec.File = files[int64(id)]
	return rec, nil
}

func (r *Repository) ListRootObjects(ctx context.Context) ([]*simplecase.ObjectRecord, error) {
	return r.ListChildren(ctx, simplecase.ListChildrenParams{ParentID: 0})
}

func (r *Repository) ListChildren(ctx context.Context, params simplecase.ListChildrenParams) ([]*simplecase.ObjectRecord, error) {
	where, args := childFilter(params)
	rows, err := r.db.Query(ctx, `SELECT o.obj_id, o.par_obj_id, o.type, o.info FROM tsk_objects o `+where+` ORDER BY o.obj_id`, args...)
	if err != nil {
		return nil, r.handlePostgresError("list children", err)
	}
	defer rows.Close()

	result := make([]*simplecase.ObjectRecord, 0)
	var fileIDs []int64
	for rows.Next() {
		rec, err := scanObject(rows)
		if err != nil {
			return nil, r.handlePostgresError("scan child", err)
		}
		if rec.Type == simplecase.ObjectTypeFile {
			fileIDs = append(fileIDs, int64(rec.ID))
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list children", err)
	}

	if len(fileIDs) > 0 {
		files, err := r.loadFiles(ctx, fileIDs)
		if err != nil {
			return nil, err
		}
		for _, rec := range result {
			if rec.Type == simplecase.ObjectTypeFile {
				rec.File = files[int64(rec.ID)]
			}
		}
	}
	return result, nil
}

func (r *Repository) ListChildIDs(ctx context.Context, params simplecase.ListChildrenParams) ([]simplecase.ObjectID, error) {
	where, args := childFilter(params)
	rows, err := r.db.Query(ctx, `SELECT o.obj_id FROM tsk_objects o `+where+` ORDER BY o.obj_id`, args...)
	if err != nil {
		return nil, r.handlePostgresError("list child ids", err)
	}
	defer rows.Close()

	result := make([]simplecase.ObjectID, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, r.handlePostgresError("scan child id", err)
		}
		result = append(result, simplecase.ObjectID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list child ids", err)
	}
	return result, nil
}

func childFilter(params simplecase.ListChildrenParams) (string, []interface{}) {
	if len(params.FileTypes) == 0 {
		return `WHERE o.par_obj_id = $1`, []interface{}{int64(params.ParentID)}
	}
	kinds := make([]string, len(params.FileTypes))
	for i, k := range params.FileTypes {
		kinds[i] = string(k)
	}
	return `WHERE o.par_obj_id = $1 AND EXISTS (
		SELECT 1 FROM tsk_files f WHERE f.obj_id = o.obj_id AND f.type = ANY($2))`,
		[]interface{}{int64(params.ParentID), kinds}
}

func (r *Repository) loadFiles(ctx context.Context, ids []int64) (map[int64]*simplecase.FileInfo, error) {
	rows, err := r.db.Query(ctx, `SELECT `+fileColumns+` FROM tsk_files WHERE obj_id = ANY($1)`, ids)
	if err != nil {
		return nil, r.handlePostgresError("load files", err)
	}
	defer rows.Close()

	files := make(map[int64]*simplecase.FileInfo, len(ids))
	for rows.Next() {
		var (
			id                                     int64
			fsID                                   int64
			fileType, md5, known, parentPath, path string
			name                                   string
			attrType, dirType, metaType            int
			dirFlags, metaFlags                    int
			layout                                 []byte
			f                                      simplecase.FileInfo
		)
		err := rows.Scan(&id, &fsID, &fileType, &attrType, &f.AttrID, &name, &f.MetaAddr, &f.MetaSeq,
			&dirType, &metaType, &dirFlags, &metaFlags, &f.Size, &f.Ctime, &f.Crtime, &f.Atime, &f.Mtime,
			&f.Mode, &f.UID, &f.GID, &md5, &known, &parentPath, &layout, &path)
		if err != nil {
			return nil, r.handlePostgresError("scan file", err)
		}
		f.FileSystemID = simplecase.ObjectID(fsID)
		f.FileType = simplecase.FileType(fileType)
		f.AttrType = simplecase.AttrType(attrType)
		f.Name = name
		f.NameType = simplecase.NameType(dirType)
		f.MetaType = simplecase.MetaType(metaType)
		f.NameFlags = simplecase.NameFlag(dirFlags)
		f.MetaFlags = simplecase.MetaFlag(metaFlags)
		f.MD5 = md5
		f.Known = simplecase.KnownStatus(known)
		f.ParentPath = parentPath
		f.LocalPath = path
		if len(layout) > 0 {
			if err := json.Unmarshal(layout, &f.Layout); err != nil {
				return nil, fmt.Errorf("decode layout of object %d: %w", id, err)
			}
		}
		files[id] = &f
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("load files", err)
	}
	return files, nil
}

// Artifact operations

func (r *Repository) CreateArtifact(ctx context.Context, rec *simplecase.ArtifactRecord) error {
	attrs, err := json.Marshal(rec.Attributes)
	if err != nil {
		return fmt.Errorf("encode attributes: %w", err)
	}
	query := `
		INSERT INTO blackboard_artifacts (artifact_id, obj_id, artifact_type, attributes)
		VALUES (COALESCE(NULLIF($1::bigint, 0), nextval(pg_get_serial_sequence('blackboard_artifacts', 'artifact_id'))), $2, $3, $4)
		RETURNING artifact_id`
	if err := r.db.QueryRow(ctx, query, rec.ArtifactID, int64(rec.ObjectID), rec.ArtifactType, attrs).Scan(&rec.ArtifactID); err != nil {
		return r.handlePostgresError("create artifact", err)
	}
	return nil
}

func (r *Repository) ListArtifacts(ctx context.Context, objectID simplecase.ObjectID) ([]*simplecase.ArtifactRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT artifact_id, obj_id, artifact_type, attributes
		FROM blackboard_artifacts WHERE obj_id = $1 ORDER BY artifact_id`, int64(objectID))
	if err != nil {
		return nil, r.handlePostgresError("list artifacts", err)
	}
	defer rows.Close()

	result := make([]*simplecase.ArtifactRecord, 0)
	for rows.Next() {
		var (
			a     simplecase.ArtifactRecord
			objID int64
			attrs []byte
		)
		if err := rows.Scan(&a.ArtifactID, &objID, &a.ArtifactType, &attrs); err != nil {
			return nil, r.handlePostgresError("scan artifact", err)
		}
		a.ObjectID = simplecase.ObjectID(objID)
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &a.Attributes); err != nil {
				return nil, fmt.Errorf("decode attributes of artifact %d: %w", a.ArtifactID, err)
			}
		}
		result = append(result, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list artifacts", err)
	}
	return result, nil
}

func encodeInfo(rec *simplecase.ObjectRecord) ([]byte, error) {
	var info interface{}
	switch rec.Type {
	case simplecase.ObjectTypeImage:
		info = rec.Image
	case simplecase.ObjectTypeVolumeSystem:
		info = rec.VolumeSystem
	case simplecase.ObjectTypeVolume:
		info = rec.Volume
	case simplecase.ObjectTypeFileSystem:
		info = rec.FileSystem
	default:
		return nil, nil
	}
	data, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("encode %s info: %w", rec.Type, err)
	}
	return data, nil
}

func scanObject(row pgx.Row) (*simplecase.ObjectRecord, error) {
	var (
		id, parentID int64
		objType      string
		info         []byte
	)
	if err := row.Scan(&id, &parentID, &objType, &info); err != nil {
		return nil, err
	}
	rec := &simplecase.ObjectRecord{
		ID:       simplecase.ObjectID(id),
		ParentID: simplecase.ObjectID(parentID),
		Type:     simplecase.ObjectType(objType),
	}
	if len(info) == 0 {
		return rec, nil
	}

	var target interface{}
	switch rec.Type {
	case simplecase.ObjectTypeImage:
		rec.Image = &simplecase.ImageInfo{}
		target = rec.Image
	case simplecase.ObjectTypeVolumeSystem:
		rec.VolumeSystem = &simplecase.VolumeSystemInfo{}
		target = rec.VolumeSystem
	case simplecase.ObjectTypeVolume:
		rec.Volume = &simplecase.VolumeInfo{}
		target = rec.Volume
	case simplecase.ObjectTypeFileSystem:
		rec.FileSystem = &simplecase.FileSystemInfo{}
		target = rec.FileSystem
	default:
		return rec, nil
	}
	if err := json.Unmarshal(info, target); err != nil {
		return nil, fmt.Errorf("decode info of object %d: %w", id, err)
	}
	return rec, nil
}
