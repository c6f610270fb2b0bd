package postgres

import "context"

// schema is the minimum needed to persist case rows. Statements are
// idempotent so EnsureSchema can run on every start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS tsk_objects (
		obj_id     BIGSERIAL PRIMARY KEY,
		par_obj_id BIGINT NOT NULL DEFAULT 0,
		type       TEXT NOT NULL,
		info       JSONB
	)`,
	`CREATE INDEX IF NOT EXISTS tsk_objects_par_obj_id_idx ON tsk_objects (par_obj_id, obj_id)`,
	`CREATE TABLE IF NOT EXISTS tsk_files (
		obj_id      BIGINT PRIMARY KEY REFERENCES tsk_objects (obj_id) ON DELETE CASCADE,
		fs_obj_id   BIGINT NOT NULL DEFAULT 0,
		type        TEXT NOT NULL,
		attr_type   INTEGER NOT NULL DEFAULT 0,
		attr_id     INTEGER NOT NULL DEFAULT 0,
		name        TEXT NOT NULL DEFAULT '',
		meta_addr   BIGINT NOT NULL DEFAULT 0,
		meta_seq    INTEGER NOT NULL DEFAULT 0,
		dir_type    INTEGER NOT NULL DEFAULT 0,
		meta_type   INTEGER NOT NULL DEFAULT 0,
		dir_flags   INTEGER NOT NULL DEFAULT 0,
		meta_flags  INTEGER NOT NULL DEFAULT 0,
		size        BIGINT NOT NULL DEFAULT 0,
		ctime       BIGINT NOT NULL DEFAULT 0,
		crtime      BIGINT NOT NULL DEFAULT 0,
		atime       BIGINT NOT NULL DEFAULT 0,
		mtime       BIGINT NOT NULL DEFAULT 0,
		mode        INTEGER NOT NULL DEFAULT 0,
		uid         INTEGER NOT NULL DEFAULT 0,
		gid         INTEGER NOT NULL DEFAULT 0,
		md5         TEXT NOT NULL DEFAULT '',
		known       TEXT NOT NULL DEFAULT '',
		parent_path TEXT NOT NULL DEFAULT '',
		layout      JSONB,
		local_path  TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS tsk_files_type_idx ON tsk_files (type)`,
	`CREATE TABLE IF NOT EXISTS blackboard_artifacts (
		artifact_id   BIGSERIAL PRIMARY KEY,
		obj_id        BIGINT NOT NULL REFERENCES tsk_objects (obj_id) ON DELETE CASCADE,
		artifact_type TEXT NOT NULL,
		attributes    JSONB
	)`,
	`CREATE INDEX IF NOT EXISTS blackboard_artifacts_obj_id_idx ON blackboard_artifacts (obj_id, artifact_id)`,
}

// EnsureSchema creates the case tables when they do not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return r.handlePostgresError("ensure schema", err)
		}
	}
	return nil
}
