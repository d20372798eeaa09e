package store

import (
	"context"
	"database/sql"
	"fmt"

	"jotion/pkg/logger"
)

// Schema creates the documents table and the two indexes the queries rely on:
// by_user for trash/search and by_user_parent for sidebar and subtree walks.
// parent_id has no foreign key, so deleting a parent leaves its children in place.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		id           TEXT PRIMARY KEY,
		title        TEXT NOT NULL,
		owner_id     TEXT NOT NULL,
		parent_id    TEXT NULL,
		is_archived  BOOLEAN NOT NULL DEFAULT FALSE,
		is_published BOOLEAN NOT NULL DEFAULT FALSE,
		content      TEXT NULL,
		cover_image  TEXT NULL,
		icon         TEXT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS documents_by_user ON documents (owner_id)`,
	`CREATE INDEX IF NOT EXISTS documents_by_user_parent ON documents (owner_id, parent_id)`,
}

func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d: %w", i+1, err)
		}
	}
	logger.Sugar.Infof("Schema is up to date (%d statements)", len(Schema))
	return nil
}
