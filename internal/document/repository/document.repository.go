package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"jotion/internal/document/model"
	"jotion/pkg/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const documentColumns = `id, title, owner_id, parent_id, is_archived, is_published, content, cover_image, icon, created_at, updated_at`

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type DocumentRepository struct {
	DB dbtx
	// pool is nil when the repository is bound to a transaction.
	pool *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{DB: db, pool: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var doc model.Document
	err := row.Scan(
		&doc.ID,
		&doc.Title,
		&doc.OwnerID,
		&doc.ParentID,
		&doc.IsArchived,
		&doc.IsPublished,
		&doc.Content,
		&doc.CoverImage,
		&doc.Icon,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepository) Get(ctx context.Context, id string) (*model.Document, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+documentColumns+" FROM documents WHERE id = $1", id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get doc %s: %v", id, err)
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

func (r *DocumentRepository) Insert(ctx context.Context, doc *model.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO documents (id, title, owner_id, parent_id, is_archived, is_published, content, cover_image, icon, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at`,
		doc.ID, doc.Title, doc.OwnerID, doc.ParentID, doc.IsArchived, doc.IsPublished, doc.Content, doc.CoverImage, doc.Icon,
	).Scan(&doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to create document: %v", err)
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Patch(ctx context.Context, id string, patch model.DocumentPatch) (*model.Document, error) {
	if patch.IsEmpty() {
		return r.Get(ctx, id)
	}

	var sets []string
	var args []any
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Content != nil {
		set("content", *patch.Content)
	}
	if patch.Icon != nil {
		set("icon", *patch.Icon)
	}
	if patch.CoverImage != nil {
		set("cover_image", *patch.CoverImage)
	}
	if patch.IsArchived != nil {
		set("is_archived", *patch.IsArchived)
	}
	if patch.IsPublished != nil {
		set("is_published", *patch.IsPublished)
	}
	if patch.ClearParent {
		sets = append(sets, "parent_id = NULL")
	}
	if patch.ClearIcon {
		sets = append(sets, "icon = NULL")
	}
	if patch.ClearCoverImage {
		sets = append(sets, "cover_image = NULL")
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE documents SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), documentColumns)

	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to patch doc %s: %v", id, err)
		return nil, fmt.Errorf("patch document: %w", err)
	}
	return doc, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM documents WHERE id = $1", id)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete doc %s: %v", id, err)
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) ListByOwnerAndParent(ctx context.Context, ownerID string, parentID *string) ([]model.Document, error) {
	query := "SELECT " + documentColumns + " FROM documents WHERE owner_id = $1 AND "
	args := []any{ownerID}
	if parentID == nil {
		query += "parent_id IS NULL"
	} else {
		query += "parent_id = $2"
		args = append(args, *parentID)
	}
	query += " ORDER BY created_at DESC"

	docs, err := r.list(ctx, query, args...)
	if err != nil {
		logger.Sugar.Errorf("Failed to list children for user %s: %v", ownerID, err)
		return nil, fmt.Errorf("list documents by parent: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Document, error) {
	docs, err := r.list(ctx, "SELECT "+documentColumns+" FROM documents WHERE owner_id = $1 ORDER BY created_at DESC", ownerID)
	if err != nil {
		logger.Sugar.Errorf("Failed to get documents for user %s: %v", ownerID, err)
		return nil, fmt.Errorf("list documents by owner: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) list(ctx context.Context, query string, args ...any) ([]model.Document, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []model.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func (r *DocumentRepository) SetArchived(ctx context.Context, ownerID string, ids []string, archived bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result, err := r.DB.ExecContext(ctx,
		"UPDATE documents SET is_archived = $1, updated_at = NOW() WHERE owner_id = $2 AND id = ANY($3)",
		archived, ownerID, pq.Array(ids))
	if err != nil {
		logger.Sugar.Errorf("Failed to set archived=%t on %d docs: %v", archived, len(ids), err)
		return 0, fmt.Errorf("set archived: %w", err)
	}
	return result.RowsAffected()
}

func (r *DocumentRepository) InTx(ctx context.Context, fn func(Repository) error) error {
	if r.pool == nil {
		return fn(r)
	}

	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		logger.Sugar.Errorf("Failed to begin transaction: %v", err)
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&DocumentRepository{DB: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Sugar.Errorf("Failed to roll back transaction: %v", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		logger.Sugar.Errorf("Failed to commit transaction: %v", err)
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
