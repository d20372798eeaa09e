package repository

import (
	"context"

	"jotion/internal/document/model"
)

// Repository is the document store consumed by the service.
// List calls return documents newest first.
type Repository interface {
	Get(ctx context.Context, id string) (*model.Document, error)
	Insert(ctx context.Context, doc *model.Document) error
	Patch(ctx context.Context, id string, patch model.DocumentPatch) (*model.Document, error)
	Delete(ctx context.Context, id string) error
	ListByOwnerAndParent(ctx context.Context, ownerID string, parentID *string) ([]model.Document, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Document, error)

	// SetArchived flips the archived flag on every listed document owned by ownerID
	// and reports how many rows changed.
	SetArchived(ctx context.Context, ownerID string, ids []string, archived bool) (int64, error)

	// InTx runs fn against a repository bound to a single transaction.
	// Returning an error from fn rolls back every write made through it.
	InTx(ctx context.Context, fn func(Repository) error) error
}

var (
	_ Repository = (*DocumentRepository)(nil)
	_ Repository = (*MemoryRepository)(nil)
	_ Repository = (*memoryTx)(nil)
)
