package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"jotion/internal/document/model"

	"github.com/google/uuid"
)

type memoryEntry struct {
	doc model.Document
	seq int64
}

type memoryState struct {
	docs map[string]memoryEntry
	seq  int64
	now  func() time.Time
}

// MemoryRepository keeps documents in process memory. Used for local runs and tests.
type MemoryRepository struct {
	mu    sync.Mutex
	state *memoryState
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		state: &memoryState{
			docs: make(map[string]memoryEntry),
			now:  time.Now,
		},
	}
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.get(id)
}

func (r *MemoryRepository) Insert(ctx context.Context, doc *model.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.insert(doc)
}

func (r *MemoryRepository) Patch(ctx context.Context, id string, patch model.DocumentPatch) (*model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.patch(id, patch)
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.state.docs, id)
	return nil
}

func (r *MemoryRepository) ListByOwnerAndParent(ctx context.Context, ownerID string, parentID *string) ([]model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.list(func(d *model.Document) bool {
		return d.OwnerID == ownerID && sameParent(d.ParentID, parentID)
	}), nil
}

func (r *MemoryRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.list(func(d *model.Document) bool { return d.OwnerID == ownerID }), nil
}

func (r *MemoryRepository) SetArchived(ctx context.Context, ownerID string, ids []string, archived bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.setArchived(ownerID, ids, archived), nil
}

// InTx holds the store lock for the whole of fn and restores the previous
// contents if fn fails.
func (r *MemoryRepository) InTx(ctx context.Context, fn func(Repository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make(map[string]memoryEntry, len(r.state.docs))
	for id, e := range r.state.docs {
		snapshot[id] = e
	}
	seq := r.state.seq

	if err := fn(&memoryTx{state: r.state}); err != nil {
		r.state.docs = snapshot
		r.state.seq = seq
		return err
	}
	return nil
}

// memoryTx is the lock-free view handed to InTx callbacks.
type memoryTx struct {
	state *memoryState
}

func (t *memoryTx) Get(ctx context.Context, id string) (*model.Document, error) {
	return t.state.get(id)
}

func (t *memoryTx) Insert(ctx context.Context, doc *model.Document) error {
	return t.state.insert(doc)
}

func (t *memoryTx) Patch(ctx context.Context, id string, patch model.DocumentPatch) (*model.Document, error) {
	return t.state.patch(id, patch)
}

func (t *memoryTx) Delete(ctx context.Context, id string) error {
	delete(t.state.docs, id)
	return nil
}

func (t *memoryTx) ListByOwnerAndParent(ctx context.Context, ownerID string, parentID *string) ([]model.Document, error) {
	return t.state.list(func(d *model.Document) bool {
		return d.OwnerID == ownerID && sameParent(d.ParentID, parentID)
	}), nil
}

func (t *memoryTx) ListByOwner(ctx context.Context, ownerID string) ([]model.Document, error) {
	return t.state.list(func(d *model.Document) bool { return d.OwnerID == ownerID }), nil
}

func (t *memoryTx) SetArchived(ctx context.Context, ownerID string, ids []string, archived bool) (int64, error) {
	return t.state.setArchived(ownerID, ids, archived), nil
}

func (t *memoryTx) InTx(ctx context.Context, fn func(Repository) error) error {
	return fn(t)
}

func (s *memoryState) get(id string) (*model.Document, error) {
	e, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, model.ErrNotFound)
	}
	doc := e.doc
	return &doc, nil
}

func (s *memoryState) insert(doc *model.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if _, exists := s.docs[doc.ID]; exists {
		return fmt.Errorf("insert document: duplicate id %s", doc.ID)
	}
	now := s.now()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	s.seq++
	s.docs[doc.ID] = memoryEntry{doc: *doc, seq: s.seq}
	return nil
}

func (s *memoryState) patch(id string, patch model.DocumentPatch) (*model.Document, error) {
	e, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, model.ErrNotFound)
	}
	patch.Apply(&e.doc)
	e.doc.UpdatedAt = s.now()
	s.docs[id] = e
	doc := e.doc
	return &doc, nil
}

func (s *memoryState) list(match func(*model.Document) bool) []model.Document {
	entries := make([]memoryEntry, 0)
	for _, e := range s.docs {
		if match(&e.doc) {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq > entries[j].seq })

	docs := make([]model.Document, len(entries))
	for i, e := range entries {
		docs[i] = e.doc
	}
	return docs
}

func (s *memoryState) setArchived(ownerID string, ids []string, archived bool) int64 {
	var n int64
	now := s.now()
	for _, id := range ids {
		e, ok := s.docs[id]
		if !ok || e.doc.OwnerID != ownerID {
			continue
		}
		e.doc.IsArchived = archived
		e.doc.UpdatedAt = now
		s.docs[id] = e
		n++
	}
	return n
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
