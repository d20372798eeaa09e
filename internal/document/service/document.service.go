package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"jotion/internal/document/model"
	"jotion/internal/document/repository"
	"jotion/pkg/logger"
	"jotion/socket"
)

// Publisher receives change events after a mutation commits.
type Publisher interface {
	Publish(msg socket.WSMessage)
}

// DocumentService owns the document forest: creation, listing, and the
// archive/restore sweeps that move whole subtrees in and out of the trash.
type DocumentService struct {
	Repo repository.Repository
	Hub  Publisher
}

func NewDocumentService(repo repository.Repository, hub Publisher) *DocumentService {
	return &DocumentService{Repo: repo, Hub: hub}
}

func (s *DocumentService) Create(ctx context.Context, userID string, req model.CreateDocRequest) (*model.Document, error) {
	if userID == "" {
		return nil, model.ErrUnauthenticated
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrValidation, err)
	}

	if req.ParentID != nil {
		if _, err := s.authorize(ctx, s.Repo, *req.ParentID, userID); err != nil {
			return nil, fmt.Errorf("parent: %w", err)
		}
	}

	doc := &model.Document{
		Title:       req.Title,
		OwnerID:     userID,
		ParentID:    req.ParentID,
		IsArchived:  false,
		IsPublished: false,
	}
	if err := s.Repo.Insert(ctx, doc); err != nil {
		return nil, err
	}

	logger.Sugar.Infof("Document %s created by user %s", doc.ID, userID)
	s.publish(socket.DocumentCreatedType, doc.ID, userID, doc)
	return doc, nil
}

// GetByID returns a document to its owner, or to anyone when it is published and not in the trash.
func (s *DocumentService) GetByID(ctx context.Context, id, userID string) (*model.Document, error) {
	doc, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.IsPublished && !doc.IsArchived {
		return doc, nil
	}
	if userID == "" {
		return nil, model.ErrUnauthenticated
	}
	if doc.OwnerID != userID {
		return nil, fmt.Errorf("document %s: %w", id, model.ErrForbidden)
	}
	return doc, nil
}

// Archive moves the document and its whole subtree to the trash.
// The sweep completes, in one transaction, before Archive returns.
func (s *DocumentService) Archive(ctx context.Context, id, userID string) (*model.Document, error) {
	var doc *model.Document
	var affected []string

	err := s.Repo.InTx(ctx, func(repo repository.Repository) error {
		if _, err := s.authorize(ctx, repo, id, userID); err != nil {
			return err
		}

		var err error
		doc, err = repo.Patch(ctx, id, model.DocumentPatch{IsArchived: boolPtr(true)})
		if err != nil {
			return err
		}

		affected, err = s.sweep(ctx, repo, doc, true)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Sugar.Infof("Document %s archived by user %s (%d descendants)", id, userID, len(affected))
	s.publish(socket.DocumentArchivedType, id, userID, affectedPayload(id, affected))
	return doc, nil
}

// Restore brings the document and its subtree back from the trash. A document
// whose parent is still archived is detached to the root so it stays visible.
func (s *DocumentService) Restore(ctx context.Context, id, userID string) (*model.Document, error) {
	var doc *model.Document
	var affected []string

	err := s.Repo.InTx(ctx, func(repo repository.Repository) error {
		existing, err := s.authorize(ctx, repo, id, userID)
		if err != nil {
			return err
		}

		patch := model.DocumentPatch{IsArchived: boolPtr(false)}
		if existing.ParentID != nil {
			parent, err := repo.Get(ctx, *existing.ParentID)
			switch {
			case err == nil:
				patch.ClearParent = parent.IsArchived
			case !errors.Is(err, model.ErrNotFound):
				return err
			}
		}

		doc, err = repo.Patch(ctx, id, patch)
		if err != nil {
			return err
		}

		affected, err = s.sweep(ctx, repo, doc, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Sugar.Infof("Document %s restored by user %s (%d descendants)", id, userID, len(affected))
	s.publish(socket.DocumentRestoredType, id, userID, affectedPayload(id, affected))
	return doc, nil
}

// Remove permanently deletes exactly one document. Children are left in place
// and keep pointing at the deleted id.
func (s *DocumentService) Remove(ctx context.Context, id, userID string) (*model.Document, error) {
	var doc *model.Document
	err := s.Repo.InTx(ctx, func(repo repository.Repository) error {
		var err error
		if doc, err = s.authorize(ctx, repo, id, userID); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	logger.Sugar.Infof("Document %s removed by user %s", id, userID)
	s.publish(socket.DocumentRemovedType, id, userID, doc)
	return doc, nil
}

func (s *DocumentService) Update(ctx context.Context, id, userID string, req model.UpdateDocRequest) (*model.Document, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrValidation, err)
	}
	return s.patchOwned(ctx, id, userID, req.Patch())
}

func (s *DocumentService) RemoveIcon(ctx context.Context, id, userID string) (*model.Document, error) {
	return s.patchOwned(ctx, id, userID, model.DocumentPatch{ClearIcon: true})
}

func (s *DocumentService) RemoveCoverImage(ctx context.Context, id, userID string) (*model.Document, error) {
	return s.patchOwned(ctx, id, userID, model.DocumentPatch{ClearCoverImage: true})
}

// ListSidebar returns the visible children of parentID (nil for the root level).
func (s *DocumentService) ListSidebar(ctx context.Context, userID string, parentID *string) ([]model.Document, error) {
	if userID == "" {
		return nil, model.ErrUnauthenticated
	}
	docs, err := s.Repo.ListByOwnerAndParent(ctx, userID, parentID)
	if err != nil {
		return nil, err
	}
	return filterArchived(docs, false), nil
}

func (s *DocumentService) ListTrash(ctx context.Context, userID string) ([]model.Document, error) {
	if userID == "" {
		return nil, model.ErrUnauthenticated
	}
	docs, err := s.Repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return filterArchived(docs, true), nil
}

// Search returns every live document of the user; matching happens client side.
func (s *DocumentService) Search(ctx context.Context, userID string) ([]model.Document, error) {
	if userID == "" {
		return nil, model.ErrUnauthenticated
	}
	docs, err := s.Repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return filterArchived(docs, false), nil
}

func (s *DocumentService) patchOwned(ctx context.Context, id, userID string, patch model.DocumentPatch) (*model.Document, error) {
	if _, err := s.authorize(ctx, s.Repo, id, userID); err != nil {
		return nil, err
	}
	doc, err := s.Repo.Patch(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.publish(socket.DocumentUpdatedType, id, userID, doc)
	return doc, nil
}

// authorize runs the checks shared by every owner-only operation, in order:
// identity, existence, ownership.
func (s *DocumentService) authorize(ctx context.Context, repo repository.Repository, id, userID string) (*model.Document, error) {
	if userID == "" {
		return nil, model.ErrUnauthenticated
	}
	doc, err := repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != userID {
		return nil, fmt.Errorf("document %s: %w", id, model.ErrForbidden)
	}
	return doc, nil
}

// sweep collects every descendant of root breadth-first and sets their archived
// flag in one batch. The visited set keeps a cyclic parent chain from looping.
func (s *DocumentService) sweep(ctx context.Context, repo repository.Repository, root *model.Document, archived bool) ([]string, error) {
	visited := map[string]bool{root.ID: true}
	queue := []string{root.ID}
	var descendants []string

	for len(queue) > 0 {
		parentID := queue[0]
		queue = queue[1:]

		children, err := repo.ListByOwnerAndParent(ctx, root.OwnerID, &parentID)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			if visited[child.ID] {
				logger.Sugar.Warnf("Cycle in parent chain at document %s, skipping", child.ID)
				continue
			}
			visited[child.ID] = true
			descendants = append(descendants, child.ID)
			queue = append(queue, child.ID)
		}
	}

	if _, err := repo.SetArchived(ctx, root.OwnerID, descendants, archived); err != nil {
		return nil, err
	}
	return descendants, nil
}

func (s *DocumentService) publish(eventType, docID, userID string, payload any) {
	if s.Hub == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		logger.Sugar.Errorf("Error marshalling %s event for doc %s: %v", eventType, docID, err)
		return
	}
	s.Hub.Publish(socket.WSMessage{
		Type:    eventType,
		DocID:   docID,
		UserID:  userID,
		Payload: body,
	})
}

type affectedDocuments struct {
	ID          string   `json:"id"`
	Descendants []string `json:"descendants"`
}

func affectedPayload(id string, descendants []string) affectedDocuments {
	if descendants == nil {
		descendants = []string{}
	}
	return affectedDocuments{ID: id, Descendants: descendants}
}

func filterArchived(docs []model.Document, archived bool) []model.Document {
	out := make([]model.Document, 0, len(docs))
	for _, doc := range docs {
		if doc.IsArchived == archived {
			out = append(out, doc)
		}
	}
	return out
}

func boolPtr(b bool) *bool {
	return &b
}
