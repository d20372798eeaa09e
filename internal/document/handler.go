package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"jotion/internal/document/model"
	"jotion/internal/document/service"
	"jotion/middleware"
	"jotion/pkg/logger"

	"github.com/gorilla/mux"
)

type DocumentHandler struct {
	Service *service.DocumentService
}

func NewDocumentHandler(service *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{Service: service}
}

func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req model.CreateDocRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	doc, err := h.Service.Create(r.Context(), middleware.UserIDFromContext(r.Context()), req)
	if err != nil {
		h.fail(w, "create document", err)
		return
	}
	respondJSON(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Service.GetByID(r.Context(), mux.Vars(r)["id"], middleware.UserIDFromContext(r.Context()))
	if err != nil {
		h.fail(w, "get document", err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateDocRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	doc, err := h.Service.Update(r.Context(), mux.Vars(r)["id"], middleware.UserIDFromContext(r.Context()), req)
	if err != nil {
		h.fail(w, "update document", err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) ArchiveDocument(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "archive document", h.Service.Archive)
}

func (h *DocumentHandler) RestoreDocument(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "restore document", h.Service.Restore)
}

func (h *DocumentHandler) RemoveDocument(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "remove document", h.Service.Remove)
}

func (h *DocumentHandler) RemoveIcon(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "remove icon", h.Service.RemoveIcon)
}

func (h *DocumentHandler) RemoveCoverImage(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "remove cover image", h.Service.RemoveCoverImage)
}

func (h *DocumentHandler) GetSidebar(w http.ResponseWriter, r *http.Request) {
	var parentID *string
	if p := strings.TrimSpace(r.URL.Query().Get("parentId")); p != "" {
		parentID = &p
	}

	docs, err := h.Service.ListSidebar(r.Context(), middleware.UserIDFromContext(r.Context()), parentID)
	if err != nil {
		h.fail(w, "list sidebar", err)
		return
	}
	respondJSON(w, http.StatusOK, docs)
}

func (h *DocumentHandler) GetTrash(w http.ResponseWriter, r *http.Request) {
	docs, err := h.Service.ListTrash(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		h.fail(w, "list trash", err)
		return
	}
	respondJSON(w, http.StatusOK, docs)
}

func (h *DocumentHandler) GetSearch(w http.ResponseWriter, r *http.Request) {
	docs, err := h.Service.Search(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		h.fail(w, "search documents", err)
		return
	}
	respondJSON(w, http.StatusOK, docs)
}

type mutation func(ctx context.Context, id, userID string) (*model.Document, error)

func (h *DocumentHandler) mutate(w http.ResponseWriter, r *http.Request, action string, fn mutation) {
	doc, err := fn(r.Context(), mux.Vars(r)["id"], middleware.UserIDFromContext(r.Context()))
	if err != nil {
		h.fail(w, action, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) fail(w http.ResponseWriter, action string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Sugar.Errorf("Handler: Failed to %s: %v", action, err)
		respondError(w, status, "Internal server error")
		return
	}
	logger.Sugar.Debugf("Handler: %s rejected: %v", action, err)
	respondError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Sugar.Errorf("Failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, model.ErrorResponse{Error: message})
}
