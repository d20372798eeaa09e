package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"jotion/internal/document/model"
	"jotion/internal/document/repository"
	"jotion/middleware"
	"jotion/socket"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "router-secret"

func bearer(t *testing.T, userID string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": userID}).SignedString([]byte(secret))
	require.NoError(t, err)
	return "Bearer " + token
}

func setup(t *testing.T) http.Handler {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := socket.NewHub()
	go hub.Run(ctx)

	return Setup(repository.NewMemoryRepository(), hub, middleware.NewAuthenticator(secret), []string{"http://localhost:3000"})
}

func TestHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	setup(t).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestDocumentRoutesRequireToken(t *testing.T) {
	h := setup(t)
	for _, path := range []string{"/api/documents/sidebar", "/api/documents/trash", "/api/documents/search"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}
}

func TestPublishedDocumentIsPublic(t *testing.T) {
	h := setup(t)

	req := httptest.NewRequest(http.MethodPost, "/api/documents", strings.NewReader(`{"title":"Shared"}`))
	req.Header.Set("Authorization", bearer(t, "user1"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	var doc model.Document
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &doc))

	req = httptest.NewRequest(http.MethodGet, "/api/documents/"+doc.ID, nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest(http.MethodPatch, "/api/documents/"+doc.ID, strings.NewReader(`{"is_published":true}`))
	req.Header.Set("Authorization", bearer(t, "user1"))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/documents/"+doc.ID, nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	// Static segments win over the {id} route.
	req = httptest.NewRequest(http.MethodGet, "/api/documents/trash", nil)
	req.Header.Set("Authorization", bearer(t, "user1"))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}
