package router

import (
	"net/http"

	docHandler "jotion/internal/document"
	"jotion/internal/document/repository"
	"jotion/internal/document/service"
	"jotion/middleware"
	"jotion/socket"

	"github.com/gorilla/mux"
)

func Setup(repo repository.Repository, hub *socket.Hub, auth *middleware.Authenticator, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	// Change feed
	r.Handle("/ws", auth.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		socket.ServeWs(hub, w, r, middleware.UserIDFromContext(r.Context()))
	}))).Methods(http.MethodGet)

	// REST API
	docService := service.NewDocumentService(repo, hub)
	docs := docHandler.NewDocumentHandler(docService)
	required := auth.RequireAuth
	optional := auth.OptionalAuth

	api := r.PathPrefix("/api/documents").Subrouter()
	api.Handle("", required(http.HandlerFunc(docs.CreateDocument))).Methods(http.MethodPost)
	api.Handle("/sidebar", required(http.HandlerFunc(docs.GetSidebar))).Methods(http.MethodGet)
	api.Handle("/trash", required(http.HandlerFunc(docs.GetTrash))).Methods(http.MethodGet)
	api.Handle("/search", required(http.HandlerFunc(docs.GetSearch))).Methods(http.MethodGet)
	api.Handle("/{id}", optional(http.HandlerFunc(docs.GetDocument))).Methods(http.MethodGet)
	api.Handle("/{id}", required(http.HandlerFunc(docs.UpdateDocument))).Methods(http.MethodPatch)
	api.Handle("/{id}", required(http.HandlerFunc(docs.RemoveDocument))).Methods(http.MethodDelete)
	api.Handle("/{id}/archive", required(http.HandlerFunc(docs.ArchiveDocument))).Methods(http.MethodPut)
	api.Handle("/{id}/restore", required(http.HandlerFunc(docs.RestoreDocument))).Methods(http.MethodPut)
	api.Handle("/{id}/icon", required(http.HandlerFunc(docs.RemoveIcon))).Methods(http.MethodDelete)
	api.Handle("/{id}/cover", required(http.HandlerFunc(docs.RemoveCoverImage))).Methods(http.MethodDelete)

	return middleware.CORSMiddleware(allowedOrigins, r)
}
