package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Sidebar and stored notes.
	r.Get("/notes", h.ListNotes)
	r.Get("/notes/*", h.GetNote)
	r.Delete("/notes/*", h.DeleteNote)

	// Editor commands.
	r.Route("/session", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Post("/save", h.SaveSession)
		r.Post("/new", h.NewSession)
		r.Post("/open", h.OpenSession)
		r.Post("/export", h.ExportSession)
	})

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
