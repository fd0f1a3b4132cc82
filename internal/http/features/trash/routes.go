package trash

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers file trash routes.
func (h *Handler) RegisterRoutes(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Post("/files/{fileID}/trash", h.Trash)
		r.Post("/files/{fileID}/restore", h.Restore)
		r.Get("/organizations/{orgID}/trash", h.List)
	})
}
