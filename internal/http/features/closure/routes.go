package closure

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers closure routes. All routes require the
// authenticated user to be resolved; ownership is enforced by the
// orchestrator.
func (h *Handler) RegisterRoutes(r chi.Router, auth, limit func(http.Handler) http.Handler) {
	r.Route("/organizations/{orgID}/closure", func(r chi.Router) {
		r.Use(auth)
		r.Get("/preview", h.Preview)
		r.With(limit).Post("/initiate", h.Initiate)
	})
}
