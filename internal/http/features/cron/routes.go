package cron

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers cron routes behind the cron-secret middleware.
// The GET variants exist for manual testing; in production the middleware
// holds them to the same secret as POST.
func (h *Handler) RegisterRoutes(r chi.Router, cronAuth func(http.Handler) http.Handler) {
	r.Route("/cron", func(r chi.Router) {
		r.Use(cronAuth)
		r.Post("/archive-expiry-notifications", h.ArchiveExpiryNotifications)
		r.Get("/archive-expiry-notifications", h.ArchiveExpiryNotifications)
		r.Post("/cleanup-archives", h.CleanupArchives)
		r.Get("/cleanup-archives", h.CleanupArchives)
		r.Post("/cleanup-file-trash", h.CleanupFileTrash)
		r.Get("/cleanup-file-trash", h.CleanupFileTrash)
	})
}
