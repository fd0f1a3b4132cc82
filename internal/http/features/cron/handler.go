// Package cron exposes the scheduler-triggered reaper jobs as idempotent
// HTTP commands.
package cron

import (
	"net/http"

	"github.com/loomwork/retention/internal/httputil"
	"github.com/loomwork/retention/internal/reaper"
)

// Handler handles cron endpoints.
type Handler struct {
	notifier *reaper.ExpiryNotifier
	cleaner  *reaper.ArchiveCleaner
	trash    *reaper.FileTrashReaper
}

// NewHandler creates a new cron handler.
func NewHandler(notifier *reaper.ExpiryNotifier, cleaner *reaper.ArchiveCleaner, trash *reaper.FileTrashReaper) *Handler {
	return &Handler{notifier: notifier, cleaner: cleaner, trash: trash}
}

// ArchiveExpiryNotifications runs the expiry notifier.
// POST /cron/archive-expiry-notifications
func (h *Handler) ArchiveExpiryNotifications(w http.ResponseWriter, r *http.Request) {
	sent, err := h.notifier.Run(r.Context())
	if err != nil {
		httputil.CodedError(w, http.StatusInternalServerError, "INTERNAL", "expiry notifier failed")
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]int{"notified": sent})
}

// CleanupArchives runs the archive cleaner.
// POST /cron/cleanup-archives
func (h *Handler) CleanupArchives(w http.ResponseWriter, r *http.Request) {
	purged, err := h.cleaner.Run(r.Context())
	if err != nil {
		httputil.CodedError(w, http.StatusInternalServerError, "INTERNAL", "archive cleaner failed")
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]int{"purged": purged})
}

// CleanupFileTrash runs the file trash reaper.
// POST /cron/cleanup-file-trash
func (h *Handler) CleanupFileTrash(w http.ResponseWriter, r *http.Request) {
	purged, err := h.trash.Run(r.Context())
	if err != nil {
		httputil.CodedError(w, http.StatusInternalServerError, "INTERNAL", "file trash reaper failed")
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]int{"purged": purged})
}
