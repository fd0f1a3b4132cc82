package trash

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/loomwork/retention/internal/domain"
	"github.com/loomwork/retention/internal/filetrash"
	"github.com/loomwork/retention/internal/http/middleware"
	"github.com/loomwork/retention/internal/httputil"
)

// Handler handles file trash endpoints.
type Handler struct {
	service *filetrash.Service
}

// NewHandler creates a new trash handler.
func NewHandler(service *filetrash.Service) *Handler {
	return &Handler{service: service}
}

// Trash soft-deletes a file into the trash.
// POST /files/{fileID}/trash
func (h *Handler) Trash(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	fileID, err := uuid.Parse(chi.URLParam(r, "fileID"))
	if err != nil {
		httputil.CodedError(w, http.StatusNotFound, "NOT_FOUND", "file not found")
		return
	}

	entry, err := h.service.Trash(r.Context(), fileID, userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, entryResponse(entry))
}

// Restore brings a trashed file back.
// POST /files/{fileID}/restore
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	fileID, err := uuid.Parse(chi.URLParam(r, "fileID"))
	if err != nil {
		httputil.CodedError(w, http.StatusNotFound, "NOT_FOUND", "file not found")
		return
	}

	if err := h.service.Restore(r.Context(), fileID, userID); err != nil {
		h.writeError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]string{"status": "restored"})
}

// List lists an organization's trash.
// GET /organizations/{orgID}/trash
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orgID, err := uuid.Parse(chi.URLParam(r, "orgID"))
	if err != nil {
		httputil.CodedError(w, http.StatusNotFound, "NOT_FOUND", "organization not found")
		return
	}

	entries, err := h.service.List(r.Context(), orgID, userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryResponse(e))
	}
	httputil.JSON(w, http.StatusOK, map[string]any{"entries": out})
}

func entryResponse(e *domain.FileTrashEntry) map[string]any {
	return map[string]any{
		"file_id":         e.FileID,
		"organization_id": e.OrganizationID,
		"deleted_by":      e.DeletedBy,
		"deleted_at":      e.DeletedAt,
		"expires_at":      e.ExpiresAt,
		"retention_days":  e.RetentionDays,
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotOrganizationOwner):
		httputil.CodedError(w, http.StatusForbidden, "FORBIDDEN", "only the organization owner may manage trash")
	case errors.Is(err, domain.ErrFileNotFound), errors.Is(err, domain.ErrTrashEntryNotFound):
		httputil.CodedError(w, http.StatusNotFound, "NOT_FOUND", "file not found in trash")
	case errors.Is(err, domain.ErrOrganizationNotFound):
		httputil.CodedError(w, http.StatusNotFound, "NOT_FOUND", "organization not found")
	default:
		httputil.CodedError(w, http.StatusInternalServerError, "INTERNAL", "failed to process trash request")
	}
}
