package closure

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	closurecore "github.com/loomwork/retention/internal/closure"
	"github.com/loomwork/retention/internal/domain"
	"github.com/loomwork/retention/internal/http/middleware"
	"github.com/loomwork/retention/internal/httputil"
)

// Handler handles organization closure endpoints.
type Handler struct {
	orchestrator *closurecore.Orchestrator
}

// NewHandler creates a new closure handler.
func NewHandler(orchestrator *closurecore.Orchestrator) *Handler {
	return &Handler{orchestrator: orchestrator}
}

// InitiateRequest is the body of the initiate endpoint.
type InitiateRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// Preview returns the blockers and archivable data for a would-be closure.
// GET /organizations/{orgID}/closure/preview
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := h.requestIDs(w, r)
	if !ok {
		return
	}

	preview, err := h.orchestrator.GetClosurePreview(r.Context(), orgID, userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, preview)
}

// Initiate closes the organization.
// POST /organizations/{orgID}/closure/initiate
func (h *Handler) Initiate(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := h.requestIDs(w, r)
	if !ok {
		return
	}

	var req InitiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.orchestrator.InitiateClosing(r.Context(), orgID, userID, req.Reason)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]any{
		"archive":        result.Archive,
		"closure_result": result,
	})
}

func (h *Handler) requestIDs(w http.ResponseWriter, r *http.Request) (orgID, userID uuid.UUID, ok bool) {
	userID, ok = middleware.UserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, uuid.Nil, false
	}

	orgID, err := uuid.Parse(chi.URLParam(r, "orgID"))
	if err != nil {
		httputil.CodedError(w, http.StatusNotFound, "NOT_FOUND", "organization not found")
		return uuid.Nil, uuid.Nil, false
	}
	return orgID, userID, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var blocked *domain.CloseBlockedError
	switch {
	case errors.As(err, &blocked):
		httputil.JSON(w, http.StatusBadRequest, map[string]any{
			"code":     "CANNOT_CLOSE",
			"error":    blocked.Error(),
			"blockers": blocked.Blockers,
		})
	case errors.Is(err, domain.ErrOrganizationNotFound):
		httputil.CodedError(w, http.StatusNotFound, "NOT_FOUND", "organization not found")
	case errors.Is(err, domain.ErrNotOrganizationOwner):
		httputil.CodedError(w, http.StatusForbidden, "FORBIDDEN", "only the organization owner may close it")
	case errors.Is(err, domain.ErrAlreadyClosed):
		httputil.CodedError(w, http.StatusConflict, "ALREADY_CLOSED", "organization is already closing or closed")
	default:
		httputil.CodedError(w, http.StatusInternalServerError, "INTERNAL", "failed to process closure request")
	}
}
