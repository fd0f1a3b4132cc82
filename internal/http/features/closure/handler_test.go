package closure

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	closurecore "github.com/loomwork/retention/internal/closure"
	"github.com/loomwork/retention/internal/domain"
	"github.com/loomwork/retention/internal/http/middleware"
	"github.com/loomwork/retention/internal/plans"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orgStore struct {
	mu   sync.Mutex
	orgs map[uuid.UUID]*domain.Organization
}

func (s *orgStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	org, ok := s.orgs[id]
	if !ok {
		return nil, domain.ErrOrganizationNotFound
	}
	cp := *org
	return &cp, nil
}

func (s *orgStore) BeginClosing(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	org, ok := s.orgs[id]
	if !ok || org.Status != domain.OrganizationStatusActive {
		return domain.ErrAlreadyClosed
	}
	org.Status = domain.OrganizationStatusClosing
	return nil
}

func (s *orgStore) ReopenFromClosing(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if org, ok := s.orgs[id]; ok && org.Status == domain.OrganizationStatusClosing {
		org.Status = domain.OrganizationStatusActive
	}
	return nil
}

func (s *orgStore) MarkClosed(ctx context.Context, id uuid.UUID, closedAt time.Time, reason *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if org, ok := s.orgs[id]; ok && org.Status == domain.OrganizationStatusClosing {
		org.Status = domain.OrganizationStatusClosed
	}
	return nil
}

type archiveStore struct {
	mu       sync.Mutex
	archives []*domain.OrganizationArchive
	docs     []*domain.ArchivedDocument
}

func (s *archiveStore) Create(ctx context.Context, archive *domain.OrganizationArchive) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archives = append(s.archives, archive)
	return nil
}

func (s *archiveStore) GetActiveByOrganization(ctx context.Context, orgID uuid.UUID) (*domain.OrganizationArchive, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.archives {
		if a.OrganizationID == orgID && a.Status == domain.ArchiveStatusActive {
			return a, nil
		}
	}
	return nil, domain.ErrArchiveNotFound
}

func (s *archiveStore) InsertDocument(ctx context.Context, doc *domain.ArchivedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, doc)
	return nil
}

type blockableChecker struct {
	mu       sync.Mutex
	blockers []domain.Blocker
}

func (c *blockableChecker) ModuleID() string { return "wallet" }

func (c *blockableChecker) Check(ctx context.Context, orgID uuid.UUID) (*closurecore.CheckResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &closurecore.CheckResult{Blockers: c.blockers}, nil
}

func (c *blockableChecker) Archive(ctx context.Context, orgID, archiveID uuid.UUID) (json.RawMessage, error) {
	return json.RawMessage(`{"entries":[]}`), nil
}

func (c *blockableChecker) DeleteArchived(ctx context.Context, archiveID uuid.UUID) error {
	return nil
}

type defaultsResolver struct{}

func (defaultsResolver) Resolve(ctx context.Context, orgID uuid.UUID) (plans.Retention, error) {
	return plans.Retention{ArchiveDays: 90, TrashDays: 30}, nil
}

// testAuth stands in for the JWT middleware: it injects the given user,
// or rejects when none is set.
func testAuth(userID *uuid.UUID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), middleware.UserIDKey, *userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func noLimit(next http.Handler) http.Handler { return next }

type fixture struct {
	router  chi.Router
	orgs    *orgStore
	checker *blockableChecker
	ownerID uuid.UUID
	orgID   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ownerID := uuid.New()
	orgID := uuid.New()
	orgs := &orgStore{orgs: map[uuid.UUID]*domain.Organization{
		orgID: {ID: orgID, OwnerID: ownerID, Name: "acme", Status: domain.OrganizationStatusActive},
	}}
	checker := &blockableChecker{}

	orch := closurecore.NewOrchestrator(orgs, &archiveStore{}, defaultsResolver{},
		[]closurecore.Checker{checker}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	router := chi.NewRouter()
	NewHandler(orch).RegisterRoutes(router, testAuth(&ownerID), noLimit)
	return &fixture{router: router, orgs: orgs, checker: checker, ownerID: ownerID, orgID: orgID}
}

func (f *fixture) do(method, path string, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestPreview_RequiresAuth(t *testing.T) {
	f := newFixture(t)
	router := chi.NewRouter()
	orch := closurecore.NewOrchestrator(f.orgs, &archiveStore{}, defaultsResolver{},
		nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	NewHandler(orch).RegisterRoutes(router, testAuth(nil), noLimit)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/organizations/"+f.orgID.String()+"/closure/preview", nil)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPreview_BadOrganizationID(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/organizations/not-a-uuid/closure/preview", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestPreview_UnknownOrganization(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/organizations/"+uuid.NewString()+"/closure/preview", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestPreview_ReturnsBlockers(t *testing.T) {
	f := newFixture(t)
	f.checker.blockers = []domain.Blocker{{
		ModuleID: "wallet", Severity: domain.SeverityBlocking,
		Type: "nonzero_balance", Title: "wallet balance must be zero",
	}}

	rec := f.do(http.MethodGet, "/organizations/"+f.orgID.String()+"/closure/preview", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var preview domain.ClosurePreview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))
	require.Len(t, preview.Blockers, 1)
	assert.Equal(t, "nonzero_balance", preview.Blockers[0].Type)
	assert.True(t, preview.HasBlocking())
}

func TestInitiate_NotOwnerForbidden(t *testing.T) {
	f := newFixture(t)
	stranger := uuid.New()
	router := chi.NewRouter()
	orch := closurecore.NewOrchestrator(f.orgs, &archiveStore{}, defaultsResolver{},
		[]closurecore.Checker{f.checker}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	NewHandler(orch).RegisterRoutes(router, testAuth(&stranger), noLimit)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/organizations/"+f.orgID.String()+"/closure/initiate", nil)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "FORBIDDEN")
}

func TestInitiate_BlockedReturnsCannotClose(t *testing.T) {
	f := newFixture(t)
	f.checker.blockers = []domain.Blocker{{
		ModuleID: "wallet", Severity: domain.SeverityBlocking,
		Type: "nonzero_balance", Title: "wallet balance must be zero",
	}}

	rec := f.do(http.MethodPost, "/organizations/"+f.orgID.String()+"/closure/initiate", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Code     string           `json:"code"`
		Blockers []domain.Blocker `json:"blockers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "CANNOT_CLOSE", body.Code)
	require.Len(t, body.Blockers, 1)
	assert.Equal(t, "nonzero_balance", body.Blockers[0].Type)

	// The failed initiate must leave the organization active.
	org, err := f.orgs.GetByID(context.Background(), f.orgID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrganizationStatusActive, org.Status)
}

func TestInitiate_SucceedsAndConflictsOnRepeat(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/organizations/"+f.orgID.String()+"/closure/initiate",
		`{"reason":"migrating to self-hosted"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Archive *domain.OrganizationArchive `json:"archive"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Archive)
	assert.Equal(t, f.orgID, body.Archive.OrganizationID)

	org, err := f.orgs.GetByID(context.Background(), f.orgID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrganizationStatusClosed, org.Status)

	rec = f.do(http.MethodPost, "/organizations/"+f.orgID.String()+"/closure/initiate", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "ALREADY_CLOSED")
}

func TestInitiate_RejectsMalformedBody(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/organizations/"+f.orgID.String()+"/closure/initiate", `{"reason":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid request body")
}
