package trash

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/loomwork/retention/internal/domain"
	"github.com/loomwork/retention/internal/filetrash"
	"github.com/loomwork/retention/internal/http/middleware"
	"github.com/loomwork/retention/internal/plans"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fileStore struct {
	mu    sync.Mutex
	files map[uuid.UUID]*domain.File
}

func (s *fileStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	if !ok {
		return nil, domain.ErrFileNotFound
	}
	cp := *f
	return &cp, nil
}

func (s *fileStore) SoftDelete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.files[id]; ok {
		t := time.Now()
		f.DeletedAt = &t
	}
	return nil
}

func (s *fileStore) ClearDeleted(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.files[id]; ok {
		f.DeletedAt = nil
	}
	return nil
}

type trashStore struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*domain.FileTrashEntry
}

func (s *trashStore) Create(ctx context.Context, entry *domain.FileTrashEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *entry
	s.entries[entry.FileID] = &cp
	return nil
}

func (s *trashStore) GetByFileID(ctx context.Context, fileID uuid.UUID) (*domain.FileTrashEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[fileID]
	if !ok || e.RestoredAt != nil {
		return nil, domain.ErrTrashEntryNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *trashStore) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*domain.FileTrashEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.FileTrashEntry
	for _, e := range s.entries {
		if e.OrganizationID == orgID && e.RestoredAt == nil {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *trashStore) Restore(ctx context.Context, fileID uuid.UUID, restoredAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[fileID]
	if !ok || e.RestoredAt != nil || e.PurgedAt != nil {
		return domain.ErrTrashEntryNotFound
	}
	t := restoredAt
	e.RestoredAt = &t
	return nil
}

type orgStore struct {
	orgs map[uuid.UUID]*domain.Organization
}

func (s *orgStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	org, ok := s.orgs[id]
	if !ok {
		return nil, domain.ErrOrganizationNotFound
	}
	cp := *org
	return &cp, nil
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

type fixture struct {
	ownerID uuid.UUID
	orgID   uuid.UUID
	fileID  uuid.UUID
	files   *fileStore
	trash   *trashStore
	service *filetrash.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ownerID := uuid.New()
	orgID := uuid.New()
	fileID := uuid.New()

	files := &fileStore{files: map[uuid.UUID]*domain.File{
		fileID: {ID: fileID, OrganizationID: orgID, Name: "notes.txt", StorageKey: "files/notes.txt"},
	}}
	trash := &trashStore{entries: make(map[uuid.UUID]*domain.FileTrashEntry)}
	orgs := &orgStore{orgs: map[uuid.UUID]*domain.Organization{
		orgID: {ID: orgID, OwnerID: ownerID, Name: "acme", Status: domain.OrganizationStatusActive},
	}}

	service := filetrash.NewService(files, trash, orgs, defaultsResolver{},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	return &fixture{ownerID: ownerID, orgID: orgID, fileID: fileID, files: files, trash: trash, service: service}
}

func (f *fixture) do(t *testing.T, userID *uuid.UUID, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	router := chi.NewRouter()
	NewHandler(f.service).RegisterRoutes(router, testAuth(userID))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestTrash_OwnerSucceeds(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, &f.ownerID, http.MethodPost, "/files/"+f.fileID.String()+"/trash")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, f.fileID.String(), body["file_id"])
	assert.NotNil(t, body["expires_at"])
}

func TestTrash_NonOwnerForbidden(t *testing.T) {
	f := newFixture(t)
	stranger := uuid.New()
	rec := f.do(t, &stranger, http.MethodPost, "/files/"+f.fileID.String()+"/trash")
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "FORBIDDEN")

	// The denied call must not have touched the file.
	file, err := f.files.GetByID(context.Background(), f.fileID)
	require.NoError(t, err)
	assert.Nil(t, file.DeletedAt)
}

func TestRestore_NonOwnerForbidden(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, &f.ownerID, http.MethodPost, "/files/"+f.fileID.String()+"/trash")
	require.Equal(t, http.StatusOK, rec.Code)

	stranger := uuid.New()
	rec = f.do(t, &stranger, http.MethodPost, "/files/"+f.fileID.String()+"/restore")
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, &f.ownerID, http.MethodPost, "/files/"+f.fileID.String()+"/restore")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestList_NonOwnerForbidden(t *testing.T) {
	f := newFixture(t)
	stranger := uuid.New()
	rec := f.do(t, &stranger, http.MethodGet, "/organizations/"+f.orgID.String()+"/trash")
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, &f.ownerID, http.MethodGet, "/organizations/"+f.orgID.String()+"/trash")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTrash_RequiresAuth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, nil, http.MethodPost, "/files/"+f.fileID.String()+"/trash")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTrash_UnknownFile(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, &f.ownerID, http.MethodPost, "/files/"+uuid.NewString()+"/trash")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
