// Package filetrash implements the soft-delete lifecycle for files:
// tombstone on delete, restore inside the retention window, physical
// purge by the reaper after it.
package filetrash

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/loomwork/retention/internal/domain"
	"github.com/loomwork/retention/internal/plans"
)

// FileStore is the file-metadata surface the service mutates.
type FileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.File, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	ClearDeleted(ctx context.Context, id uuid.UUID) error
}

// TrashStore is the tombstone surface the service mutates.
type TrashStore interface {
	Create(ctx context.Context, entry *domain.FileTrashEntry) error
	GetByFileID(ctx context.Context, fileID uuid.UUID) (*domain.FileTrashEntry, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*domain.FileTrashEntry, error)
	Restore(ctx context.Context, fileID uuid.UUID, restoredAt time.Time) error
}

// OrganizationStore resolves the owner of the organization a file
// belongs to.
type OrganizationStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error)
}

// Service moves files in and out of trash. Every operation is owner-only:
// the caller must own the organization the file belongs to.
type Service struct {
	files  FileStore
	trash  TrashStore
	orgs   OrganizationStore
	plans  plans.Resolver
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a file trash service.
func NewService(files FileStore, trash TrashStore, orgs OrganizationStore, resolver plans.Resolver, logger *slog.Logger) *Service {
	return &Service{
		files:  files,
		trash:  trash,
		orgs:   orgs,
		plans:  resolver,
		logger: logger,
		now:    time.Now,
	}
}

// authorize verifies that userID owns the organization.
func (s *Service) authorize(ctx context.Context, orgID, userID uuid.UUID) error {
	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		return err
	}
	if org.OwnerID != userID {
		return domain.ErrNotOrganizationOwner
	}
	return nil
}

// Trash soft-deletes a file and writes its tombstone. The retention
// window comes from the organization's plan; a non-positive window means
// the entry never expires.
func (s *Service) Trash(ctx context.Context, fileID, userID uuid.UUID) (*domain.FileTrashEntry, error) {
	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, file.OrganizationID, userID); err != nil {
		return nil, err
	}

	retention, err := s.plans.Resolve(ctx, file.OrganizationID)
	if err != nil {
		return nil, err
	}

	if err := s.files.SoftDelete(ctx, fileID); err != nil {
		return nil, err
	}

	now := s.now()
	entry := &domain.FileTrashEntry{
		FileID:         file.ID,
		OrganizationID: file.OrganizationID,
		DeletedBy:      userID,
		DeletedAt:      now,
		RetentionDays:  retention.TrashDays,
	}
	if retention.TrashDays > 0 {
		expires := now.Add(time.Duration(retention.TrashDays) * 24 * time.Hour)
		entry.ExpiresAt = &expires
	}

	if err := s.trash.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("file trashed",
		"file_id", file.ID,
		"organization_id", file.OrganizationID,
		"expires_at", entry.ExpiresAt,
	)
	return entry, nil
}

// Restore brings a trashed file back. The tombstone update is conditional
// on the entry being neither restored nor claimed by a purge run, so a
// reaper racing this call cannot delete the blob once the restore wins
// the row. Restoring a file with no live tombstone returns
// ErrTrashEntryNotFound.
func (s *Service) Restore(ctx context.Context, fileID, userID uuid.UUID) error {
	entry, err := s.trash.GetByFileID(ctx, fileID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, entry.OrganizationID, userID); err != nil {
		return err
	}

	if err := s.trash.Restore(ctx, fileID, s.now()); err != nil {
		return err
	}
	if err := s.files.ClearDeleted(ctx, fileID); err != nil {
		return err
	}

	s.logger.Info("file restored from trash", "file_id", fileID)
	return nil
}

// List returns the organization's active trash entries.
func (s *Service) List(ctx context.Context, orgID, userID uuid.UUID) ([]*domain.FileTrashEntry, error) {
	if err := s.authorize(ctx, orgID, userID); err != nil {
		return nil, err
	}
	return s.trash.ListByOrganization(ctx, orgID)
}
