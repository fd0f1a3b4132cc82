package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/loomwork/retention/internal/domain"
)

// FilesRepository handles file metadata persistence.
type FilesRepository struct {
	db *sql.DB
}

// NewFilesRepository creates a new files repository.
func NewFilesRepository(db *sql.DB) *FilesRepository {
	return &FilesRepository{db: db}
}

// GetByID retrieves a file by ID, including soft-deleted files.
func (r *FilesRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.File, error) {
	query := `
		SELECT id, organization_id, name, size, storage_key, uploaded_by, created_at, deleted_at
		FROM files
		WHERE id = $1
	`
	f := &domain.File{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&f.ID, &f.OrganizationID, &f.Name, &f.Size,
		&f.StorageKey, &f.UploadedBy, &f.CreatedAt, &f.DeletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// ListVisibleByOrganization lists files that are not soft-deleted.
func (r *FilesRepository) ListVisibleByOrganization(ctx context.Context, orgID uuid.UUID) ([]*domain.File, error) {
	query := `
		SELECT id, organization_id, name, size, storage_key, uploaded_by, created_at, deleted_at
		FROM files
		WHERE organization_id = $1 AND deleted_at IS NULL
		ORDER BY created_at
	`
	return r.scanMany(ctx, query, orgID)
}

// ListArchived lists files stamped with the given archive, soft-deleted
// or not. Used by the purge phase to find storage keys to delete.
func (r *FilesRepository) ListArchived(ctx context.Context, archiveID uuid.UUID) ([]*domain.File, error) {
	query := `
		SELECT id, organization_id, name, size, storage_key, uploaded_by, created_at, deleted_at
		FROM files
		WHERE archive_id = $1
		ORDER BY created_at
	`
	return r.scanMany(ctx, query, archiveID)
}

// SoftDelete marks a file deleted. Conditional on it being visible so a
// double trash request fails with ErrFileNotFound instead of resetting
// the deletion time.
func (r *FilesRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE files
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrFileNotFound
	}
	return nil
}

// ClearDeleted makes a soft-deleted file visible again.
func (r *FilesRepository) ClearDeleted(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE files
		SET deleted_at = NULL
		WHERE id = $1 AND deleted_at IS NOT NULL
	`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// ArchiveAll soft-deletes an organization's remaining files and stamps
// them with the owning archive. Re-runs skip rows already stamped.
func (r *FilesRepository) ArchiveAll(ctx context.Context, orgID, archiveID uuid.UUID) error {
	query := `
		UPDATE files
		SET archive_id = $2, deleted_at = COALESCE(deleted_at, NOW())
		WHERE organization_id = $1 AND archive_id IS NULL
	`
	_, err := r.db.ExecContext(ctx, query, orgID, archiveID)
	return err
}

// Delete removes a file row.
func (r *FilesRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM files WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// DeleteArchived purges file rows owned by the given archive. Idempotent.
func (r *FilesRepository) DeleteArchived(ctx context.Context, archiveID uuid.UUID) error {
	query := `DELETE FROM files WHERE archive_id = $1`
	_, err := r.db.ExecContext(ctx, query, archiveID)
	return err
}

func (r *FilesRepository) scanMany(ctx context.Context, query string, args ...any) ([]*domain.File, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*domain.File
	for rows.Next() {
		f := &domain.File{}
		err := rows.Scan(
			&f.ID, &f.OrganizationID, &f.Name, &f.Size,
			&f.StorageKey, &f.UploadedBy, &f.CreatedAt, &f.DeletedAt,
		)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}
