package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/loomwork/retention/internal/domain"
)

// FileTrashRepository handles file trash tombstone persistence.
type FileTrashRepository struct {
	db *sql.DB
}

// NewFileTrashRepository creates a new file trash repository.
func NewFileTrashRepository(db *sql.DB) *FileTrashRepository {
	return &FileTrashRepository{db: db}
}

// Create inserts a tombstone for a soft-deleted file.
func (r *FileTrashRepository) Create(ctx context.Context, entry *domain.FileTrashEntry) error {
	query := `
		INSERT INTO file_trash (file_id, organization_id, deleted_by, deleted_at, expires_at, retention_days)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.FileID, entry.OrganizationID, entry.DeletedBy,
		entry.DeletedAt, entry.ExpiresAt, entry.RetentionDays,
	)
	return err
}

// GetByFileID retrieves the active (not yet restored) tombstone for a file.
func (r *FileTrashRepository) GetByFileID(ctx context.Context, fileID uuid.UUID) (*domain.FileTrashEntry, error) {
	query := `
		SELECT file_id, organization_id, deleted_by, deleted_at, expires_at, retention_days, restored_at, purged_at
		FROM file_trash
		WHERE file_id = $1 AND restored_at IS NULL
	`
	entry := &domain.FileTrashEntry{}
	err := r.db.QueryRowContext(ctx, query, fileID).Scan(
		&entry.FileID, &entry.OrganizationID, &entry.DeletedBy,
		&entry.DeletedAt, &entry.ExpiresAt, &entry.RetentionDays,
		&entry.RestoredAt, &entry.PurgedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTrashEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ListByOrganization lists active tombstones for an organization.
func (r *FileTrashRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*domain.FileTrashEntry, error) {
	query := `
		SELECT file_id, organization_id, deleted_by, deleted_at, expires_at, retention_days, restored_at, purged_at
		FROM file_trash
		WHERE organization_id = $1 AND restored_at IS NULL
		ORDER BY deleted_at DESC
	`
	return r.scanMany(ctx, query, orgID)
}

// ListPurgeable lists tombstones due for physical deletion: expired, never
// restored. Entries with NULL expires_at have infinite retention and are
// never returned.
func (r *FileTrashRepository) ListPurgeable(ctx context.Context, now time.Time) ([]*domain.FileTrashEntry, error) {
	query := `
		SELECT file_id, organization_id, deleted_by, deleted_at, expires_at, retention_days, restored_at, purged_at
		FROM file_trash
		WHERE restored_at IS NULL AND expires_at IS NOT NULL AND expires_at < $1
		ORDER BY expires_at
	`
	return r.scanMany(ctx, query, now)
}

// Restore marks the tombstone restored. Conditional on the entry being
// neither restored nor claimed for purge, so a reaper racing with the
// restore cannot purge a file the user just saved: whichever side wins
// the row, the other becomes a no-op.
func (r *FileTrashRepository) Restore(ctx context.Context, fileID uuid.UUID, restoredAt time.Time) error {
	query := `
		UPDATE file_trash
		SET restored_at = $2
		WHERE file_id = $1 AND restored_at IS NULL AND purged_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, fileID, restoredAt)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrTrashEntryNotFound
	}
	return nil
}

// ClaimForPurge marks the entry as being purged, before its blob is
// touched. The conditional update is the other half of the Restore race:
// a completed restore wins the row and the claim affects zero rows. An
// entry whose previous purge attempt crashed mid-way is claimed again.
func (r *FileTrashRepository) ClaimForPurge(ctx context.Context, fileID uuid.UUID, now time.Time) (bool, error) {
	query := `
		UPDATE file_trash
		SET purged_at = $2
		WHERE file_id = $1 AND restored_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, fileID, now)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// DeletePurged removes the tombstone after its blob has been deleted.
// Conditional on restored_at IS NULL for the same race as Restore.
func (r *FileTrashRepository) DeletePurged(ctx context.Context, fileID uuid.UUID) (bool, error) {
	query := `
		DELETE FROM file_trash
		WHERE file_id = $1 AND restored_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, fileID)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *FileTrashRepository) scanMany(ctx context.Context, query string, args ...any) ([]*domain.FileTrashEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.FileTrashEntry
	for rows.Next() {
		entry := &domain.FileTrashEntry{}
		err := rows.Scan(
			&entry.FileID, &entry.OrganizationID, &entry.DeletedBy,
			&entry.DeletedAt, &entry.ExpiresAt, &entry.RetentionDays,
			&entry.RestoredAt, &entry.PurgedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
