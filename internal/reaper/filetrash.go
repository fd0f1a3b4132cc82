package reaper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/loomwork/retention/internal/domain"
	"github.com/loomwork/retention/internal/storage"
)

// TrashStore is the tombstone surface the reaper purges through.
type TrashStore interface {
	ListPurgeable(ctx context.Context, now time.Time) ([]*domain.FileTrashEntry, error)
	ClaimForPurge(ctx context.Context, fileID uuid.UUID, now time.Time) (bool, error)
	DeletePurged(ctx context.Context, fileID uuid.UUID) (bool, error)
}

// TrashFileStore resolves and removes file metadata during purge.
type TrashFileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.File, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// FileTrashReaper purges expired, unrestored trash entries: blob first,
// then the tombstone and file row. The smaller twin of the archive
// cleaner, per-row rather than per-archive.
type FileTrashReaper struct {
	trash  TrashStore
	files  TrashFileStore
	blobs  storage.BlobStore
	logger *slog.Logger
	now    func() time.Time
}

// NewFileTrashReaper creates the file trash reaper.
func NewFileTrashReaper(trash TrashStore, files TrashFileStore, blobs storage.BlobStore, logger *slog.Logger) *FileTrashReaper {
	return &FileTrashReaper{
		trash:  trash,
		files:  files,
		blobs:  blobs,
		logger: logger,
		now:    time.Now,
	}
}

// Run purges every due trash entry. Returns the number purged. A storage
// failure aborts only that row, which stays in trash for the next run.
func (r *FileTrashReaper) Run(ctx context.Context) (int, error) {
	entries, err := r.trash.ListPurgeable(ctx, r.now())
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, entry := range entries {
		if r.purge(ctx, entry) {
			purged++
		}
	}
	return purged, nil
}

func (r *FileTrashReaper) purge(ctx context.Context, entry *domain.FileTrashEntry) bool {
	// Claim the tombstone before touching storage: a restore that lands
	// after the claim is rejected, so the blob is never deleted out from
	// under a restored file. The claim loses to a restore that landed
	// first, in which case the row is simply skipped.
	claimed, err := r.trash.ClaimForPurge(ctx, entry.FileID, r.now())
	if err != nil {
		r.logger.Error("failed to claim trash entry for purge",
			"file_id", entry.FileID, "error", err)
		return false
	}
	if !claimed {
		return false
	}

	file, err := r.files.GetByID(ctx, entry.FileID)
	if errors.Is(err, domain.ErrFileNotFound) {
		// Metadata already gone; drop the orphaned tombstone.
		if _, err := r.trash.DeletePurged(ctx, entry.FileID); err != nil {
			r.logger.Error("failed to drop orphaned trash entry",
				"file_id", entry.FileID, "error", err)
			return false
		}
		return true
	}
	if err != nil {
		r.logger.Error("failed to load file for purge",
			"file_id", entry.FileID, "error", err)
		return false
	}

	// The claim survives a failure here, so the next run re-claims and
	// retries with the storage key still on record.
	if err := r.blobs.Delete(ctx, file.StorageKey); err != nil {
		r.logger.Error("failed to delete blob, trash entry left for retry",
			"file_id", entry.FileID,
			"storage_key", file.StorageKey,
			"error", err,
		)
		return false
	}

	if _, err := r.trash.DeletePurged(ctx, entry.FileID); err != nil {
		r.logger.Error("failed to delete trash entry",
			"file_id", entry.FileID, "error", err)
		return false
	}

	if err := r.files.Delete(ctx, entry.FileID); err != nil {
		r.logger.Error("failed to delete file row after purge",
			"file_id", entry.FileID, "error", err)
		return false
	}

	r.logger.Info("trashed file purged",
		"file_id", entry.FileID,
		"organization_id", entry.OrganizationID,
	)
	return true
}
