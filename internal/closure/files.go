package closure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/loomwork/retention/internal/domain"
	"github.com/loomwork/retention/internal/storage"
)

// FileStore is the file-metadata surface the checker depends on.
type FileStore interface {
	ListVisibleByOrganization(ctx context.Context, orgID uuid.UUID) ([]*domain.File, error)
	ListArchived(ctx context.Context, archiveID uuid.UUID) ([]*domain.File, error)
	ArchiveAll(ctx context.Context, orgID, archiveID uuid.UUID) error
	DeleteArchived(ctx context.Context, archiveID uuid.UUID) error
}

// FilesChecker snapshots file metadata into the archive and purges both
// blobs and metadata when the archive expires. Files never block closure;
// large data sets are surfaced as a warning.
type FilesChecker struct {
	files FileStore
	blobs storage.BlobStore

	// warnAboveBytes sets the total size past which a warning blocker is
	// raised, reminding the owner to export before closing.
	warnAboveBytes int64
}

// NewFilesChecker creates the files closure checker.
func NewFilesChecker(files FileStore, blobs storage.BlobStore) *FilesChecker {
	return &FilesChecker{
		files:          files,
		blobs:          blobs,
		warnAboveBytes: 1 << 30, // 1 GiB
	}
}

func (c *FilesChecker) ModuleID() string { return "files" }

func (c *FilesChecker) Check(ctx context.Context, orgID uuid.UUID) (*CheckResult, error) {
	files, err := c.files.ListVisibleByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	result := &CheckResult{}
	if len(files) == 0 {
		return result, nil
	}

	var total int64
	for _, f := range files {
		total += f.Size
	}

	if total > c.warnAboveBytes {
		result.Blockers = append(result.Blockers, domain.Blocker{
			ModuleID:       c.ModuleID(),
			Severity:       domain.SeverityWarning,
			Type:           "large_file_set",
			Title:          "large amount of file data will be archived",
			Description:    fmt.Sprintf("%d files totalling %d bytes will be deleted when the archive expires", len(files), total),
			ActionRequired: "export files you want to keep before the archive expires",
		})
	}
	result.ArchivableData = append(result.ArchivableData, domain.ArchivableItem{
		ModuleID:    c.ModuleID(),
		Type:        "files",
		Title:       "uploaded files",
		Description: "file metadata; blobs are deleted when the archive expires",
		Count:       len(files),
	})
	return result, nil
}

type fileSnapshot struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	StorageKey string    `json:"storage_key"`
	CreatedAt  time.Time `json:"created_at"`
}

func (c *FilesChecker) Archive(ctx context.Context, orgID, archiveID uuid.UUID) (json.RawMessage, error) {
	files, err := c.files.ListVisibleByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if err := c.files.ArchiveAll(ctx, orgID, archiveID); err != nil {
		return nil, err
	}

	// On a re-run the visible set is empty (already archived); fall back
	// to the archived rows so the payload is rebuilt, not lost.
	if len(files) == 0 {
		files, err = c.files.ListArchived(ctx, archiveID)
		if err != nil {
			return nil, err
		}
	}
	if len(files) == 0 {
		return nil, nil
	}

	snapshots := make([]fileSnapshot, 0, len(files))
	for _, f := range files {
		snapshots = append(snapshots, fileSnapshot{
			ID:         f.ID,
			Name:       f.Name,
			Size:       f.Size,
			StorageKey: f.StorageKey,
			CreatedAt:  f.CreatedAt,
		})
	}
	return json.Marshal(snapshots)
}

// DeleteArchived removes blobs first, then the metadata rows. A blob
// delete failure aborts before any rows disappear, so the next cleaner
// run retries with the keys still on record.
func (c *FilesChecker) DeleteArchived(ctx context.Context, archiveID uuid.UUID) error {
	files, err := c.files.ListArchived(ctx, archiveID)
	if err != nil {
		return err
	}

	for _, f := range files {
		if err := c.blobs.Delete(ctx, f.StorageKey); err != nil {
			return fmt.Errorf("delete blob for file %s: %w", f.ID, err)
		}
	}
	return c.files.DeleteArchived(ctx, archiveID)
}
