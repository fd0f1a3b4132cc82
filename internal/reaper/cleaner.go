package reaper

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/loomwork/retention/internal/closure"
	"github.com/loomwork/retention/internal/domain"
)

// CleanerArchiveStore is the archive surface the cleaner purges through.
// FinalizePurge atomically claims the archive and drops its documents,
// reporting false if a concurrent run claimed it first.
type CleanerArchiveStore interface {
	ListExpired(ctx context.Context, now time.Time) ([]*domain.OrganizationArchive, error)
	FinalizePurge(ctx context.Context, id uuid.UUID) (bool, error)
}

// OrganizationFinalizer marks the organization deleted once its archive
// is gone.
type OrganizationFinalizer interface {
	MarkDeleted(ctx context.Context, id uuid.UUID) error
}

// ArchiveCleaner purges expired archives. Purge is the third saga phase:
// every registered checker's DeleteArchived must succeed before any
// archive rows disappear; otherwise the archive stays active and the next
// run retries the whole purge, relying on checker idempotence.
type ArchiveCleaner struct {
	archives CleanerArchiveStore
	orgs     OrganizationFinalizer
	checkers []closure.Checker
	logger   *slog.Logger
	now      func() time.Time
}

// NewArchiveCleaner creates the archive cleaner over the same checker set
// the orchestrator uses.
func NewArchiveCleaner(archives CleanerArchiveStore, orgs OrganizationFinalizer, checkers []closure.Checker, logger *slog.Logger) *ArchiveCleaner {
	return &ArchiveCleaner{
		archives: archives,
		orgs:     orgs,
		checkers: checkers,
		logger:   logger,
		now:      time.Now,
	}
}

// Run purges every expired active archive. Returns the number purged.
// A per-archive failure leaves that archive active for the next run and
// never aborts the batch.
func (c *ArchiveCleaner) Run(ctx context.Context) (int, error) {
	archives, err := c.archives.ListExpired(ctx, c.now())
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, archive := range archives {
		if c.purge(ctx, archive) {
			purged++
		}
	}
	return purged, nil
}

func (c *ArchiveCleaner) purge(ctx context.Context, archive *domain.OrganizationArchive) bool {
	// Checkers run in registration order for ordered failure attribution.
	// All of them are re-invoked on every attempt; completed work is a
	// no-op by checker contract.
	for _, checker := range c.checkers {
		if err := checker.DeleteArchived(ctx, archive.ID); err != nil {
			c.logger.Error("checker purge failed, archive left for retry",
				"archive_id", archive.ID,
				"organization_id", archive.OrganizationID,
				"module", checker.ModuleID(),
				"error", err,
			)
			return false
		}
	}

	claimed, err := c.archives.FinalizePurge(ctx, archive.ID)
	if err != nil {
		c.logger.Error("failed to finalize archive purge",
			"archive_id", archive.ID, "error", err)
		return false
	}
	if !claimed {
		// A concurrent run finished first; nothing left to do.
		return false
	}

	if err := c.orgs.MarkDeleted(ctx, archive.OrganizationID); err != nil {
		c.logger.Error("failed to mark organization deleted",
			"organization_id", archive.OrganizationID, "error", err)
	}

	c.logger.Info("archive purged",
		"archive_id", archive.ID,
		"organization_id", archive.OrganizationID,
	)
	return true
}
