// Package reaper contains the scheduled retention jobs: the expiry
// notifier, the archive cleaner, and the file-trash reaper. All three are
// idempotent commands: overlapping invocations degrade to no-ops through
// conditional state transitions on the owning rows, never through
// in-process locks.
package reaper

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/loomwork/retention/internal/domain"
	"github.com/loomwork/retention/internal/notification"
)

// DefaultNotifyWindow is how far ahead of expiry owners are warned.
const DefaultNotifyWindow = 7 * 24 * time.Hour

// NotifierArchiveStore is the archive surface the notifier reads and claims.
type NotifierArchiveStore interface {
	ListExpiringWithin(ctx context.Context, now time.Time, window time.Duration) ([]*domain.OrganizationArchive, error)
	MarkNotified(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
}

// OrganizationReader loads organizations for notification context.
type OrganizationReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error)
}

// ExpiryNotifier warns archive owners ahead of purge. At most one warning
// per archive per calendar day, across any number of runs or instances.
type ExpiryNotifier struct {
	archives NotifierArchiveStore
	orgs     OrganizationReader
	notify   notification.Notifier
	window   time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewExpiryNotifier creates the expiry notifier.
func NewExpiryNotifier(archives NotifierArchiveStore, orgs OrganizationReader, notify notification.Notifier, window time.Duration, logger *slog.Logger) *ExpiryNotifier {
	if window <= 0 {
		window = DefaultNotifyWindow
	}
	return &ExpiryNotifier{
		archives: archives,
		orgs:     orgs,
		notify:   notify,
		window:   window,
		logger:   logger,
		now:      time.Now,
	}
}

// Run scans active archives expiring within the window and notifies
// owners not yet notified today. Returns the number of notifications sent.
//
// The MarkNotified compare-and-swap is the claim: it runs before the send
// so a concurrent run cannot double-notify. A failed send after a won
// claim is logged and retried the next calendar day; losing one warning
// beats sending duplicates.
func (n *ExpiryNotifier) Run(ctx context.Context) (int, error) {
	now := n.now()
	archives, err := n.archives.ListExpiringWithin(ctx, now, n.window)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, archive := range archives {
		claimed, err := n.archives.MarkNotified(ctx, archive.ID, now)
		if err != nil {
			n.logger.Error("failed to claim archive for notification",
				"archive_id", archive.ID, "error", err)
			continue
		}
		if !claimed {
			continue
		}

		org, err := n.orgs.GetByID(ctx, archive.OrganizationID)
		if err != nil {
			n.logger.Error("failed to load organization for notification",
				"archive_id", archive.ID,
				"organization_id", archive.OrganizationID,
				"error", err,
			)
			continue
		}

		if err := n.notify.NotifyArchiveExpiry(ctx, archive, org); err != nil {
			n.logger.Error("failed to send expiry warning",
				"archive_id", archive.ID,
				"owner_id", archive.OwnerID,
				"error", err,
			)
			continue
		}

		n.logger.Info("expiry warning sent",
			"archive_id", archive.ID,
			"organization_id", archive.OrganizationID,
			"expires_at", archive.ExpiresAt,
		)
		sent++
	}
	return sent, nil
}
