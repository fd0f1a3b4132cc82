package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/loomwork/retention/internal/domain"
)

// Notifier delivers owner-facing notifications for the retention engine.
type Notifier interface {
	// NotifyArchiveExpiry warns the archive's owner that purge is near.
	NotifyArchiveExpiry(ctx context.Context, archive *domain.OrganizationArchive, org *domain.Organization) error
}

// EmailLookup resolves a user ID to an email address. Empty string means
// the user is unknown.
type EmailLookup interface {
	GetEmailByID(ctx context.Context, id uuid.UUID) (string, error)
}

// EmailNotifier sends expiry warnings by email.
type EmailNotifier struct {
	email *EmailService
	users EmailLookup
}

// NewEmailNotifier creates a notifier backed by the SMTP email service.
func NewEmailNotifier(email *EmailService, users EmailLookup) *EmailNotifier {
	return &EmailNotifier{email: email, users: users}
}

func (n *EmailNotifier) NotifyArchiveExpiry(ctx context.Context, archive *domain.OrganizationArchive, org *domain.Organization) error {
	to, err := n.users.GetEmailByID(ctx, archive.OwnerID)
	if err != nil {
		return err
	}
	if to == "" {
		return fmt.Errorf("no email for owner %s", archive.OwnerID)
	}
	return n.email.SendArchiveExpiryWarning(to, org.Name, archive.ExpiresAt)
}

// LogNotifier logs instead of sending. Used when SMTP is not configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n *LogNotifier) NotifyArchiveExpiry(ctx context.Context, archive *domain.OrganizationArchive, org *domain.Organization) error {
	n.Logger.Info("archive expiry warning (email disabled)",
		"archive_id", archive.ID,
		"organization_id", archive.OrganizationID,
		"owner_id", archive.OwnerID,
		"expires_at", archive.ExpiresAt,
	)
	return nil
}
