package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/loomwork/retention/internal/domain"
)

// OrganizationsRepository handles organization persistence.
type OrganizationsRepository struct {
	db *sql.DB
}

// NewOrganizationsRepository creates a new organizations repository.
func NewOrganizationsRepository(db *sql.DB) *OrganizationsRepository {
	return &OrganizationsRepository{db: db}
}

// Create creates a new organization.
func (r *OrganizationsRepository) Create(ctx context.Context, org *domain.Organization) error {
	query := `
		INSERT INTO organizations (id, owner_id, name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		org.ID, org.OwnerID, org.Name, org.Status, org.CreatedAt, org.UpdatedAt,
	)
	return err
}

// GetByID retrieves an organization by ID.
func (r *OrganizationsRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	query := `
		SELECT id, owner_id, name, status, closed_at, closure_reason, created_at, updated_at
		FROM organizations
		WHERE id = $1 AND status != 'deleted'
	`
	org := &domain.Organization{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&org.ID, &org.OwnerID, &org.Name, &org.Status,
		&org.ClosedAt, &org.ClosureReason, &org.CreatedAt, &org.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrganizationNotFound
	}
	if err != nil {
		return nil, err
	}
	return org, nil
}

// BeginClosing transitions the organization from active to closing. The
// WHERE clause makes the transition a compare-and-swap: a concurrent
// initiate on the same organization loses the race and gets
// ErrAlreadyClosed instead of re-entering the workflow.
func (r *OrganizationsRepository) BeginClosing(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE organizations
		SET status = 'closing', updated_at = NOW()
		WHERE id = $1 AND status = 'active'
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
		return domain.ErrAlreadyClosed
	}
	return nil
}

// MarkClosed completes the closure: closing → closed, recording the close
// time and reason.
func (r *OrganizationsRepository) MarkClosed(ctx context.Context, id uuid.UUID, closedAt time.Time, reason *string) error {
	query := `
		UPDATE organizations
		SET status = 'closed', closed_at = $2, closure_reason = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'closing'
	`
	result, err := r.db.ExecContext(ctx, query, id, closedAt, reason)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrAlreadyClosed
	}
	return nil
}

// ReopenFromClosing rolls the organization back from closing to active.
// Only valid before the archive row exists, when the commit-time re-check
// found unresolved blockers.
func (r *OrganizationsRepository) ReopenFromClosing(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE organizations
		SET status = 'active', updated_at = NOW()
		WHERE id = $1 AND status = 'closing'
	`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// MarkDeleted marks an organization as deleted after its archive has been
// purged. Accepts closing as well as closed: an interrupted close that was
// never resumed still finalizes once its archive expires.
func (r *OrganizationsRepository) MarkDeleted(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE organizations
		SET status = 'deleted', updated_at = NOW()
		WHERE id = $1 AND status IN ('closing', 'closed')
	`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
