// Package plans resolves subscription-plan retention settings. The
// subscription system itself lives outside this service; only the lookup
// surface the closure engine needs is defined here.
package plans

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// Retention holds the plan-derived retention settings for an organization.
type Retention struct {
	// ArchiveDays is how long an organization archive survives after
	// closure before the cleaner may purge it.
	ArchiveDays int
	// TrashDays is how long a trashed file survives before the reaper may
	// purge it. Negative means infinite retention.
	TrashDays int
}

// Resolver resolves retention settings for an organization.
type Resolver interface {
	Resolve(ctx context.Context, orgID uuid.UUID) (Retention, error)
}

// Defaults is a Resolver that returns the same settings for every
// organization. Used when no subscription data is available and as the
// fallback inside PostgresResolver.
type Defaults struct {
	Retention Retention
}

func (d Defaults) Resolve(ctx context.Context, orgID uuid.UUID) (Retention, error) {
	return d.Retention, nil
}

// PostgresResolver reads retention settings from the organization's
// subscription row, falling back to defaults when the organization has no
// subscription or the plan leaves a field unset.
type PostgresResolver struct {
	db       *sql.DB
	defaults Retention
}

// NewPostgresResolver creates a new subscription-backed resolver.
func NewPostgresResolver(db *sql.DB, defaults Retention) *PostgresResolver {
	return &PostgresResolver{db: db, defaults: defaults}
}

func (r *PostgresResolver) Resolve(ctx context.Context, orgID uuid.UUID) (Retention, error) {
	query := `
		SELECT COALESCE(archive_retention_days, 0), COALESCE(trash_retention_days, 0)
		FROM subscriptions
		WHERE organization_id = $1 AND status = 'active'
	`
	var ret Retention
	err := r.db.QueryRowContext(ctx, query, orgID).Scan(&ret.ArchiveDays, &ret.TrashDays)
	if errors.Is(err, sql.ErrNoRows) {
		return r.defaults, nil
	}
	if err != nil {
		return Retention{}, err
	}

	if ret.ArchiveDays == 0 {
		ret.ArchiveDays = r.defaults.ArchiveDays
	}
	if ret.TrashDays == 0 {
		ret.TrashDays = r.defaults.TrashDays
	}
	return ret, nil
}
