package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/loomwork/retention/internal/domain"
)

// ArchivesRepository handles organization archive and archived document
// persistence.
type ArchivesRepository struct {
	db *sql.DB
}

// NewArchivesRepository creates a new archives repository.
func NewArchivesRepository(db *sql.DB) *ArchivesRepository {
	return &ArchivesRepository{db: db}
}

// Create creates a new archive.
func (r *ArchivesRepository) Create(ctx context.Context, archive *domain.OrganizationArchive) error {
	return r.CreateTx(ctx, r.db, archive)
}

// CreateTx creates a new archive within a transaction. The partial unique
// index on (organization_id) WHERE status = 'active' enforces at most one
// active archive per organization.
func (r *ArchivesRepository) CreateTx(ctx context.Context, q Querier, archive *domain.OrganizationArchive) error {
	query := `
		INSERT INTO organization_archives (id, organization_id, owner_id, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := q.ExecContext(ctx, query,
		archive.ID, archive.OrganizationID, archive.OwnerID,
		archive.Status, archive.CreatedAt, archive.ExpiresAt,
	)
	return err
}

// GetByID retrieves an archive by ID.
func (r *ArchivesRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.OrganizationArchive, error) {
	query := `
		SELECT id, organization_id, owner_id, status, created_at, expires_at, notified_at
		FROM organization_archives
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetActiveByOrganization retrieves the active archive for an organization.
func (r *ArchivesRepository) GetActiveByOrganization(ctx context.Context, orgID uuid.UUID) (*domain.OrganizationArchive, error) {
	query := `
		SELECT id, organization_id, owner_id, status, created_at, expires_at, notified_at
		FROM organization_archives
		WHERE organization_id = $1 AND status = 'active'
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, orgID))
}

// ListExpiringWithin lists active archives whose expiry falls inside the
// notification window [now, now+window].
func (r *ArchivesRepository) ListExpiringWithin(ctx context.Context, now time.Time, window time.Duration) ([]*domain.OrganizationArchive, error) {
	query := `
		SELECT id, organization_id, owner_id, status, created_at, expires_at, notified_at
		FROM organization_archives
		WHERE status = 'active' AND expires_at > $1 AND expires_at <= $2
		ORDER BY expires_at
	`
	return r.scanMany(ctx, query, now, now.Add(window))
}

// ListExpired lists active archives whose expiry has passed.
func (r *ArchivesRepository) ListExpired(ctx context.Context, now time.Time) ([]*domain.OrganizationArchive, error) {
	query := `
		SELECT id, organization_id, owner_id, status, created_at, expires_at, notified_at
		FROM organization_archives
		WHERE status = 'active' AND expires_at < $1
		ORDER BY expires_at
	`
	return r.scanMany(ctx, query, now)
}

// MarkNotified records an expiry warning for the given calendar day. The
// WHERE clause is the idempotency guard: a second notifier run on the same
// day (or a concurrent one) affects zero rows, and the caller skips the
// send. notified_at::date comparison keys idempotency to the calendar day.
func (r *ArchivesRepository) MarkNotified(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	query := `
		UPDATE organization_archives
		SET notified_at = $2
		WHERE id = $1 AND status = 'active'
		  AND (notified_at IS NULL OR notified_at::date < $2::date)
	`
	result, err := r.db.ExecContext(ctx, query, id, now)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// FinalizePurge claims the archive (active → deleted) and removes its
// documents in one transaction. The conditional claim means overlapping
// cleaner runs cannot both finalize the same archive; the loser gets
// false and skips.
func (r *ArchivesRepository) FinalizePurge(ctx context.Context, id uuid.UUID) (bool, error) {
	var claimed bool
	err := Tx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE organization_archives
			SET status = 'deleted'
			WHERE id = $1 AND status = 'active'
		`, id)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return nil
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM archived_documents WHERE archive_id = $1`, id); err != nil {
			return err
		}
		claimed = true
		return nil
	})
	return claimed, err
}

// InsertDocument stores one checker's serialized snapshot. Re-running the
// archive phase replaces the module's previous snapshot instead of
// duplicating it.
func (r *ArchivesRepository) InsertDocument(ctx context.Context, doc *domain.ArchivedDocument) error {
	query := `
		INSERT INTO archived_documents (id, archive_id, source_module_id, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (archive_id, source_module_id)
		DO UPDATE SET payload = EXCLUDED.payload, created_at = EXCLUDED.created_at
	`
	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.ArchiveID, doc.SourceModuleID, []byte(doc.Payload), doc.CreatedAt,
	)
	return err
}

func (r *ArchivesRepository) scanOne(row *sql.Row) (*domain.OrganizationArchive, error) {
	archive := &domain.OrganizationArchive{}
	err := row.Scan(
		&archive.ID, &archive.OrganizationID, &archive.OwnerID,
		&archive.Status, &archive.CreatedAt, &archive.ExpiresAt, &archive.NotifiedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrArchiveNotFound
	}
	if err != nil {
		return nil, err
	}
	return archive, nil
}

func (r *ArchivesRepository) scanMany(ctx context.Context, query string, args ...any) ([]*domain.OrganizationArchive, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var archives []*domain.OrganizationArchive
	for rows.Next() {
		archive := &domain.OrganizationArchive{}
		err := rows.Scan(
			&archive.ID, &archive.OrganizationID, &archive.OwnerID,
			&archive.Status, &archive.CreatedAt, &archive.ExpiresAt, &archive.NotifiedAt,
		)
		if err != nil {
			return nil, err
		}
		archives = append(archives, archive)
	}
	return archives, rows.Err()
}
