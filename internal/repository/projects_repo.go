package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/loomwork/retention/internal/domain"
)

// ProjectsRepository handles project persistence for the closure engine.
type ProjectsRepository struct {
	db *sql.DB
}

// NewProjectsRepository creates a new projects repository.
func NewProjectsRepository(db *sql.DB) *ProjectsRepository {
	return &ProjectsRepository{db: db}
}

// ListByOrganization lists non-archived projects for an organization.
func (r *ProjectsRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*domain.Project, error) {
	query := `
		SELECT id, organization_id, name, status, archive_id, created_at, updated_at
		FROM projects
		WHERE organization_id = $1 AND status != 'archived'
		ORDER BY created_at
	`
	return r.scanMany(ctx, query, orgID)
}

// CountActive counts projects still in active status.
func (r *ProjectsRepository) CountActive(ctx context.Context, orgID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM projects
		WHERE organization_id = $1 AND status = 'active'
	`
	var count int
	err := r.db.QueryRowContext(ctx, query, orgID).Scan(&count)
	return count, err
}

// ArchiveAll moves an organization's remaining projects into archived
// status, stamping them with the archive that owns the snapshot. Projects
// already archived under the same archive are skipped, which makes a
// re-run after a partial failure a no-op for the rows it completed.
func (r *ProjectsRepository) ArchiveAll(ctx context.Context, orgID, archiveID uuid.UUID) error {
	query := `
		UPDATE projects
		SET status = 'archived', archive_id = $2, updated_at = NOW()
		WHERE organization_id = $1 AND status != 'archived'
	`
	_, err := r.db.ExecContext(ctx, query, orgID, archiveID)
	return err
}

// DeleteArchived purges projects owned by the given archive. Idempotent:
// a second call matches zero rows.
func (r *ProjectsRepository) DeleteArchived(ctx context.Context, archiveID uuid.UUID) error {
	query := `DELETE FROM projects WHERE archive_id = $1`
	_, err := r.db.ExecContext(ctx, query, archiveID)
	return err
}

func (r *ProjectsRepository) scanMany(ctx context.Context, query string, args ...any) ([]*domain.Project, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p := &domain.Project{}
		err := rows.Scan(
			&p.ID, &p.OrganizationID, &p.Name, &p.Status,
			&p.ArchiveID, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
