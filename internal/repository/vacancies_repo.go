package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/loomwork/retention/internal/domain"
)

// VacanciesRepository handles marketplace vacancy persistence for the
// closure engine.
type VacanciesRepository struct {
	db *sql.DB
}

// NewVacanciesRepository creates a new vacancies repository.
func NewVacanciesRepository(db *sql.DB) *VacanciesRepository {
	return &VacanciesRepository{db: db}
}

// ListByOrganization lists non-archived vacancies for an organization.
func (r *VacanciesRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*domain.Vacancy, error) {
	query := `
		SELECT id, organization_id, title, status, applicant_count, archive_id, created_at, updated_at
		FROM vacancies
		WHERE organization_id = $1 AND status != 'archived'
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vacancies []*domain.Vacancy
	for rows.Next() {
		v := &domain.Vacancy{}
		err := rows.Scan(
			&v.ID, &v.OrganizationID, &v.Title, &v.Status,
			&v.ApplicantCount, &v.ArchiveID, &v.CreatedAt, &v.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		vacancies = append(vacancies, v)
	}
	return vacancies, rows.Err()
}

// CountOpen counts vacancies still accepting applicants.
func (r *VacanciesRepository) CountOpen(ctx context.Context, orgID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM vacancies
		WHERE organization_id = $1 AND status = 'open'
	`
	var count int
	err := r.db.QueryRowContext(ctx, query, orgID).Scan(&count)
	return count, err
}

// ArchiveAll moves an organization's remaining vacancies into archived
// status under the given archive. Safe to re-run after a partial failure.
func (r *VacanciesRepository) ArchiveAll(ctx context.Context, orgID, archiveID uuid.UUID) error {
	query := `
		UPDATE vacancies
		SET status = 'archived', archive_id = $2, updated_at = NOW()
		WHERE organization_id = $1 AND status != 'archived'
	`
	_, err := r.db.ExecContext(ctx, query, orgID, archiveID)
	return err
}

// DeleteArchived purges vacancies owned by the given archive. Idempotent.
func (r *VacanciesRepository) DeleteArchived(ctx context.Context, archiveID uuid.UUID) error {
	query := `DELETE FROM vacancies WHERE archive_id = $1`
	_, err := r.db.ExecContext(ctx, query, archiveID)
	return err
}
