package closure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/loomwork/retention/internal/domain"
)

// VacancyStore is the marketplace surface the checker depends on.
type VacancyStore interface {
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*domain.Vacancy, error)
	CountOpen(ctx context.Context, orgID uuid.UUID) (int, error)
	ArchiveAll(ctx context.Context, orgID, archiveID uuid.UUID) error
	DeleteArchived(ctx context.Context, archiveID uuid.UUID) error
}

// VacanciesChecker blocks closure while vacancies are still open on the
// marketplace, and snapshots vacancy history into the archive.
type VacanciesChecker struct {
	vacancies VacancyStore
}

// NewVacanciesChecker creates the vacancies closure checker.
func NewVacanciesChecker(vacancies VacancyStore) *VacanciesChecker {
	return &VacanciesChecker{vacancies: vacancies}
}

func (c *VacanciesChecker) ModuleID() string { return "vacancies" }

func (c *VacanciesChecker) Check(ctx context.Context, orgID uuid.UUID) (*CheckResult, error) {
	open, err := c.vacancies.CountOpen(ctx, orgID)
	if err != nil {
		return nil, err
	}

	all, err := c.vacancies.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	result := &CheckResult{}
	if open > 0 {
		result.Blockers = append(result.Blockers, domain.Blocker{
			ModuleID:       c.ModuleID(),
			Severity:       domain.SeverityBlocking,
			Type:           "open_vacancies",
			Title:          "open vacancies must be closed",
			Description:    fmt.Sprintf("%d vacancies are still published on the marketplace", open),
			ActionRequired: "close or unpublish all open vacancies",
		})
	}
	if drafts := countByStatus(all, domain.VacancyStatusDraft); drafts > 0 {
		result.Blockers = append(result.Blockers, domain.Blocker{
			ModuleID:    c.ModuleID(),
			Severity:    domain.SeverityWarning,
			Type:        "draft_vacancies",
			Title:       "unpublished drafts will be archived",
			Description: fmt.Sprintf("%d draft vacancies will be archived with the organization", drafts),
		})
	}
	if len(all) > 0 {
		result.ArchivableData = append(result.ArchivableData, domain.ArchivableItem{
			ModuleID:    c.ModuleID(),
			Type:        "vacancies",
			Title:       "vacancy history",
			Description: "closed vacancies and applicant counts",
			Count:       len(all),
		})
	}
	return result, nil
}

type vacancySnapshot struct {
	ID             uuid.UUID            `json:"id"`
	Title          string               `json:"title"`
	Status         domain.VacancyStatus `json:"status"`
	ApplicantCount int                  `json:"applicant_count"`
	CreatedAt      time.Time            `json:"created_at"`
}

func (c *VacanciesChecker) Archive(ctx context.Context, orgID, archiveID uuid.UUID) (json.RawMessage, error) {
	all, err := c.vacancies.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}

	snapshots := make([]vacancySnapshot, 0, len(all))
	for _, v := range all {
		snapshots = append(snapshots, vacancySnapshot{
			ID:             v.ID,
			Title:          v.Title,
			Status:         v.Status,
			ApplicantCount: v.ApplicantCount,
			CreatedAt:      v.CreatedAt,
		})
	}

	payload, err := json.Marshal(snapshots)
	if err != nil {
		return nil, err
	}

	if err := c.vacancies.ArchiveAll(ctx, orgID, archiveID); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *VacanciesChecker) DeleteArchived(ctx context.Context, archiveID uuid.UUID) error {
	return c.vacancies.DeleteArchived(ctx, archiveID)
}

func countByStatus(vacancies []*domain.Vacancy, status domain.VacancyStatus) int {
	n := 0
	for _, v := range vacancies {
		if v.Status == status {
			n++
		}
	}
	return n
}
