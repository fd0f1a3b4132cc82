package closure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/loomwork/retention/internal/domain"
)

// ProjectStore is the project surface the checker depends on.
type ProjectStore interface {
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*domain.Project, error)
	CountActive(ctx context.Context, orgID uuid.UUID) (int, error)
	ArchiveAll(ctx context.Context, orgID, archiveID uuid.UUID) error
	DeleteArchived(ctx context.Context, archiveID uuid.UUID) error
}

// ProjectsChecker blocks closure while projects are still active, and
// snapshots the organization's projects into the archive.
type ProjectsChecker struct {
	projects ProjectStore
}

// NewProjectsChecker creates the projects closure checker.
func NewProjectsChecker(projects ProjectStore) *ProjectsChecker {
	return &ProjectsChecker{projects: projects}
}

func (c *ProjectsChecker) ModuleID() string { return "projects" }

func (c *ProjectsChecker) Check(ctx context.Context, orgID uuid.UUID) (*CheckResult, error) {
	active, err := c.projects.CountActive(ctx, orgID)
	if err != nil {
		return nil, err
	}

	all, err := c.projects.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	result := &CheckResult{}
	if active > 0 {
		result.Blockers = append(result.Blockers, domain.Blocker{
			ModuleID:       c.ModuleID(),
			Severity:       domain.SeverityBlocking,
			Type:           "active_projects",
			Title:          "active projects must be completed or cancelled",
			Description:    fmt.Sprintf("%d projects are still active", active),
			ActionRequired: "complete or cancel all active projects",
		})
	}
	if len(all) > 0 {
		result.ArchivableData = append(result.ArchivableData, domain.ArchivableItem{
			ModuleID:    c.ModuleID(),
			Type:        "projects",
			Title:       "project history",
			Description: "completed project records and metadata",
			Count:       len(all),
		})
	}
	return result, nil
}

// projectSnapshot is the serialized form stored in the archive document.
type projectSnapshot struct {
	ID        uuid.UUID            `json:"id"`
	Name      string               `json:"name"`
	Status    domain.ProjectStatus `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
}

func (c *ProjectsChecker) Archive(ctx context.Context, orgID, archiveID uuid.UUID) (json.RawMessage, error) {
	all, err := c.projects.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}

	snapshots := make([]projectSnapshot, 0, len(all))
	for _, p := range all {
		snapshots = append(snapshots, projectSnapshot{
			ID:        p.ID,
			Name:      p.Name,
			Status:    p.Status,
			CreatedAt: p.CreatedAt,
		})
	}

	payload, err := json.Marshal(snapshots)
	if err != nil {
		return nil, err
	}

	if err := c.projects.ArchiveAll(ctx, orgID, archiveID); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *ProjectsChecker) DeleteArchived(ctx context.Context, archiveID uuid.UUID) error {
	return c.projects.DeleteArchived(ctx, archiveID)
}
