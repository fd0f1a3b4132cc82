package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProjectStatus represents the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusArchived  ProjectStatus = "archived"
)

// Project represents a workspace project.
type Project struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	Status         ProjectStatus
	// ArchiveID links the project to the organization archive that
	// snapshotted it at closure time.
	ArchiveID *uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}
