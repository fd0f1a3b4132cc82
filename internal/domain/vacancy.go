package domain

import (
	"time"

	"github.com/google/uuid"
)

// VacancyStatus represents the publication state of a marketplace vacancy.
type VacancyStatus string

const (
	VacancyStatusDraft    VacancyStatus = "draft"
	VacancyStatusOpen     VacancyStatus = "open"
	VacancyStatusClosed   VacancyStatus = "closed"
	VacancyStatusArchived VacancyStatus = "archived"
)

// Vacancy represents a marketplace job posting owned by an organization.
type Vacancy struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Title          string
	Status         VacancyStatus
	ApplicantCount int
	ArchiveID      *uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
