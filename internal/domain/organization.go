package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrganizationStatus represents the lifecycle state of an organization.
// Closure is one-way: active → closing → closed. An organization never
// re-enters active once closure has started.
type OrganizationStatus string

const (
	OrganizationStatusActive   OrganizationStatus = "active"
	OrganizationStatusClosing  OrganizationStatus = "closing"
	OrganizationStatusClosed   OrganizationStatus = "closed"
	OrganizationStatusArchived OrganizationStatus = "archived"
	OrganizationStatusDeleted  OrganizationStatus = "deleted"
)

// Organization represents a tenant workspace.
type Organization struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	Name          string
	Status        OrganizationStatus
	ClosedAt      *time.Time
	ClosureReason *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsActive returns true if the organization is open for normal use.
func (o *Organization) IsActive() bool {
	return o.Status == OrganizationStatusActive
}
