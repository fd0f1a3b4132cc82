package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ArchiveStatus represents the lifecycle state of an organization archive.
type ArchiveStatus string

const (
	ArchiveStatusActive  ArchiveStatus = "active"
	ArchiveStatusExpired ArchiveStatus = "expired"
	ArchiveStatusDeleted ArchiveStatus = "deleted"
)

// OrganizationArchive is the bounded-lifetime retention record created
// atomically with the closing → closed transition. At most one active
// archive exists per organization. It doubles as the durable saga log:
// partial archive/purge failures are resumed by re-running the same
// operation against this row.
type OrganizationArchive struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	OwnerID        uuid.UUID
	Status         ArchiveStatus
	CreatedAt      time.Time
	ExpiresAt      time.Time
	// NotifiedAt marks the last expiry warning sent; nil means never
	// notified. Used as the idempotency marker for the notifier.
	NotifiedAt *time.Time
}

// ArchivedDocument is one checker's serialized snapshot tied to an archive.
type ArchivedDocument struct {
	ID             uuid.UUID
	ArchiveID      uuid.UUID
	SourceModuleID string
	Payload        json.RawMessage
	CreatedAt      time.Time
}
