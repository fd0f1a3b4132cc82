package domain

import (
	"time"

	"github.com/google/uuid"
)

// File represents stored file metadata. The blob itself lives in blob
// storage under StorageKey.
type File struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	Size           int64
	StorageKey     string
	UploadedBy     uuid.UUID
	CreatedAt      time.Time
	DeletedAt      *time.Time
}
