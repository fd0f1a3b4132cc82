package domain

import (
	"time"

	"github.com/google/uuid"
)

// FileTrashEntry is the soft-delete tombstone for a file. The blob stays
// in storage until the reaper purges it or the entry is restored. A nil
// ExpiresAt means infinite retention: the reaper never touches the entry.
type FileTrashEntry struct {
	FileID         uuid.UUID
	OrganizationID uuid.UUID
	DeletedBy      uuid.UUID
	DeletedAt      time.Time
	ExpiresAt      *time.Time
	RetentionDays  int
	RestoredAt     *time.Time
	// PurgedAt marks the entry as claimed by a reaper run. A claimed
	// entry can no longer be restored: its blob may already be gone.
	PurgedAt *time.Time
}

// Purgeable returns true if the entry is due for physical deletion.
// Restored entries are permanently excluded, even when already due.
func (e *FileTrashEntry) Purgeable(now time.Time) bool {
	if e.RestoredAt != nil || e.ExpiresAt == nil {
		return false
	}
	return e.ExpiresAt.Before(now)
}
