package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Closure errors
var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrNotOrganizationOwner = errors.New("only the organization owner may perform this action")
	ErrAlreadyClosed        = errors.New("organization is already closing or closed")
)

// Archive errors
var (
	ErrArchiveNotFound = errors.New("archive not found")
)

// File trash errors
var (
	ErrTrashEntryNotFound = errors.New("trash entry not found")
	ErrFileNotFound       = errors.New("file not found")
)

// Configuration errors
var (
	ErrCronSecretMissing = errors.New("CRON_SECRET is not configured")
)

// CloseBlockedError is returned when blocking-severity blockers remain at
// commit time. It carries the unresolved blockers so callers can enumerate
// them as "moduleId: title" pairs.
type CloseBlockedError struct {
	Blockers []Blocker
}

func (e *CloseBlockedError) Error() string {
	parts := make([]string, 0, len(e.Blockers))
	for _, b := range e.Blockers {
		parts = append(parts, fmt.Sprintf("%s: %s", b.ModuleID, b.Title))
	}
	return "organization cannot be closed: " + strings.Join(parts, "; ")
}
