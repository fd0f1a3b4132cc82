// Package closure implements the organization closure engine: pluggable
// per-subsystem checkers and the orchestrator that drives the
// preview → archive → close workflow.
package closure

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/loomwork/retention/internal/domain"
)

// CheckResult is one checker's view of an organization.
type CheckResult struct {
	Blockers       []domain.Blocker
	ArchivableData []domain.ArchivableItem
}

// Checker is the capability one subsystem exposes to the closure engine.
// Adding a subsystem means implementing this interface and registering the
// implementation; the orchestrator never changes.
//
// Check must be side-effect-free and safe to call repeatedly and
// concurrently with other checkers. Archive and DeleteArchived must be
// idempotent: both are re-invoked after partial failures, and neither may
// assume any other checker has already run.
type Checker interface {
	// ModuleID identifies the subsystem in blockers, archived documents,
	// and logs.
	ModuleID() string

	// Check inspects the subsystem for blockers and archivable data.
	Check(ctx context.Context, orgID uuid.UUID) (*CheckResult, error)

	// Archive snapshots the subsystem's data under the given archive and
	// returns the serialized payload to persist, or nil if the subsystem
	// archives nothing.
	Archive(ctx context.Context, orgID, archiveID uuid.UUID) (json.RawMessage, error)

	// DeleteArchived purges whatever Archive produced. A no-op is valid.
	DeleteArchived(ctx context.Context, archiveID uuid.UUID) error
}

// failureBlocker converts a checker failure into a synthetic blocking
// blocker so the operator can see which subsystem could not be inspected.
func failureBlocker(moduleID string, err error) domain.Blocker {
	return domain.Blocker{
		ModuleID:       moduleID,
		Severity:       domain.SeverityBlocking,
		Type:           "check_failed",
		Title:          "subsystem check failed",
		Description:    fmt.Sprintf("the %s subsystem could not be inspected: %v", moduleID, err),
		ActionRequired: "retry, or contact support if the failure persists",
	}
}
