package closure

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/loomwork/retention/internal/domain"
	"github.com/loomwork/retention/internal/plans"
)

const (
	// DefaultCheckTimeout bounds each checker's Check call. A timed-out
	// checker is reported as a blocking blocker, never treated as success.
	DefaultCheckTimeout = 10 * time.Second

	// maxConcurrentChecks bounds the preview fan-out.
	maxConcurrentChecks = 4
)

// OrganizationStore is the organization surface the orchestrator mutates.
type OrganizationStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error)
	BeginClosing(ctx context.Context, id uuid.UUID) error
	ReopenFromClosing(ctx context.Context, id uuid.UUID) error
	MarkClosed(ctx context.Context, id uuid.UUID, closedAt time.Time, reason *string) error
}

// ArchiveStore persists retention records and archived documents.
type ArchiveStore interface {
	Create(ctx context.Context, archive *domain.OrganizationArchive) error
	GetActiveByOrganization(ctx context.Context, orgID uuid.UUID) (*domain.OrganizationArchive, error)
	InsertDocument(ctx context.Context, doc *domain.ArchivedDocument) error
}

// Result is the outcome of a successful InitiateClosing call.
type Result struct {
	Archive *domain.OrganizationArchive `json:"archive"`
	// Warnings are the warning-severity blockers present at commit time.
	Warnings []domain.Blocker `json:"warnings"`
	// ArchivedModules lists checkers whose archive phase succeeded.
	ArchivedModules []string `json:"archived_modules"`
	// FailedModules lists checkers whose archive phase failed. Their work
	// is recovered by support tooling re-running the archive phase; the
	// closure itself still commits.
	FailedModules []string `json:"failed_modules,omitempty"`
}

// Orchestrator owns organization status transitions and fans out to the
// registered checkers. Checker registration order is fixed: the archive
// and purge phases run in that order for reproducible logs.
type Orchestrator struct {
	orgs     OrganizationStore
	archives ArchiveStore
	plans    plans.Resolver
	checkers []Checker

	checkTimeout time.Duration
	logger       *slog.Logger
	now          func() time.Time
}

// NewOrchestrator creates a closure orchestrator over the given checkers.
func NewOrchestrator(orgs OrganizationStore, archives ArchiveStore, resolver plans.Resolver, checkers []Checker, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		orgs:         orgs,
		archives:     archives,
		plans:        resolver,
		checkers:     checkers,
		checkTimeout: DefaultCheckTimeout,
		logger:       logger,
		now:          time.Now,
	}
}

// SetCheckTimeout overrides the per-checker Check deadline. Non-positive
// values are ignored.
func (o *Orchestrator) SetCheckTimeout(d time.Duration) {
	if d > 0 {
		o.checkTimeout = d
	}
}

// Checkers returns the registered checkers in registration order. The
// archive cleaner purges through the same set.
func (o *Orchestrator) Checkers() []Checker {
	return o.checkers
}

// GetClosurePreview returns the blockers and archivable data an attempt to
// close the organization would encounter right now. Read-only: safe to
// call any number of times.
func (o *Orchestrator) GetClosurePreview(ctx context.Context, orgID, userID uuid.UUID) (*domain.ClosurePreview, error) {
	if _, err := o.guard(ctx, orgID, userID); err != nil {
		return nil, err
	}
	return o.runChecks(ctx, orgID), nil
}

// InitiateClosing closes the organization: re-runs every checker, refuses
// if blocking blockers remain, then creates the retention archive and
// runs each checker's archive phase before marking the organization
// closed.
//
// The archive phase is the best-effort commit of a saga, not a
// transaction: per-checker failures are logged and the rest proceed, with
// the archive row as the durable log that makes re-runs safe.
//
// A previous attempt that failed partway leaves the organization in
// closing; calling InitiateClosing again resumes it instead of failing
// with ALREADY_CLOSED. The resume re-runs the idempotent archive phase
// against the existing archive row (or creates one if none exists yet)
// and retries the final closed transition.
func (o *Orchestrator) InitiateClosing(ctx context.Context, orgID, userID uuid.UUID, reason *string) (*Result, error) {
	org, err := o.orgs.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org.OwnerID != userID {
		return nil, domain.ErrNotOrganizationOwner
	}

	var archive *domain.OrganizationArchive
	switch org.Status {
	case domain.OrganizationStatusActive:
		// Claim the organization. A concurrent initiate loses this
		// compare-and-swap and fails fast.
		if err := o.orgs.BeginClosing(ctx, orgID); err != nil {
			return nil, err
		}
	case domain.OrganizationStatusClosing:
		// Resume: the archive row, if one was created, is the saga log.
		archive, err = o.archives.GetActiveByOrganization(ctx, orgID)
		if err != nil && !errors.Is(err, domain.ErrArchiveNotFound) {
			return nil, err
		}
		o.logger.Info("resuming interrupted closure",
			"organization_id", orgID, "archive_exists", archive != nil)
	default:
		return nil, domain.ErrAlreadyClosed
	}

	var warnings []domain.Blocker
	if archive == nil {
		// First attempt, or a resume that died before the archive row was
		// written: nothing has committed, so blockers are re-checked and a
		// blocked close can still roll the claim back. A stale preview
		// must never authorize a close; the client's view is ignored
		// entirely.
		preview := o.runChecks(ctx, orgID)
		if preview.HasBlocking() {
			if err := o.orgs.ReopenFromClosing(ctx, orgID); err != nil {
				o.logger.Error("failed to reopen organization after blocked close",
					"organization_id", orgID, "error", err)
			}
			return nil, &domain.CloseBlockedError{Blockers: preview.BlockingOnly()}
		}
		warnings = warningsOnly(preview.Blockers)

		retention, err := o.plans.Resolve(ctx, orgID)
		if err != nil {
			if rerr := o.orgs.ReopenFromClosing(ctx, orgID); rerr != nil {
				o.logger.Error("failed to reopen organization after plan lookup failure",
					"organization_id", orgID, "error", rerr)
			}
			return nil, err
		}

		now := o.now()
		archive = &domain.OrganizationArchive{
			ID:             uuid.New(),
			OrganizationID: orgID,
			OwnerID:        org.OwnerID,
			Status:         domain.ArchiveStatusActive,
			CreatedAt:      now,
			ExpiresAt:      now.Add(time.Duration(retention.ArchiveDays) * 24 * time.Hour),
		}
		if err := o.archives.Create(ctx, archive); err != nil {
			if rerr := o.orgs.ReopenFromClosing(ctx, orgID); rerr != nil {
				o.logger.Error("failed to reopen organization after archive create failure",
					"organization_id", orgID, "error", rerr)
			}
			return nil, err
		}
	}

	result := &Result{
		Archive:  archive,
		Warnings: warnings,
	}

	// Archive phase: sequential, registration order, failures logged and
	// not re-thrown. Checkers already archived are not rolled back.
	for _, c := range o.checkers {
		payload, err := c.Archive(ctx, orgID, archive.ID)
		if err != nil {
			o.logger.Error("checker archive failed",
				"organization_id", orgID,
				"archive_id", archive.ID,
				"module", c.ModuleID(),
				"error", err,
			)
			result.FailedModules = append(result.FailedModules, c.ModuleID())
			continue
		}
		if payload != nil {
			doc := &domain.ArchivedDocument{
				ID:             uuid.New(),
				ArchiveID:      archive.ID,
				SourceModuleID: c.ModuleID(),
				Payload:        payload,
				CreatedAt:      o.now(),
			}
			if err := o.archives.InsertDocument(ctx, doc); err != nil {
				o.logger.Error("failed to persist archived document",
					"archive_id", archive.ID,
					"module", c.ModuleID(),
					"error", err,
				)
				result.FailedModules = append(result.FailedModules, c.ModuleID())
				continue
			}
		}
		result.ArchivedModules = append(result.ArchivedModules, c.ModuleID())
	}

	if err := o.orgs.MarkClosed(ctx, orgID, o.now(), reason); err != nil {
		return nil, err
	}

	o.logger.Info("organization closed",
		"organization_id", orgID,
		"archive_id", archive.ID,
		"expires_at", archive.ExpiresAt,
		"archived_modules", result.ArchivedModules,
		"failed_modules", result.FailedModules,
	)
	return result, nil
}

// guard loads the organization and enforces the preview preconditions:
// caller is the owner and the organization is still active.
func (o *Orchestrator) guard(ctx context.Context, orgID, userID uuid.UUID) (*domain.Organization, error) {
	org, err := o.orgs.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org.OwnerID != userID {
		return nil, domain.ErrNotOrganizationOwner
	}
	if !org.IsActive() {
		return nil, domain.ErrAlreadyClosed
	}
	return org, nil
}

// runChecks fans Check out to every registered checker with bounded
// concurrency and a per-checker timeout. One checker's failure never
// cancels the others: it becomes a synthetic blocking blocker instead.
// Results are merged in registration order so output is deterministic.
func (o *Orchestrator) runChecks(ctx context.Context, orgID uuid.UUID) *domain.ClosurePreview {
	results := make([]*CheckResult, len(o.checkers))

	sem := make(chan struct{}, maxConcurrentChecks)
	var wg sync.WaitGroup
	for i, c := range o.checkers {
		wg.Add(1)
		go func(i int, c Checker) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			cctx, cancel := context.WithTimeout(ctx, o.checkTimeout)
			defer cancel()

			res, err := c.Check(cctx, orgID)
			if err != nil {
				o.logger.Warn("closure check failed",
					"organization_id", orgID,
					"module", c.ModuleID(),
					"error", err,
				)
				res = &CheckResult{Blockers: []domain.Blocker{failureBlocker(c.ModuleID(), err)}}
			}
			if res == nil {
				// A nil result with a nil error means nothing to report.
				res = &CheckResult{}
			}
			results[i] = res
		}(i, c)
	}
	wg.Wait()

	preview := &domain.ClosurePreview{
		Blockers:       []domain.Blocker{},
		ArchivableData: []domain.ArchivableItem{},
	}
	for _, res := range results {
		preview.Blockers = append(preview.Blockers, res.Blockers...)
		preview.ArchivableData = append(preview.ArchivableData, res.ArchivableData...)
	}
	return preview
}

func warningsOnly(blockers []domain.Blocker) []domain.Blocker {
	var out []domain.Blocker
	for _, b := range blockers {
		if b.Severity == domain.SeverityWarning {
			out = append(out, b)
		}
	}
	return out
}
