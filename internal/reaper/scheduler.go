package reaper

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the three reaper jobs on an in-process cron schedule.
// Meant for single-instance deployments; multi-instance deployments
// trigger the cron HTTP endpoints from an external scheduler instead.
// Either way the jobs tolerate overlap, so running both does no harm.
type Scheduler struct {
	notifier *ExpiryNotifier
	cleaner  *ArchiveCleaner
	trash    *FileTrashReaper

	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	running  bool
	logger   *slog.Logger
}

// NewScheduler creates a scheduler for the given cron expression. An
// empty expression disables scheduling.
func NewScheduler(schedule string, notifier *ExpiryNotifier, cleaner *ArchiveCleaner, trash *FileTrashReaper, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		notifier: notifier,
		cleaner:  cleaner,
		trash:    trash,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start begins scheduled runs and stops them when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("reaper schedule not configured, relying on cron endpoints")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid reaper schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() { s.runAll(ctx) }); err != nil {
		return fmt.Errorf("schedule reapers: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("reaper scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

func (s *Scheduler) runAll(ctx context.Context) {
	if sent, err := s.notifier.Run(ctx); err != nil {
		s.logger.Error("scheduled expiry notifier failed", "error", err)
	} else if sent > 0 {
		s.logger.Info("scheduled expiry notifier completed", "sent", sent)
	}

	if purged, err := s.cleaner.Run(ctx); err != nil {
		s.logger.Error("scheduled archive cleaner failed", "error", err)
	} else if purged > 0 {
		s.logger.Info("scheduled archive cleaner completed", "purged", purged)
	}

	if purged, err := s.trash.Run(ctx); err != nil {
		s.logger.Error("scheduled file trash reaper failed", "error", err)
	} else if purged > 0 {
		s.logger.Info("scheduled file trash reaper completed", "purged", purged)
	}
}

// Stop stops the scheduler and waits for a running pass to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("reaper scheduler stopped")
	}
}
