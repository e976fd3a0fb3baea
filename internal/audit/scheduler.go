package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs audit sweeps on a fixed interval.
type Scheduler struct {
	cron    *cron.Cron
	auditor *Auditor
	log     *slog.Logger
}

// NewScheduler creates a Scheduler that sweeps every interval.
func NewScheduler(a *Auditor, interval time.Duration, log *slog.Logger) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:    c,
		auditor: a,
		log:     log,
	}

	if _, err := c.AddFunc("@every "+interval.String(), s.runSweep); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins running scheduled sweeps.
func (s *Scheduler) Start() {
	s.log.Info("audit scheduler started")
	s.cron.Start()
}

// Stop gracefully stops the scheduler, waiting for a running sweep to
// finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("audit scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *Scheduler) runSweep() {
	if _, err := s.auditor.Sweep(context.Background()); err != nil {
		s.log.Error("audit sweep failed", "error", err)
	}
}
