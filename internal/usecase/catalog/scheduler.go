package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler reloads the catalog on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	catalog *Catalog
	timeout time.Duration
	logger  *zap.Logger
}

// NewScheduler validates schedule (standard five-field cron syntax or
// descriptors such as "@every 5m") and registers the reload job.
func NewScheduler(c *Catalog, schedule string, timeout time.Duration, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(),
		catalog: c,
		timeout: timeout,
		logger:  logger,
	}
	if _, err := s.cron.AddFunc(schedule, s.job); err != nil {
		return nil, fmt.Errorf("add cron %q: %w", schedule, err)
	}
	return s, nil
}

// Start begins cron execution.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for a running reload.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) job() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	m, err := s.catalog.Reload(ctx)
	if err != nil {
		s.logger.Error("Scheduled index reload failed", zap.Error(err))
		return
	}
	s.logger.Info("Scheduled index reload done",
		zap.Time("built_at", m.BuiltAt),
		zap.String("fingerprint", m.Fingerprint),
	)
}
