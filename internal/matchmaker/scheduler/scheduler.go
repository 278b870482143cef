// Package scheduler periodically reloads the company catalog from its store.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Reloader re-reads the catalog.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Scheduler wraps robfig/cron and triggers catalog reloads.
type Scheduler struct {
	cron     *cron.Cron
	reloader Reloader
	logger   *zap.Logger
	spec     string
}

// New creates a Scheduler that reloads every interval.
func New(reloader Reloader, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		reloader: reloader,
		logger:   logger.Named("scheduler"),
		spec:     fmt.Sprintf("@every %s", interval),
	}
}

// Start registers the reload job and starts the cron loop. One reload also
// runs immediately in the background.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.reload(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc(%q): %w", s.spec, err)
	}
	s.cron.Start()
	s.logger.Info("Cron started", zap.String("spec", s.spec))

	go s.reload(ctx)
	return nil
}

// Stop stops the cron loop and waits for a running reload to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Cron stopped")
}

func (s *Scheduler) reload(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := s.reloader.Reload(ctx); err != nil {
		s.logger.Error("Catalog reload failed", zap.Error(err))
		return
	}
	s.logger.Info("Catalog reloaded", zap.Duration("took", time.Since(start)))
}
