package collector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron      *cron.Cron
	collector *Collector
	ctx       context.Context
}

func NewScheduler(ctx context.Context, col *Collector) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		collector: col,
		ctx:       ctx,
	}
}

// Register schedules the inbox scan. expr is a six-field cron expression
// with seconds, e.g. "0 0 6 * * 1" for Mondays at 06:00.
func (s *Scheduler) Register(expr string) error {
	if _, err := s.cron.AddFunc(expr, s.RunNow); err != nil {
		return fmt.Errorf("[Scheduler] register collect task %q: %w", expr, err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("[Scheduler] Scheduler started")
}

// Stop waits for a running scan to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("[Scheduler] Scheduler stopped")
}

func (s *Scheduler) RunNow() {
	slog.Info("[Scheduler] Running collect task")
	if _, err := s.collector.Collect(s.ctx); err != nil {
		slog.Error("[Scheduler] Collect task failed", slog.String("error", err.Error()))
	}
}
