package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

const jobName = "catalog_snapshot"

// Scheduler runs Export on a fixed interval. Runs never overlap: a run still
// in progress when the next tick fires causes that tick to be skipped.
type Scheduler struct {
	scheduler gocron.Scheduler
	exporter  *Exporter
	interval  time.Duration
	log       *zap.Logger
}

// NewScheduler registers the snapshot job. The scheduler does not run until Start.
func NewScheduler(exporter *Exporter, interval time.Duration, log *zap.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("snapshot interval must be positive, got %s", interval)
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	sch := &Scheduler{scheduler: s, exporter: exporter, interval: interval, log: log}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(sch.run),
		gocron.WithName(jobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("register %s job: %w", jobName, err)
	}
	return sch, nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	if _, err := s.exporter.Export(ctx); err != nil {
		s.log.Error("snapshot_job_failed", zap.String("job", jobName), zap.Error(err))
	}
}

// Start begins scheduling.
func (s *Scheduler) Start() {
	s.scheduler.Start()
	s.log.Info("snapshot_scheduler_started", zap.Duration("interval", s.interval))
}

// Shutdown stops the scheduler and waits for a running export to finish.
func (s *Scheduler) Shutdown() error {
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("shutdown scheduler: %w", err)
	}
	s.log.Info("snapshot_scheduler_stopped")
	return nil
}
