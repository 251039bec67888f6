package schedule

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs recurring background jobs on cron specs. Jobs receive a
// context that is cancelled when the scheduler stops.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func New(logger *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers a job under the given cron spec. Descriptors such as
// "@every 5m" are accepted alongside the standard five-field format.
func (s *Scheduler) Add(spec string, name string, job func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := job(s.ctx); err != nil {
			if s.logger != nil {
				s.logger.Error("scheduled job failed", "job", name, "error", err)
			}
			return
		}
		if s.logger != nil {
			s.logger.Debug("scheduled job finished", "job", name)
		}
	})
	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
	if s.logger != nil {
		s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	}
}

// Stop cancels the job context and waits for in-flight jobs to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	if s.logger != nil {
		s.logger.Info("scheduler stopped")
	}
}
