package scheduler

import (
	"sync/atomic"

	"github.com/robfig/cron/v3"

	"github.com/username/stonksoverwatch/backend/src/logger"
)

// Job is a unit of scheduled background work.
type Job interface {
	Name() string
	Run() error
}

// Scheduler runs background jobs on cron schedules. A job that is still
// running when its next tick fires is skipped, never run concurrently
// with itself.
type Scheduler struct {
	cron *cron.Cron
}

func New() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.L.Info("Scheduler started")
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.L.Info("Scheduler stopped")
}

// AddJob registers a job. Schedules use cron syntax or descriptors like
// "@every 15m".
func (s *Scheduler) AddJob(schedule string, job Job) error {
	var inFlight atomic.Bool

	_, err := s.cron.AddFunc(schedule, func() {
		if !inFlight.CompareAndSwap(false, true) {
			logger.L.Warn("Previous run still in progress, skipping", "job", job.Name())
			return
		}
		defer inFlight.Store(false)

		logger.L.Debug("Running job", "job", job.Name())
		if err := job.Run(); err != nil {
			logger.L.Error("Job failed", "job", job.Name(), "error", err)
			return
		}
		logger.L.Debug("Job completed", "job", job.Name())
	})
	if err != nil {
		return err
	}

	logger.L.Info("Job registered", "job", job.Name(), "schedule", schedule)
	return nil
}

// RunNow executes a job immediately, outside its schedule.
func (s *Scheduler) RunNow(job Job) error {
	logger.L.Info("Running job immediately", "job", job.Name())
	return job.Run()
}
