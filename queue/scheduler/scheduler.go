package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/orlanda/accounts/config"
	"github.com/orlanda/accounts/db"
	"github.com/orlanda/accounts/queue/executor"
)

// Scheduler periodically claims due jobs from the queue and runs them
// through the executor with bounded concurrency.
type Scheduler struct {
	cfg          config.Scheduler
	dbQueue      db.DbQueue
	executor     executor.JobExecutor
	logger       *slog.Logger
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownDone chan struct{}
}

// NewScheduler creates a new scheduler with executor
func NewScheduler(cfg config.Scheduler, dbQueue db.DbQueue, exec executor.JobExecutor, logger *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cfg:          cfg,
		dbQueue:      dbQueue,
		executor:     exec,
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
		shutdownDone: make(chan struct{}),
	}
}

// Start begins the claim loop in a long-running goroutine.
func (s *Scheduler) Start() {
	go func() {
		s.logger.Info("starting job scheduler", "interval", s.cfg.Interval.Duration)
		ticker := time.NewTicker(s.cfg.Interval.Duration)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				s.logger.Info("job scheduler received shutdown signal")
				close(s.shutdownDone)
				return
			case <-ticker.C:
				s.processJobs()
			}
		}
	}()
}

// Stop signals the scheduler to stop and waits for the current batch to
// complete or the context to be canceled, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.logger.Info("stopping job scheduler")
	s.cancel()

	select {
	case <-s.shutdownDone:
		s.logger.Info("job scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Info("job scheduler shutdown timed out")
		return ctx.Err()
	}
}

func (s *Scheduler) processJobs() {
	jobs, err := s.dbQueue.Claim(s.cfg.MaxJobsPerTick)
	if err != nil {
		s.logger.Error("failed to claim jobs", "err", err)
		return
	}
	if len(jobs) == 0 {
		return
	}

	s.logger.Info("claimed jobs", "count", len(jobs))

	g, ctx := errgroup.WithContext(s.ctx)
	g.SetLimit(runtime.NumCPU() * s.cfg.ConcurrencyMultiplier)

	for _, job := range jobs {
		jobCopy := job
		g.Go(func() error {
			jobCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
			defer cancel()

			err := s.executeJob(jobCtx, *jobCopy)
			s.finishJob(*jobCopy, err)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) {
			s.logger.Info("job batch interrupted due to scheduler shutdown")
		} else {
			s.logger.Error("error executing batch jobs", "err", err)
		}
	}
}

func (s *Scheduler) executeJob(ctx context.Context, job db.Job) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.logger.Info("starting job execution",
		"job_id", job.ID,
		"job_type", job.JobType,
		"attempt", job.Attempts)

	return s.executor.Execute(ctx, job)
}

// finishJob records the outcome. Successful recurrent jobs atomically insert
// their next occurrence so the chain never breaks.
func (s *Scheduler) finishJob(job db.Job, execErr error) {
	if execErr == nil {
		if job.Recurrent {
			next := db.Job{
				JobType:      job.JobType,
				Payload:      job.Payload,
				PayloadExtra: job.PayloadExtra,
				MaxAttempts:  job.MaxAttempts,
				ScheduledFor: time.Now().UTC().Add(job.Interval),
				Recurrent:    true,
				Interval:     job.Interval,
			}
			if err := s.dbQueue.MarkRecurrentCompleted(job.ID, next); err != nil {
				s.logger.Error("failed to mark recurrent job as completed", "job_id", job.ID, "err", err)
			}
			return
		}
		if err := s.dbQueue.MarkCompleted(job.ID); err != nil {
			s.logger.Error("failed to mark job as completed", "job_id", job.ID, "err", err)
		}
		return
	}

	msg := execErr.Error()
	switch {
	case errors.Is(execErr, context.DeadlineExceeded):
		msg = "job timeout reached: " + msg
	case errors.Is(execErr, context.Canceled):
		msg = "scheduler shutting down: " + msg
		s.logger.Info("job interrupted", "job_id", job.ID)
	}
	if err := s.dbQueue.MarkFailed(job.ID, msg); err != nil {
		s.logger.Error("failed to mark job as failed", "job_id", job.ID, "err", err)
	}
}
