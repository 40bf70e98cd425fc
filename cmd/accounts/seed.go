package main

import (
	"errors"
	"time"

	"github.com/orlanda/accounts/config"
	"github.com/orlanda/accounts/db"
	"github.com/orlanda/accounts/queue"
)

// seedRecurrentJobs makes sure the maintenance jobs exist. Reruns are
// harmless: a pending occurrence already in the queue hits the unique
// index and is kept as is.
func seedRecurrentJobs(dbQueue db.DbQueue, cfg *config.Config) error {
	jobs := []db.Job{
		{
			JobType:      queue.JobTypeOtpSweep,
			Recurrent:    true,
			Interval:     cfg.Otp.SweepInterval.Duration,
			ScheduledFor: time.Now().UTC(),
		},
		{
			JobType:      queue.JobTypeKeepalive,
			Recurrent:    true,
			Interval:     cfg.Scheduler.KeepaliveInterval.Duration,
			ScheduledFor: time.Now().UTC(),
		},
	}

	for _, job := range jobs {
		if err := dbQueue.InsertJob(job); err != nil && !errors.Is(err, db.ErrConstraintUnique) {
			return err
		}
	}
	return nil
}
