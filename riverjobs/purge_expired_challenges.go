package riverjobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riverqueue/river"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/gharkaam/authcore/core"
)

type PurgeExpiredChallengesArgs struct {
	RetentionHours int `json:"retention_hours,omitempty"`
	BatchSize      int `json:"batch_size,omitempty"`
}

func (PurgeExpiredChallengesArgs) Kind() string { return "authcore_purge_expired_challenges" }

func (args PurgeExpiredChallengesArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue: river.QueueDefault,
		UniqueOpts: river.UniqueOpts{
			ByArgs:   true,
			ByPeriod: time.Hour,
			ByQueue:  true,
		},
	}
}

// PurgeExpiredChallengesWorker deletes OTP challenge rows whose expiry passed
// more than RetentionHours ago. The auth core never reads expired rows, so
// this is purely an operator hygiene job.
type PurgeExpiredChallengesWorker struct {
	river.WorkerDefaults[PurgeExpiredChallengesArgs]
	store core.ChallengeStore
	log   *zap.Logger
}

func NewPurgeExpiredChallengesWorker(store core.ChallengeStore, log *zap.Logger) *PurgeExpiredChallengesWorker {
	if log == nil {
		log = zap.NewNop()
	}
	return &PurgeExpiredChallengesWorker{store: store, log: log}
}

func (w *PurgeExpiredChallengesWorker) Timeout(*river.Job[PurgeExpiredChallengesArgs]) time.Duration {
	return 5 * time.Minute
}

func (w *PurgeExpiredChallengesWorker) Work(ctx context.Context, job *river.Job[PurgeExpiredChallengesArgs]) error {
	if w == nil || w.store == nil {
		return errors.New("purge: challenge store not configured")
	}
	retention := job.Args.RetentionHours
	if retention <= 0 {
		retention = 24
	}
	batch := job.Args.BatchSize
	if batch <= 0 {
		batch = 1000
	}

	cutoff := time.Now().Add(-time.Duration(retention) * time.Hour)
	n, err := w.store.DeleteExpiredBefore(ctx, cutoff, batch)
	if err != nil {
		return err
	}
	w.log.Info("purged expired otp challenges", zap.Int64("deleted", n))
	return nil
}

// RegisterPurgeWorker adds the challenge purge worker to a River registry.
func RegisterPurgeWorker(ws *river.Workers, store core.ChallengeStore, log *zap.Logger) {
	river.AddWorker(ws, NewPurgeExpiredChallengesWorker(store, log))
}

// NewPurgePeriodicJob builds the periodic job that enqueues the purge on a
// standard five-field cron schedule ("0 * * * *" runs hourly). The caller
// adds it to its River client's periodic jobs.
func NewPurgePeriodicJob(cronSpec string, args PurgeExpiredChallengesArgs, runOnStart bool) (*river.PeriodicJob, error) {
	schedule, err := cron.ParseStandard(cronSpec)
	if err != nil {
		return nil, fmt.Errorf("parse purge schedule %q: %w", cronSpec, err)
	}
	opts := args.InsertOpts()
	return river.NewPeriodicJob(
		schedule,
		func() (river.JobArgs, *river.InsertOpts) { return args, &opts },
		&river.PeriodicJobOpts{RunOnStart: runOnStart},
	), nil
}
