package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// InstallmentSweeper marks past-due pending installments as late.
type InstallmentSweeper interface {
	MarkLateInstallments(ctx context.Context, asOf time.Time) (int64, error)
}

// CacheBumper invalidates derived report caches after a sweep mutates
// installment status.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// OverdueSweepJob runs the nightly late-status sweep over the fee ledger.
type OverdueSweepJob struct {
	Sweeper InstallmentSweeper
	Cache   CacheBumper
	Logger  *slog.Logger
	clock   func() time.Time
}

// NewOverdueSweepJob wires dependencies for the sweep handler.
func NewOverdueSweepJob(sweeper InstallmentSweeper, cache CacheBumper, logger *slog.Logger) *OverdueSweepJob {
	return &OverdueSweepJob{
		Sweeper: sweeper,
		Cache:   cache,
		Logger:  logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes overdue sweep tasks.
func (j *OverdueSweepJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Sweeper == nil {
		return errors.New("overdue sweep: handler not configured")
	}
	var payload OverdueSweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	asOf := j.now()
	if payload.AsOf != "" {
		parsed, err := time.Parse("2006-01-02", payload.AsOf)
		if err != nil {
			return asynq.SkipRetry
		}
		asOf = parsed
	}

	logger := j.logger()
	logger.Info("starting overdue sweep", slog.Time("as_of", asOf))

	flipped, err := j.Sweeper.MarkLateInstallments(ctx, asOf)
	if err != nil {
		logger.Error("mark late installments", slog.Any("error", err))
		return err
	}
	if flipped > 0 && j.Cache != nil {
		if err := j.Cache.Bump(ctx); err != nil {
			logger.Warn("bump report cache", slog.Any("error", err))
		}
	}

	logger.Info("completed overdue sweep", slog.Int64("flipped", flipped))
	return nil
}

func (j *OverdueSweepJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskFeesOverdueSweep))
	}
	return slog.Default().With(slog.String("job", TaskFeesOverdueSweep))
}

func (j *OverdueSweepJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
