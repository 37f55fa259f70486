package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/noah-isme/submission-service/internal/jobs"
)

// Sweeper deletes expired refresh-token records and reports how many were removed.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// TokenSweepJob purges expired refresh tokens on a schedule.
type TokenSweepJob struct {
	Ledger  Sweeper
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewTokenSweepJob initialises the sweep handler.
func NewTokenSweepJob(ledger Sweeper, logger *slog.Logger, metrics *jobmetrics.Metrics) *TokenSweepJob {
	return &TokenSweepJob{Ledger: ledger, Logger: logger, Metrics: metrics}
}

// Handle executes one sweep.
func (j *TokenSweepJob) Handle(ctx context.Context, _ *asynq.Task) (err error) {
	if j == nil || j.Ledger == nil {
		return errors.New("token sweep: handler not configured")
	}
	tracker := j.Metrics.Track("auth_refresh_tokens_sweep")
	defer func() { err = tracker.End(err) }()

	start := time.Now()
	removed, err := j.Ledger.SweepExpired(ctx)
	if err != nil {
		j.logger().Error("refresh token sweep failed", slog.Any("error", err))
		return err
	}
	j.Metrics.AddSwept(removed)
	j.logger().Info("refresh token sweep",
		slog.Int64("removed", removed),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *TokenSweepJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
