package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/gerai-erp/gerai/internal/reports"
)

// ReportsWarmupJob pre-computes the heavier report views into the cache so
// the first dashboard hit after an invalidation stays fast.
type ReportsWarmupJob struct {
	Reports *reports.Service
	Logger  *slog.Logger
}

// NewReportsWarmupJob initialises the warmup handler.
func NewReportsWarmupJob(svc *reports.Service, logger *slog.Logger) *ReportsWarmupJob {
	return &ReportsWarmupJob{Reports: svc, Logger: logger}
}

// Handle executes the warmup.
func (j *ReportsWarmupJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("reports warmup: handler not configured")
	}

	started := time.Now()
	if _, err := j.Reports.BalanceSheet(ctx); err != nil {
		return err
	}
	if _, err := j.Reports.ProfitLoss(ctx, time.Time{}, time.Time{}); err != nil {
		return err
	}
	j.Logger.Info("report warmup finished", slog.Duration("took", time.Since(started)))
	return nil
}
