package jobs

import (
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrity re-derives both ledgers by summation and reports
	// any snapshot or balance that drifted from its log.
	TaskLedgerIntegrity = "ledger:integrity"
	// TaskReportsWarmup pre-computes the balance sheet into the cache.
	TaskReportsWarmup = "reports:warmup"
)

// NewLedgerIntegrityTask constructs the integrity check task.
func NewLedgerIntegrityTask() *asynq.Task {
	return asynq.NewTask(TaskLedgerIntegrity, nil)
}

// NewReportsWarmupTask constructs the report warmup task.
func NewReportsWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskReportsWarmup, nil)
}
