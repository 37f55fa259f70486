package jobs

import (
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAuthTokenSweep removes expired refresh tokens from the ledger.
	TaskAuthTokenSweep = "auth:refresh_tokens:sweep"
)

// NewTokenSweepTask constructs the periodic ledger sweep task. It carries no payload.
func NewTokenSweepTask() *asynq.Task {
	return asynq.NewTask(TaskAuthTokenSweep, nil, asynq.Queue(QueueDefault))
}
