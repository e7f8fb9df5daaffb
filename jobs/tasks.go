package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskFeesOverdueSweep flips past-due pending installments to late.
	TaskFeesOverdueSweep = "fees:overdue_sweep"
	// TaskReportsWarmup pre-populates the fee report caches.
	TaskReportsWarmup = "reports:warmup"
)

// OverdueSweepPayload parameterises an overdue sweep run. An empty AsOf
// means "now".
type OverdueSweepPayload struct {
	AsOf string `json:"asOf,omitempty"`
}

// NewOverdueSweepTask constructs an Asynq task for the sweep.
func NewOverdueSweepTask(payload OverdueSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFeesOverdueSweep, data), nil
}

// ReportsWarmupPayload parameterises a report warmup run.
type ReportsWarmupPayload struct {
	Scope string `json:"scope"`
}

// NewReportsWarmupTask constructs an Asynq task for cache warmup.
func NewReportsWarmupTask(scope string) (*asynq.Task, error) {
	data, err := json.Marshal(ReportsWarmupPayload{Scope: scope})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsWarmup, data), nil
}
