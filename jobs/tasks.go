package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportsWarmup is the task type for pre-building report caches.
	TaskReportsWarmup = "reports:warmup"
)

// ReportsWarmupPayload names the tenants whose reports should be pre-built.
type ReportsWarmupPayload struct {
	Tenants []string `json:"tenants"`
}

// NewReportsWarmupTask constructs an Asynq task.
func NewReportsWarmupTask(payload ReportsWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsWarmup, data), nil
}
