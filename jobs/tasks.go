// Package jobs wires background task processing on top of Asynq.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportWarmup refreshes the cached daily delivery report.
	TaskReportWarmup = "report:warmup"
)

// ReportWarmupPayload parameterizes a report warmup run.
type ReportWarmupPayload struct {
	Window int `json:"window"`
}

// NewReportWarmupTask constructs an Asynq task.
func NewReportWarmupTask(payload ReportWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportWarmup, data), nil
}
