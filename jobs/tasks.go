package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportWarmup rebuilds cached reports for the current periods.
	TaskReportWarmup = "report:warmup"
	// TaskReportExport writes a report file into the storage directory.
	TaskReportExport = "report:export"
)

// ReportWarmupPayload selects which granularities to warm. Empty means all.
type ReportWarmupPayload struct {
	Granularities []string `json:"granularities,omitempty"`
}

// ReportExportPayload describes one scheduled export. An empty Period
// selects the period before the current one.
type ReportExportPayload struct {
	Granularity string `json:"granularity"`
	Period      string `json:"period,omitempty"`
	Format      string `json:"format"`
}

// NewReportWarmupTask constructs a warmup task.
func NewReportWarmupTask(granularities ...string) (*asynq.Task, error) {
	data, err := json.Marshal(ReportWarmupPayload{Granularities: granularities})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportWarmup, data), nil
}

// NewReportExportTask constructs an export task.
func NewReportExportTask(payload ReportExportPayload) (*asynq.Task, error) {
	if payload.Granularity == "" || payload.Format == "" {
		return nil, fmt.Errorf("jobs: export task needs granularity and format")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportExport, data), nil
}
