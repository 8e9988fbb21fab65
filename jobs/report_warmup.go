package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/storeledger/backoffice/internal/jobs"
	"github.com/storeledger/backoffice/internal/reporting"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// ReportBuilder is the reporting read side used by the jobs.
type ReportBuilder interface {
	Report(ctx context.Context, granularity, period string) (reporting.Report, error)
	Dashboard(ctx context.Context) (reporting.Dashboard, error)
	Location() *time.Location
}

var allGranularities = []reporting.Granularity{reporting.Daily, reporting.Monthly, reporting.Yearly}

// ReportWarmupJob pre-populates the report cache for today, this month and
// this year, plus the dashboard.
type ReportWarmupJob struct {
	Reports ReportBuilder
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	Timeout time.Duration
}

// NewReportWarmupJob wires dependencies for the warmup handler.
func NewReportWarmupJob(reports ReportBuilder, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportWarmupJob {
	return &ReportWarmupJob{Reports: reports, Logger: logger, Metrics: metrics, Timeout: 30 * time.Second}
}

// Handle processes report warmup tasks.
func (j *ReportWarmupJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Reports == nil {
		return errors.New("report warmup: handler not configured")
	}
	var payload ReportWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("report warmup payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	granularities, err := parseGranularities(payload.Granularities)
	if err != nil {
		return fmt.Errorf("report warmup: %v: %w", err, asynq.SkipRetry)
	}

	tracker := j.metrics().Track(TaskReportWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	start := time.Now()
	for _, g := range granularities {
		if err := j.warm(ctx, func(ctx context.Context) error {
			_, err := j.Reports.Report(ctx, string(g), "")
			return err
		}); err != nil {
			logger.Error("warm report", slog.String("granularity", string(g)), slog.Any("error", err))
			return err
		}
	}
	if err := j.warm(ctx, func(ctx context.Context) error {
		_, err := j.Reports.Dashboard(ctx)
		return err
	}); err != nil {
		logger.Error("warm dashboard", slog.Any("error", err))
		return err
	}

	logger.Info("completed report warmup", slog.Int("reports", len(granularities)), slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *ReportWarmupJob) warm(ctx context.Context, fn func(context.Context) error) error {
	timeout := j.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}

func (j *ReportWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportWarmup))
	}
	return slog.Default().With(slog.String("job", TaskReportWarmup))
}

func (j *ReportWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func parseGranularities(raw []string) ([]reporting.Granularity, error) {
	if len(raw) == 0 {
		return allGranularities, nil
	}
	out := make([]reporting.Granularity, 0, len(raw))
	for _, r := range raw {
		g, err := reporting.ParseGranularity(r)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}
