package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/storeledger/backoffice/internal/jobs"
	"github.com/storeledger/backoffice/internal/reporting"
	"github.com/storeledger/backoffice/internal/reporting/export"
)

// ReportExportJob renders a report and stores it under StorageDir.
type ReportExportJob struct {
	Reports    ReportBuilder
	StorageDir string
	Logger     *slog.Logger
	Metrics    *jobmetrics.Metrics
	clock      func() time.Time
}

// NewReportExportJob wires dependencies for the export handler.
func NewReportExportJob(reports ReportBuilder, storageDir string, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportExportJob {
	return &ReportExportJob{
		Reports:    reports,
		StorageDir: storageDir,
		Logger:     logger,
		Metrics:    metrics,
		clock:      time.Now,
	}
}

// Handle processes report export tasks.
func (j *ReportExportJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Reports == nil || j.StorageDir == "" {
		return errors.New("report export: handler not configured")
	}
	var payload ReportExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("report export payload: %v: %w", err, asynq.SkipRetry)
	}
	format, ok := export.Lookup(payload.Format)
	if !ok {
		return fmt.Errorf("report export: unknown format %q: %w", payload.Format, asynq.SkipRetry)
	}
	g, err := reporting.ParseGranularity(payload.Granularity)
	if err != nil {
		return fmt.Errorf("report export: %v: %w", err, asynq.SkipRetry)
	}

	tracker := j.metrics().Track(TaskReportExport)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	period := payload.Period
	if period == "" {
		period = j.previousPeriod(g)
	}
	logger := j.logger().With(slog.String("granularity", string(g)), slog.String("period", period), slog.String("format", format.Ext))

	report, err := j.Reports.Report(ctx, string(g), period)
	if err != nil {
		logger.Error("build report", slog.Any("error", err))
		return err
	}
	data := export.NewPayload(report, j.now(), j.Reports.Location())

	var buf bytes.Buffer
	if err := format.Write(&buf, data); err != nil {
		logger.Error("render report", slog.Any("error", err))
		return err
	}
	path, err := writeFile(j.StorageDir, data.Filename(format.Ext), buf.Bytes())
	if err != nil {
		logger.Error("store report", slog.Any("error", err))
		return err
	}
	j.metrics().AddExportedBytes(format.Ext, buf.Len())
	logger.Info("report exported", slog.String("path", path), slog.Int("bytes", buf.Len()))
	return nil
}

// previousPeriod names the last complete period before now.
func (j *ReportExportJob) previousPeriod(g reporting.Granularity) string {
	now := j.now().In(j.Reports.Location())
	prev := reporting.PreviousWindow(reporting.WindowAt(g, now), g)
	return prev.Start.Format(g.Layout())
}

// writeFile replaces dir/name atomically.
func writeFile(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create storage dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close report: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename report: %w", err)
	}
	return path, nil
}

func (j *ReportExportJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportExport))
	}
	return slog.Default().With(slog.String("job", TaskReportExport))
}

func (j *ReportExportJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *ReportExportJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now()
}
