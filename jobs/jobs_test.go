package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/storeledger/backoffice/internal/jobs"
	"github.com/storeledger/backoffice/internal/reporting"
)

type fakeReports struct {
	calls      []string
	dashboards int
	err        error
}

func (f *fakeReports) Report(_ context.Context, granularity, period string) (reporting.Report, error) {
	f.calls = append(f.calls, granularity+":"+period)
	if f.err != nil {
		return reporting.Report{}, f.err
	}
	g, _ := reporting.ParseGranularity(granularity)
	w, _ := reporting.WindowFor(g, period, time.UTC)
	return reporting.Report{
		Granularity: g,
		Period:      period,
		Current:     reporting.BuildSnapshot(nil, nil, w, 5),
	}, nil
}

func (f *fakeReports) Dashboard(context.Context) (reporting.Dashboard, error) {
	f.dashboards++
	return reporting.Dashboard{}, f.err
}

func (f *fakeReports) Location() *time.Location { return time.UTC }

func testMetrics() *jobmetrics.Metrics {
	return jobmetrics.NewMetrics(prometheus.NewRegistry())
}

func TestReportWarmupWarmsEveryGranularity(t *testing.T) {
	reports := &fakeReports{}
	job := NewReportWarmupJob(reports, nil, testMetrics())

	task, err := NewReportWarmupTask()
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	assert.Equal(t, []string{"daily:", "monthly:", "yearly:"}, reports.calls)
	assert.Equal(t, 1, reports.dashboards)
}

func TestReportWarmupSubsetAndBadPayload(t *testing.T) {
	reports := &fakeReports{}
	job := NewReportWarmupJob(reports, nil, testMetrics())

	task, err := NewReportWarmupTask("month")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, []string{"monthly:"}, reports.calls)

	bad, err := NewReportWarmupTask("weekly")
	require.NoError(t, err)
	assert.ErrorIs(t, job.Handle(context.Background(), bad), asynq.SkipRetry)
}

func TestReportWarmupPropagatesFailure(t *testing.T) {
	reports := &fakeReports{err: errors.New("db down")}
	job := NewReportWarmupJob(reports, nil, testMetrics())

	task, err := NewReportWarmupTask()
	require.NoError(t, err)
	assert.Error(t, job.Handle(context.Background(), task))
}

func TestReportExportWritesPreviousPeriod(t *testing.T) {
	dir := t.TempDir()
	reports := &fakeReports{}
	job := NewReportExportJob(reports, dir, nil, testMetrics())
	job.clock = func() time.Time { return time.Date(2024, 3, 21, 9, 0, 0, 0, time.UTC) }

	task, err := NewReportExportTask(ReportExportPayload{Granularity: "monthly", Format: "xlsx"})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	assert.Equal(t, []string{"monthly:2024-02"}, reports.calls)
	info, err := os.Stat(filepath.Join(dir, "report-monthly-2024-02.xlsx"))
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestReportExportExplicitPeriodCSV(t *testing.T) {
	dir := t.TempDir()
	job := NewReportExportJob(&fakeReports{}, dir, nil, testMetrics())

	task, err := NewReportExportTask(ReportExportPayload{Granularity: "yearly", Period: "2023", Format: "csv"})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	body, err := os.ReadFile(filepath.Join(dir, "report-yearly-2023.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(body), "SALES DATA")
}

func TestReportExportUnknownFormatSkipsRetry(t *testing.T) {
	job := NewReportExportJob(&fakeReports{}, t.TempDir(), nil, testMetrics())
	task := asynq.NewTask(TaskReportExport, []byte(`{"granularity":"monthly","format":"docx"}`))
	assert.ErrorIs(t, job.Handle(context.Background(), task), asynq.SkipRetry)
}

func TestNewReportExportTaskNeedsFields(t *testing.T) {
	_, err := NewReportExportTask(ReportExportPayload{Granularity: "monthly"})
	assert.Error(t, err)
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Type: task.Type()}, nil
}

type fakeInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (f fakeInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) { return f.info, f.err }

func newJobsRouter(enq *fakeEnqueuer, inspector QueueInspector) http.Handler {
	r := chi.NewRouter()
	NewHandler(inspector, &Client{client: enq}, nil).MountRoutes(r)
	return r
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHandlerEnqueuesExport(t *testing.T) {
	enq := &fakeEnqueuer{}
	router := newJobsRouter(enq, nil)

	rr := serve(router, http.MethodPost, "/exports", `{"granularity":"monthly","period":"2024-02","format":"pdf"}`)
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())
	require.Len(t, enq.tasks, 1)
	assert.Equal(t, TaskReportExport, enq.tasks[0].Type())

	var payload ReportExportPayload
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &payload))
	assert.Equal(t, "2024-02", payload.Period)
}

func TestHandlerRejectsBadExport(t *testing.T) {
	enq := &fakeEnqueuer{}
	router := newJobsRouter(enq, nil)

	rr := serve(router, http.MethodPost, "/exports", `{"granularity":"hourly","format":"docx"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "granularity")
	assert.Contains(t, rr.Body.String(), "format")
	assert.Empty(t, enq.tasks)
}

func TestHandlerWarmupDuplicate(t *testing.T) {
	router := newJobsRouter(&fakeEnqueuer{err: asynq.ErrDuplicateTask}, nil)
	rr := serve(router, http.MethodPost, "/warmup", "")
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestHandlerHealth(t *testing.T) {
	router := newJobsRouter(&fakeEnqueuer{}, fakeInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 4}})
	rr := serve(router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"pending":4`)

	router = newJobsRouter(&fakeEnqueuer{}, fakeInspector{err: errors.New("redis down")})
	rr = serve(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
