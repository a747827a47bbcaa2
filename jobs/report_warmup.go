package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/nomadexpress/backoffice/internal/jobs"
	"github.com/nomadexpress/backoffice/internal/reports"
)

// ReportWarmupJob recomputes the cached daily report so dashboard loads
// never pay the aggregation cost.
type ReportWarmupJob struct {
	Reports *reports.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewReportWarmupJob wires dependencies for the warmup handler.
func NewReportWarmupJob(reportsSvc *reports.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportWarmupJob {
	return &ReportWarmupJob{Reports: reportsSvc, Logger: logger, Metrics: metrics}
}

// Handle processes report warmup tasks.
func (j *ReportWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("report warmup: handler not configured")
	}
	var payload ReportWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	logger := j.logger()
	started := time.Now()
	logger.Info("starting report warmup")
	tracker := j.metrics().Track(TaskReportWarmup)

	runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := j.Reports.WarmDaily(runCtx, payload.Window); err != nil {
		logger.Error("report warmup failed", slog.Any("error", err))
		return tracker.End(err)
	}

	logger.Info("completed report warmup", slog.Duration("duration", time.Since(started)))
	return tracker.End(nil)
}

func (j *ReportWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return jobmetrics.NewMetrics(nil)
}

func (j *ReportWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportWarmup))
	}
	return slog.Default().With(slog.String("job", TaskReportWarmup))
}
