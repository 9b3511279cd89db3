package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/comal-erp/comal-erp/internal/costing"
	jobmetrics "github.com/comal-erp/comal-erp/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// AlertScanJob sweeps every sellable product, explodes its cost and counts
// the ones above their ideal cost percentage.
type AlertScanJob struct {
	Costing *costing.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewAlertScanJob wires dependencies for the alert scan handler.
func NewAlertScanJob(costingSvc *costing.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *AlertScanJob {
	return &AlertScanJob{
		Costing: costingSvc,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes alert scan tasks.
func (j *AlertScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Costing == nil {
		return errors.New("alert scan: handler not configured")
	}
	var payload AlertScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskCostingAlertScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	start := j.now()
	logger.Info("starting cost alert scan")

	rows, err := j.Costing.Alerts(ctx)
	if err != nil {
		resultErr = err
		logger.Error("scan product costs", slog.Any("error", err))
		return resultErr
	}

	alerting := 0
	failed := 0
	byKind := map[string]int{}
	for _, row := range rows {
		if payload.Kind != "" && string(row.Kind) != payload.Kind {
			continue
		}
		if row.Failure != "" {
			failed++
			logger.Warn("cost explosion failed during scan",
				slog.Int64("product_id", row.ProductID),
				slog.String("code", row.Code),
				slog.String("reason", row.Failure))
			continue
		}
		if row.Alert {
			alerting++
			byKind[string(row.Kind)]++
			logger.Warn("cost above target",
				slog.Int64("product_id", row.ProductID),
				slog.String("code", row.Code),
				slog.Float64("cost_percent", costing.Round2(row.CostPercent)))
		}
	}
	for kind, count := range byKind {
		j.metrics().AddAlerts(kind, count)
	}

	logger.Info("completed cost alert scan",
		slog.Int("scanned", len(rows)),
		slog.Int("alerting", alerting),
		slog.Int("failed", failed),
		slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *AlertScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskCostingAlertScan))
	}
	return slog.Default().With(slog.String("job", TaskCostingAlertScan))
}

func (j *AlertScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *AlertScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
