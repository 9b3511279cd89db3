package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/comal-erp/comal-erp/internal/costing"
	jobmetrics "github.com/comal-erp/comal-erp/internal/jobs"
)

// WarmupJob recomputes product costs after an invalidation so interactive
// requests hit a warm cache.
type WarmupJob struct {
	Costing *costing.Service
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewWarmupJob wires dependencies for the warmup handler.
func NewWarmupJob(costingSvc *costing.Service, pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *WarmupJob {
	return &WarmupJob{Costing: costingSvc, Pool: pool, Logger: logger, Metrics: metrics}
}

// Handle processes cache warmup tasks.
func (j *WarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Costing == nil {
		return errors.New("costing warmup: handler not configured")
	}
	var payload WarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskCostingWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	start := time.Now()
	logger.Info("starting cost cache warmup")

	targets, err := j.fetchTargets(ctx, payload.Kind)
	if err != nil {
		resultErr = err
		logger.Error("load warmup targets", slog.Any("error", err))
		return resultErr
	}
	if len(targets) == 0 {
		logger.Info("no products discovered for warmup")
		return resultErr
	}

	warmed := 0
	for _, productID := range targets {
		if err := j.warmProduct(ctx, productID); err != nil {
			// Broken recipes are skipped; the rest of the catalog still warms.
			logger.Warn("warm product", slog.Int64("product_id", productID), slog.Any("error", err))
			continue
		}
		warmed++
	}

	logger.Info("completed cost cache warmup",
		slog.Int("targets", len(targets)),
		slog.Int("warmed", warmed),
		slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *WarmupJob) warmProduct(ctx context.Context, productID int64) error {
	productCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()
	_, err := j.Costing.ProductCost(productCtx, productID)
	return err
}

func (j *WarmupJob) fetchTargets(ctx context.Context, kind string) ([]int64, error) {
	if j.Pool == nil {
		return nil, errors.New("costing warmup: pool not configured")
	}
	query := `SELECT id FROM products WHERE is_active AND kind IN ('sub_recipe', 'dish') ORDER BY id`
	args := []any{}
	if kind != "" {
		query = `SELECT id FROM products WHERE is_active AND kind = $1 ORDER BY id`
		args = append(args, kind)
	}
	rows, err := j.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	targets := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		targets = append(targets, id)
	}
	return targets, rows.Err()
}

func (j *WarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskCostingWarmup))
	}
	return slog.Default().With(slog.String("job", TaskCostingWarmup))
}

func (j *WarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
