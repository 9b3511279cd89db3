package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCostingAlertScan sweeps sellable products for cost overruns.
	TaskCostingAlertScan = "costing:alert_scan"
	// TaskCostingWarmup recomputes product costs to repopulate the cache.
	TaskCostingWarmup = "costing:warmup"
)

// AlertScanPayload scopes an alert sweep. An empty kind scans every
// sellable product.
type AlertScanPayload struct {
	Kind string `json:"kind,omitempty"`
}

// WarmupPayload scopes a cache warmup run.
type WarmupPayload struct {
	Kind string `json:"kind,omitempty"`
}

// NewAlertScanTask constructs an alert scan task.
func NewAlertScanTask(payload AlertScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCostingAlertScan, data), nil
}

// NewWarmupTask constructs a cache warmup task.
func NewWarmupTask(payload WarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCostingWarmup, data), nil
}
