package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskCycleStatusRefresh advances production cycles whose growth window
	// has elapsed. Registered on a nightly cron.
	TaskCycleStatusRefresh = "cycles:status-refresh"
	// TaskHarvestStaleScan flags harvesting cycles and draft records with no
	// recent activity.
	TaskHarvestStaleScan = "harvests:stale-scan"
	// TaskGariAvailabilityWarmup precomputes the available-batches payload
	// for a farm. Enqueued when a production batch completes.
	TaskGariAvailabilityWarmup = "gari:availability-warmup"
)

// CycleStatusRefreshPayload tunes the nightly cycle refresh.
type CycleStatusRefreshPayload struct {
	// GraceDays delays auto-completion after the expected end date.
	GraceDays int `json:"grace_days"`
}

// HarvestStaleScanPayload tunes the stale harvest scan.
type HarvestStaleScanPayload struct {
	// MaxAgeDays is how long a draft or harvesting gap may sit untouched.
	MaxAgeDays int `json:"max_age_days"`
}

// AvailabilityWarmupPayload identifies the farm whose availability cache to
// prime.
type AvailabilityWarmupPayload struct {
	FarmID int64 `json:"farm_id"`
}

// NewCycleStatusRefreshTask constructs the nightly cycle refresh task.
func NewCycleStatusRefreshTask(payload CycleStatusRefreshPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCycleStatusRefresh, data), nil
}

// NewHarvestStaleScanTask constructs the stale harvest scan task.
func NewHarvestStaleScanTask(payload HarvestStaleScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskHarvestStaleScan, data), nil
}

// NewAvailabilityWarmupTask constructs a cache warmup task for one farm.
func NewAvailabilityWarmupTask(payload AvailabilityWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGariAvailabilityWarmup, data), nil
}
