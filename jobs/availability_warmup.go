package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	garisales "github.com/farmdeck-erp/farmdeck-erp/internal/gari/sales"
	jobmetrics "github.com/farmdeck-erp/farmdeck-erp/internal/jobs"
)

// AvailabilityWarmer loads the available-batches payload, populating the
// cache as a side effect.
type AvailabilityWarmer interface {
	AvailableBatches(ctx context.Context, farmID int64) (garisales.AvailabilityResponse, error)
}

// AvailabilityWarmupJob primes the available-batches cache for one farm.
// Enqueued when a production batch completes so the first sale-form load
// after new stock does not pay the database round trip.
type AvailabilityWarmupJob struct {
	Sales   AvailabilityWarmer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewAvailabilityWarmupJob wires dependencies for the warmup handler.
func NewAvailabilityWarmupJob(sales AvailabilityWarmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *AvailabilityWarmupJob {
	return &AvailabilityWarmupJob{Sales: sales, Logger: logger, Metrics: metrics}
}

// Handle processes availability warmup tasks.
func (j *AvailabilityWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("availability warmup: handler not configured")
	}
	var payload AvailabilityWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.FarmID <= 0 {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskGariAvailabilityWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Int64("farm_id", payload.FarmID))
	resp, err := j.Sales.AvailableBatches(ctx, payload.FarmID)
	if err != nil {
		resultErr = err
		logger.Error("warm availability cache", slog.Any("error", err))
		return resultErr
	}
	logger.Info("warmed availability cache", slog.Int("batches", len(resp.Batches)))
	return resultErr
}

func (j *AvailabilityWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskGariAvailabilityWarmup))
	}
	return slog.Default().With(slog.String("job", TaskGariAvailabilityWarmup))
}

func (j *AvailabilityWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
