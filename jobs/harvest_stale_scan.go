package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/farmdeck-erp/farmdeck-erp/internal/jobs"
	"github.com/farmdeck-erp/farmdeck-erp/internal/production/harvests"
)

// StaleDraftLister exposes the harvest query the scan job needs.
type StaleDraftLister interface {
	StaleDrafts(ctx context.Context, olderThan time.Time) ([]harvests.Record, error)
}

// HarvestStaleScanJob flags harvest records stuck in DRAFT and harvesting
// cycles with no record activity inside the scan window.
type HarvestStaleScanJob struct {
	Harvests StaleDraftLister
	Pool     *pgxpool.Pool
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	clock    func() time.Time
}

// NewHarvestStaleScanJob wires dependencies for the scan handler.
func NewHarvestStaleScanJob(lister StaleDraftLister, pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *HarvestStaleScanJob {
	return &HarvestStaleScanJob{
		Harvests: lister,
		Pool:     pool,
		Logger:   logger,
		Metrics:  metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes stale harvest scan tasks.
func (j *HarvestStaleScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("harvest stale scan: handler not configured")
	}
	var payload HarvestStaleScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.MaxAgeDays <= 0 {
		payload.MaxAgeDays = 2
	}

	tracker := j.metrics().Track(TaskHarvestStaleScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	cutoff := j.now().AddDate(0, 0, -payload.MaxAgeDays)
	logger := j.logger()
	logger.Info("starting stale harvest scan", slog.Int("max_age_days", payload.MaxAgeDays))

	drafts, err := j.Harvests.StaleDrafts(ctx, cutoff)
	if err != nil {
		resultErr = err
		logger.Error("list stale drafts", slog.Any("error", err))
		return resultErr
	}
	for _, rec := range drafts {
		j.metrics().AddStale("draft_harvest", rec.FarmID, 1)
		logger.Warn("harvest record stuck in draft",
			slog.Int64("record_id", rec.ID), slog.String("harvest_code", rec.Code),
			slog.Int64("cycle_id", rec.CycleID))
	}

	gaps, err := j.fetchRecordGaps(ctx, cutoff)
	if err != nil {
		resultErr = err
		logger.Error("scan harvesting gaps", slog.Any("error", err))
		return resultErr
	}
	for _, gap := range gaps {
		j.metrics().AddStale("harvest_gap", gap.FarmID, 1)
		logger.Warn("harvesting cycle with no recent records",
			slog.Int64("cycle_id", gap.CycleID), slog.String("cycle_code", gap.CycleCode))
	}

	logger.Info("completed stale harvest scan",
		slog.Int("stale_drafts", len(drafts)), slog.Int("record_gaps", len(gaps)))
	return resultErr
}

type harvestGap struct {
	CycleID   int64
	CycleCode string
	FarmID    int64
}

// fetchRecordGaps finds HARVESTING cycles whose newest harvest record, if
// any, predates the cutoff.
func (j *HarvestStaleScanJob) fetchRecordGaps(ctx context.Context, cutoff time.Time) ([]harvestGap, error) {
	if j.Pool == nil {
		return nil, errors.New("harvest stale scan: pool not configured")
	}
	rows, err := j.Pool.Query(ctx, `
		SELECT c.id, c.cycle_code, c.farm_id
		FROM production_cycles c
		LEFT JOIN harvest_records h ON h.cycle_id = c.id
		WHERE c.status = 'HARVESTING'
		GROUP BY c.id, c.cycle_code, c.farm_id
		HAVING COALESCE(MAX(h.harvest_date), 'epoch'::timestamptz) < $1
		ORDER BY c.id`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	gaps := make([]harvestGap, 0)
	for rows.Next() {
		var g harvestGap
		if err := rows.Scan(&g.CycleID, &g.CycleCode, &g.FarmID); err != nil {
			return nil, err
		}
		gaps = append(gaps, g)
	}
	return gaps, rows.Err()
}

func (j *HarvestStaleScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskHarvestStaleScan))
	}
	return slog.Default().With(slog.String("job", TaskHarvestStaleScan))
}

func (j *HarvestStaleScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *HarvestStaleScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
