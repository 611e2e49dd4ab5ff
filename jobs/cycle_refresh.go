package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/farmdeck-erp/farmdeck-erp/internal/agrorules"
	jobmetrics "github.com/farmdeck-erp/farmdeck-erp/internal/jobs"
	"github.com/farmdeck-erp/farmdeck-erp/internal/production/cycles"
	"github.com/farmdeck-erp/farmdeck-erp/internal/production/harvests"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// CycleLister exposes the cycle queries the refresh job needs.
type CycleLister interface {
	List(ctx context.Context, filters cycles.ListFilters) ([]cycles.Cycle, int, error)
	StaleActive(ctx context.Context, olderThan time.Time) ([]cycles.Cycle, error)
}

// CycleTransitioner advances cycle statuses with the same rules as the API.
type CycleTransitioner interface {
	Transition(ctx context.Context, id int64, req cycles.TransitionRequest) (cycles.Cycle, error)
}

// HarvestTotalsReader sums recorded harvests per cycle.
type HarvestTotalsReader interface {
	TotalsByCycle(ctx context.Context, cycleID int64) (harvests.Totals, error)
}

// CycleStatusRefreshJob runs nightly: cycles whose minimum growth window has
// elapsed move to HARVESTING, and harvesting cycles past their expected end
// with recorded yield are completed. Cycles past their end with nothing
// recorded are only flagged; nobody wants a job inventing yields.
type CycleStatusRefreshJob struct {
	Cycles   CycleLister
	Statuses CycleTransitioner
	Harvests HarvestTotalsReader
	Rules    agrorules.Ruleset
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	clock    func() time.Time
}

// NewCycleStatusRefreshJob wires dependencies for the nightly refresh.
func NewCycleStatusRefreshJob(lister CycleLister, statuses CycleTransitioner, totals HarvestTotalsReader, rules agrorules.Ruleset, logger *slog.Logger, metrics *jobmetrics.Metrics) *CycleStatusRefreshJob {
	return &CycleStatusRefreshJob{
		Cycles:   lister,
		Statuses: statuses,
		Harvests: totals,
		Rules:    rules,
		Logger:   logger,
		Metrics:  metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes cycle status refresh tasks.
func (j *CycleStatusRefreshJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("cycle refresh: handler not configured")
	}
	var payload CycleStatusRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.GraceDays <= 0 {
		payload.GraceDays = 3
	}

	tracker := j.metrics().Track(TaskCycleStatusRefresh)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	now := j.now()
	logger := j.logger()
	logger.Info("starting cycle status refresh", slog.Int("grace_days", payload.GraceDays))

	advanced, err := j.advanceMature(ctx, now)
	if err != nil {
		resultErr = err
		logger.Error("advance mature cycles", slog.Any("error", err))
		return resultErr
	}

	cutoff := now.AddDate(0, 0, -payload.GraceDays)
	completed, flagged, err := j.completeOverdue(ctx, cutoff)
	if err != nil {
		resultErr = err
		logger.Error("complete overdue cycles", slog.Any("error", err))
		return resultErr
	}

	logger.Info("completed cycle status refresh",
		slog.Int("advanced", advanced), slog.Int("completed", completed), slog.Int("flagged", flagged))
	return resultErr
}

// advanceMature moves ACTIVE cycles past their minimum growth window into
// HARVESTING.
func (j *CycleStatusRefreshJob) advanceMature(ctx context.Context, now time.Time) (int, error) {
	active, _, err := j.Cycles.List(ctx, cycles.ListFilters{Status: cycles.StatusActive})
	if err != nil {
		return 0, err
	}

	advanced := 0
	for _, c := range active {
		ref := c.HarvestReference(agrorules.IsBellPepper(c.Crop))
		minDate, err := agrorules.MinimumDate(ref, j.Rules.MinGrowthDays(c.Crop))
		if err != nil {
			j.logger().Warn("cycle missing reference date",
				slog.Int64("cycle_id", c.ID), slog.String("cycle_code", c.Code))
			continue
		}
		if now.Before(minDate) {
			continue
		}
		if _, err := j.Statuses.Transition(ctx, c.ID, cycles.TransitionRequest{Status: cycles.StatusHarvesting}); err != nil {
			return advanced, err
		}
		advanced++
	}
	return advanced, nil
}

// completeOverdue closes HARVESTING cycles past their expected end when they
// have recorded yield, and flags ones that do not.
func (j *CycleStatusRefreshJob) completeOverdue(ctx context.Context, cutoff time.Time) (completed, flagged int, err error) {
	harvesting, _, err := j.Cycles.List(ctx, cycles.ListFilters{Status: cycles.StatusHarvesting})
	if err != nil {
		return 0, 0, err
	}

	for _, c := range harvesting {
		if c.ExpectedEndDate == nil || !c.ExpectedEndDate.Before(cutoff) {
			continue
		}
		totals, err := j.Harvests.TotalsByCycle(ctx, c.ID)
		if err != nil {
			return completed, flagged, err
		}
		if totals.TotalWeightKg <= 0 {
			flagged++
			j.metrics().AddStale("overdue_cycle", c.FarmID, 1)
			j.logger().Warn("cycle overdue with no recorded harvest",
				slog.Int64("cycle_id", c.ID), slog.String("cycle_code", c.Code))
			continue
		}
		yield := totals.TotalWeightKg
		_, err = j.Statuses.Transition(ctx, c.ID, cycles.TransitionRequest{
			Status:        cycles.StatusCompleted,
			ActualYieldKg: &yield,
		})
		if err != nil {
			return completed, flagged, err
		}
		completed++
	}

	// ACTIVE cycles already past their expected end never matured by date
	// rules; surface them rather than guessing at a transition.
	stale, err := j.Cycles.StaleActive(ctx, cutoff)
	if err != nil {
		return completed, flagged, err
	}
	for _, c := range stale {
		flagged++
		j.metrics().AddStale("stale_active_cycle", c.FarmID, 1)
		j.logger().Warn("active cycle past expected end",
			slog.Int64("cycle_id", c.ID), slog.String("cycle_code", c.Code))
	}
	return completed, flagged, nil
}

func (j *CycleStatusRefreshJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskCycleStatusRefresh))
	}
	return slog.Default().With(slog.String("job", TaskCycleStatusRefresh))
}

func (j *CycleStatusRefreshJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *CycleStatusRefreshJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
