package jobs

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmdeck-erp/farmdeck-erp/internal/agrorules"
	"github.com/farmdeck-erp/farmdeck-erp/internal/production/cycles"
	"github.com/farmdeck-erp/farmdeck-erp/internal/production/harvests"
)

// ============================================================================
// MOCKS
// ============================================================================

type mockCycleStore struct {
	byStatus    map[string][]cycles.Cycle
	stale       []cycles.Cycle
	transitions []transitionCall
}

type transitionCall struct {
	ID      int64
	Status  string
	YieldKg float64
}

func (m *mockCycleStore) List(_ context.Context, filters cycles.ListFilters) ([]cycles.Cycle, int, error) {
	items := m.byStatus[filters.Status]
	return items, len(items), nil
}

func (m *mockCycleStore) StaleActive(_ context.Context, _ time.Time) ([]cycles.Cycle, error) {
	return m.stale, nil
}

func (m *mockCycleStore) Transition(_ context.Context, id int64, req cycles.TransitionRequest) (cycles.Cycle, error) {
	call := transitionCall{ID: id, Status: req.Status}
	if req.ActualYieldKg != nil {
		call.YieldKg = *req.ActualYieldKg
	}
	m.transitions = append(m.transitions, call)
	return cycles.Cycle{ID: id, Status: req.Status}, nil
}

type mockTotals struct {
	byCycle map[int64]harvests.Totals
}

func (m *mockTotals) TotalsByCycle(_ context.Context, cycleID int64) (harvests.Totals, error) {
	return m.byCycle[cycleID], nil
}

func newRefreshJob(store *mockCycleStore, totals *mockTotals) *CycleStatusRefreshJob {
	job := NewCycleStatusRefreshJob(store, store, totals, agrorules.DefaultRuleset(), slog.Default(), nil)
	job.clock = func() time.Time {
		return time.Date(2024, 6, 1, 2, 0, 0, 0, time.UTC)
	}
	return job
}

func refreshTask(t *testing.T) *asynq.Task {
	t.Helper()
	task, err := NewCycleStatusRefreshTask(CycleStatusRefreshPayload{GraceDays: 3})
	require.NoError(t, err)
	return task
}

func datePtr(y int, m time.Month, d int) *time.Time {
	v := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &v
}

// ============================================================================
// TESTS
// ============================================================================

func TestRefreshAdvancesMatureCycles(t *testing.T) {
	store := &mockCycleStore{byStatus: map[string][]cycles.Cycle{
		cycles.StatusActive: {
			// 70 day bell pepper window elapsed, measured from cycle start.
			{ID: 1, Crop: "Bell Pepper", Status: cycles.StatusActive,
				StartDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
			// Generic crop planted 20 days ago, still inside the 40 day window.
			{ID: 2, Crop: "Tomato", Status: cycles.StatusActive,
				StartDate:    time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
				PlantingDate: datePtr(2024, 5, 12)},
		},
	}}
	totals := &mockTotals{byCycle: map[int64]harvests.Totals{}}

	job := newRefreshJob(store, totals)
	require.NoError(t, job.Handle(context.Background(), refreshTask(t)))

	require.Len(t, store.transitions, 1)
	assert.Equal(t, int64(1), store.transitions[0].ID)
	assert.Equal(t, cycles.StatusHarvesting, store.transitions[0].Status)
}

func TestRefreshCompletesOverdueWithRecordedYield(t *testing.T) {
	store := &mockCycleStore{byStatus: map[string][]cycles.Cycle{
		cycles.StatusHarvesting: {
			{ID: 7, FarmID: 2, Crop: "Bell Pepper", Status: cycles.StatusHarvesting,
				StartDate:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				ExpectedEndDate: datePtr(2024, 5, 1)},
		},
	}}
	totals := &mockTotals{byCycle: map[int64]harvests.Totals{
		7: {CycleID: 7, Records: 4, TotalWeightKg: 312.5},
	}}

	job := newRefreshJob(store, totals)
	require.NoError(t, job.Handle(context.Background(), refreshTask(t)))

	require.Len(t, store.transitions, 1)
	assert.Equal(t, int64(7), store.transitions[0].ID)
	assert.Equal(t, cycles.StatusCompleted, store.transitions[0].Status)
	assert.InDelta(t, 312.5, store.transitions[0].YieldKg, 0.001)
}

func TestRefreshFlagsOverdueWithoutYield(t *testing.T) {
	store := &mockCycleStore{
		byStatus: map[string][]cycles.Cycle{
			cycles.StatusHarvesting: {
				{ID: 9, Crop: "Bell Pepper", Status: cycles.StatusHarvesting,
					StartDate:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
					ExpectedEndDate: datePtr(2024, 5, 1)},
			},
		},
		stale: []cycles.Cycle{
			{ID: 11, Crop: "Tomato", Status: cycles.StatusActive},
		},
	}
	totals := &mockTotals{byCycle: map[int64]harvests.Totals{}}

	job := newRefreshJob(store, totals)
	require.NoError(t, job.Handle(context.Background(), refreshTask(t)))

	assert.Empty(t, store.transitions, "cycles without recorded yield are flagged, not completed")
}

func TestRefreshSkipsCyclesInsideGrace(t *testing.T) {
	store := &mockCycleStore{byStatus: map[string][]cycles.Cycle{
		cycles.StatusHarvesting: {
			// Expected end two days ago, inside the three day grace window.
			{ID: 4, Crop: "Bell Pepper", Status: cycles.StatusHarvesting,
				StartDate:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				ExpectedEndDate: datePtr(2024, 5, 30)},
		},
	}}
	totals := &mockTotals{byCycle: map[int64]harvests.Totals{
		4: {CycleID: 4, Records: 1, TotalWeightKg: 50},
	}}

	job := newRefreshJob(store, totals)
	require.NoError(t, job.Handle(context.Background(), refreshTask(t)))

	assert.Empty(t, store.transitions)
}

func TestRefreshRejectsMalformedPayload(t *testing.T) {
	store := &mockCycleStore{byStatus: map[string][]cycles.Cycle{}}
	job := newRefreshJob(store, &mockTotals{})

	err := job.Handle(context.Background(), asynq.NewTask(TaskCycleStatusRefresh, []byte("{broken")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
