package cycles

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmdeck-erp/farmdeck-erp/internal/agrorules"
	"github.com/farmdeck-erp/farmdeck-erp/internal/shared"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	cycles map[int64]*Cycle
	nextID int64

	updateError error
}

func newMockRepository() *mockRepository {
	return &mockRepository{cycles: make(map[int64]*Cycle), nextID: 1}
}

func (m *mockRepository) List(_ context.Context, _ ListFilters) ([]Cycle, int, error) {
	var out []Cycle
	for _, c := range m.cycles {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *mockRepository) Get(_ context.Context, id int64) (Cycle, error) {
	c, ok := m.cycles[id]
	if !ok {
		return Cycle{}, shared.ErrNotFound
	}
	return *c, nil
}

func (m *mockRepository) Create(_ context.Context, cycle Cycle) (Cycle, error) {
	cycle.ID = m.nextID
	m.nextID++
	m.cycles[cycle.ID] = &cycle
	return cycle, nil
}

func (m *mockRepository) Update(_ context.Context, id int64, cycle Cycle) error {
	if m.updateError != nil {
		return m.updateError
	}
	if _, ok := m.cycles[id]; !ok {
		return shared.ErrNotFound
	}
	cycle.ID = id
	m.cycles[id] = &cycle
	return nil
}

func (m *mockRepository) StaleActive(_ context.Context, olderThan time.Time) ([]Cycle, error) {
	var out []Cycle
	for _, c := range m.cycles {
		if c.Status == StatusActive && c.ExpectedEndDate != nil && c.ExpectedEndDate.Before(olderThan) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func newTestService(repo Repository) *Service {
	svc := NewService(repo, agrorules.DefaultRuleset(), nil)
	svc.now = func() time.Time {
		return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	}
	return svc
}

// ============================================================================
// TESTS
// ============================================================================

func TestCreateCycle(t *testing.T) {
	svc := newTestService(newMockRepository())

	cycle, err := svc.Create(context.Background(), CreateRequest{
		FarmID:    1,
		Crop:      "Bell Pepper",
		StartDate: "2024-01-01",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPlanned, cycle.Status)
	assert.True(t, strings.HasPrefix(cycle.Code, "PC-"), "code %q should carry the PC prefix", cycle.Code)
	assert.Equal(t, "Bell Pepper", cycle.Crop)
}

func TestCreateCyclePlantingBeforeStart(t *testing.T) {
	svc := newTestService(newMockRepository())

	_, err := svc.Create(context.Background(), CreateRequest{
		FarmID:       1,
		Crop:         "Tomato",
		StartDate:    "2024-02-01",
		PlantingDate: "2024-01-15",
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestTransitionLifecycle(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	created, err := svc.Create(context.Background(), CreateRequest{
		FarmID: 1, Crop: "Bell Pepper", StartDate: "2024-01-01",
	})
	require.NoError(t, err)

	cycle, err := svc.Transition(context.Background(), created.ID, TransitionRequest{Status: StatusActive})
	require.NoError(t, err)
	assert.Equal(t, StatusActive, cycle.Status)

	cycle, err = svc.Transition(context.Background(), created.ID, TransitionRequest{Status: StatusHarvesting})
	require.NoError(t, err)
	assert.Equal(t, StatusHarvesting, cycle.Status)

	yield := 950.0
	cycle, err = svc.Transition(context.Background(), created.ID, TransitionRequest{
		Status: StatusCompleted, ActualYieldKg: &yield,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, cycle.Status)
	require.NotNil(t, cycle.ActualEndDate)
}

func TestTransitionInProgressAlias(t *testing.T) {
	svc := newTestService(newMockRepository())

	created, err := svc.Create(context.Background(), CreateRequest{
		FarmID: 1, Crop: "Tomato", StartDate: "2024-01-01",
	})
	require.NoError(t, err)

	cycle, err := svc.Transition(context.Background(), created.ID, TransitionRequest{Status: "IN_PROGRESS"})
	require.NoError(t, err)
	assert.Equal(t, StatusActive, cycle.Status, "IN_PROGRESS normalises to ACTIVE")
}

func TestTransitionRejected(t *testing.T) {
	svc := newTestService(newMockRepository())

	created, err := svc.Create(context.Background(), CreateRequest{
		FarmID: 1, Crop: "Tomato", StartDate: "2024-01-01",
	})
	require.NoError(t, err)

	// PLANNED cannot jump straight to HARVESTING.
	_, err = svc.Transition(context.Background(), created.ID, TransitionRequest{Status: StatusHarvesting})
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestCompleteComputesYieldVariance(t *testing.T) {
	svc := newTestService(newMockRepository())

	expected := 1000.0
	created, err := svc.Create(context.Background(), CreateRequest{
		FarmID: 1, Crop: "Bell Pepper", StartDate: "2024-01-01", ExpectedYieldKg: &expected,
	})
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), created.ID, TransitionRequest{Status: StatusActive})
	require.NoError(t, err)

	actual := 900.0
	cycle, err := svc.Transition(context.Background(), created.ID, TransitionRequest{
		Status: StatusCompleted, ActualYieldKg: &actual,
	})
	require.NoError(t, err)
	require.NotNil(t, cycle.YieldVariancePct)
	assert.InDelta(t, -10.0, *cycle.YieldVariancePct, 0.0001)
}

func TestCompleteRequiresActualYield(t *testing.T) {
	svc := newTestService(newMockRepository())

	created, err := svc.Create(context.Background(), CreateRequest{
		FarmID: 1, Crop: "Tomato", StartDate: "2024-01-01",
	})
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), created.ID, TransitionRequest{Status: StatusActive})
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), created.ID, TransitionRequest{Status: StatusCompleted})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestHarvestEligibilityBellPepper(t *testing.T) {
	svc := newTestService(newMockRepository())

	created, err := svc.Create(context.Background(), CreateRequest{
		FarmID: 1, Crop: "Bell Pepper", StartDate: "2024-01-01",
	})
	require.NoError(t, err)

	// 70 days after 2024-01-01 is 2024-03-11.
	resp, err := svc.HarvestEligibility(context.Background(), created.ID, "2024-03-11")
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.Equal(t, 70, resp.DaysDifference)
	assert.Equal(t, "2024-03-11", resp.MinimumDate)
	assert.Equal(t, 70, resp.MinGrowthDays)

	resp, err = svc.HarvestEligibility(context.Background(), created.ID, "2024-03-10")
	require.NoError(t, err)
	assert.False(t, resp.Valid)
	assert.Equal(t, 69, resp.DaysDifference)
	assert.NotEmpty(t, resp.Reason)
}

func TestHarvestEligibilityGenericCropUsesPlantingDate(t *testing.T) {
	svc := newTestService(newMockRepository())

	created, err := svc.Create(context.Background(), CreateRequest{
		FarmID:       1,
		Crop:         "Tomato",
		StartDate:    "2024-01-01",
		PlantingDate: "2024-01-10",
	})
	require.NoError(t, err)

	// 40 days after planting on 2024-01-10 is 2024-02-19.
	resp, err := svc.HarvestEligibility(context.Background(), created.ID, "2024-02-19")
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.Equal(t, 40, resp.MinGrowthDays)

	resp, err = svc.HarvestEligibility(context.Background(), created.ID, "2024-02-18")
	require.NoError(t, err)
	assert.False(t, resp.Valid)
}

func TestHarvestEligibilityNoDateReturnsWindow(t *testing.T) {
	svc := newTestService(newMockRepository())

	created, err := svc.Create(context.Background(), CreateRequest{
		FarmID: 1, Crop: "Bell Pepper", StartDate: "2024-01-01",
	})
	require.NoError(t, err)

	resp, err := svc.HarvestEligibility(context.Background(), created.ID, "")
	require.NoError(t, err)
	assert.True(t, resp.Valid, "missing candidate only reports the window")
	assert.Equal(t, "2024-03-11", resp.MinimumDate)
	assert.Equal(t, "2024-06-01", resp.MaximumDate, "caps at today when the cycle is still open")
}
