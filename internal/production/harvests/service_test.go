package harvests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmdeck-erp/farmdeck-erp/internal/agrorules"
	"github.com/farmdeck-erp/farmdeck-erp/internal/production/cycles"
	"github.com/farmdeck-erp/farmdeck-erp/internal/shared"
)

// ============================================================================
// MOCK REPOSITORIES
// ============================================================================

type mockRepository struct {
	records map[int64]*Record
	nextID  int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{records: make(map[int64]*Record), nextID: 1}
}

func (m *mockRepository) List(_ context.Context, _ ListFilters) ([]Record, int, error) {
	var out []Record
	for _, rec := range m.records {
		out = append(out, *rec)
	}
	return out, len(out), nil
}

func (m *mockRepository) Get(_ context.Context, id int64) (Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return Record{}, shared.ErrNotFound
	}
	return *rec, nil
}

func (m *mockRepository) Create(_ context.Context, rec Record) (Record, error) {
	rec.ID = m.nextID
	m.nextID++
	m.records[rec.ID] = &rec
	return rec, nil
}

func (m *mockRepository) Update(_ context.Context, id int64, rec Record) error {
	if _, ok := m.records[id]; !ok {
		return shared.ErrNotFound
	}
	rec.ID = id
	m.records[id] = &rec
	return nil
}

func (m *mockRepository) Delete(_ context.Context, id int64) error {
	if _, ok := m.records[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *mockRepository) TotalsByCycle(_ context.Context, cycleID int64) (Totals, error) {
	t := Totals{CycleID: cycleID}
	for _, rec := range m.records {
		if rec.CycleID != cycleID {
			continue
		}
		t.Records++
		t.GradeAKg += rec.GradeAKg
		t.GradeBKg += rec.GradeBKg
		t.GradeCKg += rec.GradeCKg
		t.TotalWeightKg += rec.TotalWeightKg
		t.CratesCount += rec.CratesCount
	}
	return t, nil
}

func (m *mockRepository) StaleDrafts(_ context.Context, olderThan time.Time) ([]Record, error) {
	var out []Record
	for _, rec := range m.records {
		if rec.Status == StatusDraft && rec.UpdatedAt.Before(olderThan) {
			out = append(out, *rec)
		}
	}
	return out, nil
}

type mockCycleStore struct {
	cycles map[int64]cycles.Cycle
}

func (m *mockCycleStore) Get(_ context.Context, id int64) (cycles.Cycle, error) {
	c, ok := m.cycles[id]
	if !ok {
		return cycles.Cycle{}, shared.ErrNotFound
	}
	return c, nil
}

func newTestService(repo Repository) (*Service, *mockCycleStore) {
	store := &mockCycleStore{cycles: map[int64]cycles.Cycle{
		1: {
			ID:        1,
			FarmID:    1,
			Code:      "PC-20240101-ABC123",
			Crop:      "Bell Pepper",
			Status:    cycles.StatusHarvesting,
			StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}}
	svc := NewService(repo, store, agrorules.DefaultRuleset(), nil)
	svc.now = func() time.Time {
		return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	}
	return svc, store
}

func validRequest() SaveRequest {
	a, b, c := 10.0, 5.0, 4.0
	return SaveRequest{
		FarmID:      1,
		CycleID:     1,
		HarvestDate: "2024-03-15",
		GradeAKg:    &a,
		GradeBKg:    &b,
		GradeCKg:    &c,
	}
}

// ============================================================================
// TESTS
// ============================================================================

func TestCreateHarvestDerivesTotals(t *testing.T) {
	svc, _ := newTestService(newMockRepository())

	req := validRequest()
	req.RecordedBy = "fieldhand@farm"

	rec, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, rec.Status)
	assert.Equal(t, "fieldhand@farm", rec.RecordedBy)
	assert.Nil(t, rec.SubmittedAt)
	assert.InDelta(t, 19.0, rec.TotalWeightKg, 0.0001)
	// ceil(19 / 9.5) = 2 crates.
	assert.Equal(t, 2, rec.CratesCount)
	assert.False(t, rec.CratesOverridden)
}

func TestCreateHarvestCrateOverride(t *testing.T) {
	svc, _ := newTestService(newMockRepository())

	req := validRequest()
	crates := 5
	req.CratesCount = &crates

	rec, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 5, rec.CratesCount)
	assert.True(t, rec.CratesOverridden)
}

func TestCreateHarvestTooEarly(t *testing.T) {
	svc, _ := newTestService(newMockRepository())

	req := validRequest()
	// 69 days after cycle start, one short of the 70-day bell pepper window.
	req.HarvestDate = "2024-03-10"

	_, err := svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateHarvestFutureDate(t *testing.T) {
	svc, _ := newTestService(newMockRepository())

	req := validRequest()
	req.HarvestDate = "2024-06-02" // one day past "today"

	_, err := svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateHarvestNegativeGradeRejected(t *testing.T) {
	svc, _ := newTestService(newMockRepository())

	req := validRequest()
	neg := -3.0
	req.GradeBKg = &neg

	_, err := svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateHarvestCycleNotActive(t *testing.T) {
	svc, store := newTestService(newMockRepository())

	done := store.cycles[1]
	done.Status = cycles.StatusCompleted
	store.cycles[1] = done

	_, err := svc.Create(context.Background(), validRequest())
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestCreateHarvestPlannedNeedsOverride(t *testing.T) {
	svc, store := newTestService(newMockRepository())

	planned := store.cycles[1]
	planned.Status = cycles.StatusPlanned
	store.cycles[1] = planned

	_, err := svc.Create(context.Background(), validRequest())
	assert.ErrorIs(t, err, shared.ErrConflict)

	req := validRequest()
	req.AllowPlanned = true
	rec, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, rec.Status)
}

func TestUpdateLockedAfterSubmit(t *testing.T) {
	svc, _ := newTestService(newMockRepository())

	rec, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), rec.ID)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), rec.ID, validRequest())
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestApprovalFlow(t *testing.T) {
	svc, _ := newTestService(newMockRepository())

	rec, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	// Cannot approve before submission.
	_, err = svc.Approve(context.Background(), rec.ID, "supervisor@farm")
	assert.ErrorIs(t, err, shared.ErrConflict)

	submitted, err := svc.Submit(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, submitted.Status)
	require.NotNil(t, submitted.SubmittedAt)

	approved, err := svc.Approve(context.Background(), rec.ID, "supervisor@farm")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
	assert.Equal(t, "supervisor@farm", approved.ApprovedBy)
	require.NotNil(t, approved.ApprovedAt)
	assert.True(t, approved.ApprovedAt.Equal(svc.now()))
}

func TestDeleteOnlyDrafts(t *testing.T) {
	svc, _ := newTestService(newMockRepository())

	rec, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), rec.ID)
	require.NoError(t, err)

	err = svc.Delete(context.Background(), rec.ID)
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestTotalsByCycle(t *testing.T) {
	svc, _ := newTestService(newMockRepository())

	_, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	totals, err := svc.TotalsByCycle(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, totals.Records)
	assert.InDelta(t, 38.0, totals.TotalWeightKg, 0.0001)
	assert.Equal(t, 4, totals.CratesCount)
}
