package batches

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmdeck-erp/farmdeck-erp/internal/shared"
)

// ============================================================================
// MOCKS
// ============================================================================

type mockRepository struct {
	batches map[int64]*Batch
	nextID  int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{batches: make(map[int64]*Batch), nextID: 1}
}

func (m *mockRepository) List(_ context.Context, _ ListFilters) ([]Batch, int, error) {
	var out []Batch
	for _, b := range m.batches {
		out = append(out, *b)
	}
	return out, len(out), nil
}

func (m *mockRepository) Get(_ context.Context, id int64) (Batch, error) {
	b, ok := m.batches[id]
	if !ok {
		return Batch{}, shared.ErrNotFound
	}
	return *b, nil
}

func (m *mockRepository) Create(_ context.Context, b Batch) (Batch, error) {
	b.ID = m.nextID
	m.nextID++
	m.batches[b.ID] = &b
	return b, nil
}

func (m *mockRepository) Update(_ context.Context, id int64, b Batch) error {
	if _, ok := m.batches[id]; !ok {
		return shared.ErrNotFound
	}
	b.ID = id
	m.batches[id] = &b
	return nil
}

type mockBumper struct{ bumps int }

func (m *mockBumper) Bump(_ context.Context) error {
	m.bumps++
	return nil
}

type mockEnqueuer struct{ farmIDs []int64 }

func (m *mockEnqueuer) EnqueueAvailabilityWarmup(_ context.Context, farmID int64) error {
	m.farmIDs = append(m.farmIDs, farmID)
	return nil
}

func newTestService() (*Service, *mockBumper, *mockEnqueuer) {
	bumper := &mockBumper{}
	enqueuer := &mockEnqueuer{}
	svc := NewService(newMockRepository(), bumper, enqueuer, nil, slog.Default())
	svc.now = func() time.Time {
		return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	}
	return svc, bumper, enqueuer
}

func validRequest() SaveRequest {
	return SaveRequest{
		FarmID:            3,
		ProcessingDate:    "2024-05-20",
		CassavaQuantityKg: 1000,
		CassavaCostPerKg:  0.5,
		GariProducedKg:    250,
		GariType:          "WHITE",
		GariGrade:         "A",
		LabourCost:        50,
		FuelCost:          30,
		WasteKg:           100,
	}
}

// ============================================================================
// TESTS
// ============================================================================

func TestCreateBatchDerivesCosts(t *testing.T) {
	svc, _, _ := newTestService()

	b, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, b.Status)
	assert.InDelta(t, 500.0, b.TotalCassavaCost, 0.0001)
	assert.InDelta(t, 80.0, b.TotalProcessingCost, 0.0001)
	assert.InDelta(t, 580.0, b.TotalCost, 0.0001)
	assert.InDelta(t, 25.0, b.YieldPercent, 0.0001)
	assert.InDelta(t, 10.0, b.WastePercent, 0.0001)
	assert.InDelta(t, 2.32, b.CostPerKgGari, 0.0001)
}

func TestCreateBatchGariExceedsCassava(t *testing.T) {
	svc, _, _ := newTestService()

	req := validRequest()
	req.GariProducedKg = 1500

	_, err := svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestCompleteBatchBumpsCacheAndEnqueuesWarmup(t *testing.T) {
	svc, bumper, enqueuer := newTestService()

	b, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	completed, err := svc.Complete(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, completed.Status)
	assert.Equal(t, 1, bumper.bumps)
	assert.Equal(t, []int64{3}, enqueuer.farmIDs)
}

func TestCompleteBatchTwice(t *testing.T) {
	svc, _, _ := newTestService()

	b, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), b.ID)
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), b.ID)
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestCompleteBatchWithoutOutput(t *testing.T) {
	svc, _, _ := newTestService()

	req := validRequest()
	req.GariProducedKg = 0

	b, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), b.ID)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdateLockedAfterComplete(t *testing.T) {
	svc, _, _ := newTestService()

	b, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), b.ID)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), b.ID, validRequest())
	assert.ErrorIs(t, err, shared.ErrConflict)
}
