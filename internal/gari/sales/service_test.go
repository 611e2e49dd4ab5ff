package sales

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmdeck-erp/farmdeck-erp/internal/agrorules"
	"github.com/farmdeck-erp/farmdeck-erp/internal/shared"
)

// ============================================================================
// MOCKS
// ============================================================================

type mockRepository struct {
	batches map[int64][]agrorules.Batch
	sales   map[int64]*Sale
	nextID  int64
	loads   int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		batches: make(map[int64][]agrorules.Batch),
		sales:   make(map[int64]*Sale),
		nextID:  1,
	}
}

func (m *mockRepository) List(_ context.Context, _ ListFilters) ([]Sale, int, error) {
	var out []Sale
	for _, s := range m.sales {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m *mockRepository) Get(_ context.Context, id int64) (Sale, error) {
	s, ok := m.sales[id]
	if !ok {
		return Sale{}, shared.ErrNotFound
	}
	return *s, nil
}

func (m *mockRepository) AvailableBatches(_ context.Context, farmID int64) ([]agrorules.Batch, error) {
	m.loads++
	return m.batches[farmID], nil
}

func (m *mockRepository) CreateSale(_ context.Context, sale Sale) (Sale, error) {
	for i, b := range m.batches[sale.FarmID] {
		if b.ID != sale.BatchID {
			continue
		}
		if sale.QuantityKg > b.TotalAvailableKg {
			return Sale{}, fmt.Errorf("only %.2f kg available: %w", b.TotalAvailableKg, shared.ErrConflict)
		}
		m.batches[sale.FarmID][i].TotalAvailableKg -= sale.QuantityKg
		sale.ID = m.nextID
		m.nextID++
		m.sales[sale.ID] = &sale
		return sale, nil
	}
	return Sale{}, shared.ErrNotFound
}

func seedBatches(repo *mockRepository, farmID int64) {
	repo.batches[farmID] = []agrorules.Batch{
		{
			ID: 2, Code: "GB-20240520-BBBBBB",
			ProcessingDate:   time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC),
			TotalAvailableKg: 80,
			GariType:         "WHITE", GariGrade: "STANDARD", CostPerKg: 2.5,
			PackagingOptions: []agrorules.PackagingOption{
				{PackagingType: "2KG_POUCH", AvailableKg: 80, CostPerKg: 2.5},
			},
		},
		{
			ID: 1, Code: "GB-20240501-AAAAAA",
			ProcessingDate:   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			TotalAvailableKg: 40,
			GariType:         "YELLOW", GariGrade: "PREMIUM", CostPerKg: 3.0,
			PackagingOptions: []agrorules.PackagingOption{
				{PackagingType: "1KG_POUCH", AvailableKg: 40, CostPerKg: 3.0},
			},
		},
		{
			ID: 3, Code: "GB-20240410-CCCCCC",
			ProcessingDate:   time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC),
			TotalAvailableKg: 0,
			GariType:         "WHITE", GariGrade: "STANDARD", CostPerKg: 2.0,
		},
	}
}

func newTestService(t *testing.T) (*Service, *mockRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newMockRepository()
	svc := NewService(repo, agrorules.DefaultRuleset(), NewCache(client, time.Minute), nil, nil, slog.Default())
	svc.now = func() time.Time {
		return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	}
	return svc, repo
}

func saleRequest(mutate func(*CreateRequest)) CreateRequest {
	units := 5
	req := CreateRequest{
		FarmID:        1,
		BatchID:       1,
		SaleDate:      "2024-06-01",
		CustomerName:  "Ama Mensah",
		PackagingType: "1KG_POUCH",
		QuantityUnits: &units,
		UnitPrice:     8,
	}
	if mutate != nil {
		mutate(&req)
	}
	return req
}

// ============================================================================
// AVAILABILITY
// ============================================================================

func TestAvailableBatchesOrdersOldestFirst(t *testing.T) {
	svc, repo := newTestService(t)
	seedBatches(repo, 1)

	resp, err := svc.AvailableBatches(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, resp.Batches, 2, "exhausted batches are excluded")
	assert.Equal(t, int64(1), resp.Batches[0].ID)
	assert.Equal(t, int64(2), resp.Batches[1].ID)

	require.NotNil(t, resp.Default)
	assert.Equal(t, "GB-20240501-AAAAAA", resp.Default.Code)
	require.NotNil(t, resp.Fields)
	assert.Equal(t, "YELLOW", resp.Fields.GariType)
	assert.Equal(t, "1KG_POUCH", resp.Fields.DefaultPackaging)
	assert.InDelta(t, 3.0, resp.Fields.CostPerKg, 0.001)
}

func TestAvailableBatchesEmptyFarm(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.AvailableBatches(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, resp.Batches)
	assert.Nil(t, resp.Default)
	assert.Nil(t, resp.Fields)
}

func TestAvailableBatchesCachesUntilBump(t *testing.T) {
	svc, repo := newTestService(t)
	seedBatches(repo, 1)

	_, err := svc.AvailableBatches(context.Background(), 1)
	require.NoError(t, err)
	_, err = svc.AvailableBatches(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.loads, "second read should come from cache")

	require.NoError(t, svc.cache.Bump(context.Background()))
	_, err = svc.AvailableBatches(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.loads, "bump invalidates the cached set")
}

// ============================================================================
// SALE CREATION
// ============================================================================

func TestCreateDerivesKilogramsFromPackaging(t *testing.T) {
	svc, repo := newTestService(t)
	seedBatches(repo, 1)

	units := 5
	sale, err := svc.Create(context.Background(), saleRequest(func(r *CreateRequest) {
		r.BatchID = 2
		r.PackagingType = "2KG_POUCH"
		r.QuantityUnits = &units
		r.UnitPrice = 6
	}))
	require.NoError(t, err)

	assert.InDelta(t, 10, sale.QuantityKg, 0.001, "5 x 2KG_POUCH")
	assert.Equal(t, 5, sale.QuantityUnits)
	assert.InDelta(t, 60, sale.TotalAmount, 0.001)
	assert.InDelta(t, 60, sale.FinalAmount, 0.001)
	assert.InDelta(t, 25, sale.TotalCost, 0.001, "10 kg at 2.50/kg")
	assert.InDelta(t, 35, sale.GrossMargin, 0.001)
	assert.InDelta(t, 58.333, sale.GrossMarginPct, 0.01)
	assert.Equal(t, "WHITE", sale.GariType)
	assert.Equal(t, PaymentPaid, sale.PaymentStatus)
	assert.Contains(t, sale.Code, "GS-20240601-")
}

func TestCreateUsesBatchDefaultsWhenPackagingOmitted(t *testing.T) {
	svc, repo := newTestService(t)
	seedBatches(repo, 1)

	kg := 4.0
	sale, err := svc.Create(context.Background(), saleRequest(func(r *CreateRequest) {
		r.PackagingType = ""
		r.QuantityUnits = nil
		r.QuantityKg = &kg
	}))
	require.NoError(t, err)
	assert.Equal(t, "1KG_POUCH", sale.PackagingType)
	assert.Equal(t, "YELLOW", sale.GariType)
	assert.InDelta(t, 3.0, sale.CostPerKg, 0.001)
}

func TestCreateRejectsUnknownPackaging(t *testing.T) {
	svc, repo := newTestService(t)
	seedBatches(repo, 1)

	_, err := svc.Create(context.Background(), saleRequest(func(r *CreateRequest) {
		r.PackagingType = "3KG_SACK"
	}))
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrValidation)

	var fields *shared.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields.ErrorFields(), "packaging_type")
}

func TestCreateRequiresQuantity(t *testing.T) {
	svc, repo := newTestService(t)
	seedBatches(repo, 1)

	_, err := svc.Create(context.Background(), saleRequest(func(r *CreateRequest) {
		r.QuantityKg = nil
		r.QuantityUnits = nil
	}))
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreatePartialPayment(t *testing.T) {
	svc, repo := newTestService(t)
	seedBatches(repo, 1)

	paid := 20.0
	sale, err := svc.Create(context.Background(), saleRequest(func(r *CreateRequest) {
		r.AmountPaid = &paid
	}))
	require.NoError(t, err)
	assert.InDelta(t, 40, sale.FinalAmount, 0.001)
	assert.Equal(t, PaymentPartial, sale.PaymentStatus)
	assert.InDelta(t, 20, sale.AmountPaid, 0.001)
}

func TestCreateRejectsDiscountAboveTotal(t *testing.T) {
	svc, repo := newTestService(t)
	seedBatches(repo, 1)

	_, err := svc.Create(context.Background(), saleRequest(func(r *CreateRequest) {
		r.Discount = 500
	}))
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateRejectsOversell(t *testing.T) {
	svc, repo := newTestService(t)
	seedBatches(repo, 1)

	units := 60
	_, err := svc.Create(context.Background(), saleRequest(func(r *CreateRequest) {
		r.QuantityUnits = &units
	}))
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestCreateUnknownBatch(t *testing.T) {
	svc, repo := newTestService(t)
	seedBatches(repo, 1)

	_, err := svc.Create(context.Background(), saleRequest(func(r *CreateRequest) {
		r.BatchID = 99
	}))
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateBumpsAvailabilityCache(t *testing.T) {
	svc, repo := newTestService(t)
	seedBatches(repo, 1)

	resp, err := svc.AvailableBatches(context.Background(), 1)
	require.NoError(t, err)
	assert.InDelta(t, 40, resp.Batches[0].TotalAvailableKg, 0.001)

	_, err = svc.Create(context.Background(), saleRequest(nil))
	require.NoError(t, err)

	resp, err = svc.AvailableBatches(context.Background(), 1)
	require.NoError(t, err)
	assert.InDelta(t, 35, resp.Batches[0].TotalAvailableKg, 0.001,
		"sale must invalidate the cached availability")
}

func TestCreateBulkRequiresKilograms(t *testing.T) {
	svc, repo := newTestService(t)
	repo.batches[1] = []agrorules.Batch{{
		ID: 5, Code: "GB-20240510-EEEEEE",
		ProcessingDate:   time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		TotalAvailableKg: 30,
		GariType:         "WHITE", CostPerKg: 2.0,
		PackagingOptions: []agrorules.PackagingOption{
			{PackagingType: BulkPackaging, AvailableKg: 30, CostPerKg: 2.0},
		},
	}}

	units := 3
	_, err := svc.Create(context.Background(), saleRequest(func(r *CreateRequest) {
		r.BatchID = 5
		r.PackagingType = ""
		r.QuantityKg = nil
		r.QuantityUnits = &units
	}))
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrValidation)

	kg := 12.0
	sale, err := svc.Create(context.Background(), saleRequest(func(r *CreateRequest) {
		r.BatchID = 5
		r.PackagingType = ""
		r.QuantityKg = &kg
		r.QuantityUnits = nil
	}))
	require.NoError(t, err)
	assert.Equal(t, BulkPackaging, sale.PackagingType)
	assert.InDelta(t, 12, sale.QuantityKg, 0.001)
}

func TestGetRejectsInvalidID(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Get(context.Background(), 0)
	assert.ErrorIs(t, err, shared.ErrInvalidID)
}

var errRepoDown = errors.New("repository unavailable")

type failingRepository struct{ mockRepository }

func (f *failingRepository) AvailableBatches(_ context.Context, _ int64) ([]agrorules.Batch, error) {
	return nil, errRepoDown
}

func TestAvailableBatchesPropagatesRepositoryError(t *testing.T) {
	svc, _ := newTestService(t)
	svc.repo = &failingRepository{}

	_, err := svc.AvailableBatches(context.Background(), 1)
	assert.ErrorIs(t, err, errRepoDown)
}
