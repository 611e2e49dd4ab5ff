package orders

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmdeck-erp/farmdeck-erp/internal/sales/customers"
	"github.com/farmdeck-erp/farmdeck-erp/internal/shared"
)

// ============================================================================
// MOCK REPOSITORIES
// ============================================================================

type mockRepository struct {
	orders map[int64]*SalesOrder
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{orders: make(map[int64]*SalesOrder), nextID: 1}
}

func (m *mockRepository) List(_ context.Context, _ ListFilters) ([]SalesOrder, int, error) {
	var out []SalesOrder
	for _, o := range m.orders {
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (m *mockRepository) Get(_ context.Context, id int64) (SalesOrder, error) {
	o, ok := m.orders[id]
	if !ok {
		return SalesOrder{}, shared.ErrNotFound
	}
	return *o, nil
}

func (m *mockRepository) Create(_ context.Context, order SalesOrder) (SalesOrder, error) {
	order.ID = m.nextID
	m.nextID++
	for i := range order.Lines {
		order.Lines[i].ID = int64(i + 1)
		order.Lines[i].OrderID = order.ID
	}
	m.orders[order.ID] = &order
	return order, nil
}

func (m *mockRepository) UpdateStatus(_ context.Context, id int64, status string) error {
	o, ok := m.orders[id]
	if !ok {
		return shared.ErrNotFound
	}
	o.Status = status
	return nil
}

func (m *mockRepository) KPI(_ context.Context, _ *int64, _, _ time.Time) (KPI, error) {
	var k KPI
	for _, o := range m.orders {
		if o.Status == StatusCancelled {
			continue
		}
		k.TotalOrders++
		if o.Status == StatusConfirmed {
			k.ConfirmedOrders++
		}
		k.TotalRevenue += o.TotalAmount
		for _, l := range o.Lines {
			k.TotalQuantityKg += l.QuantityKg
		}
	}
	return k, nil
}

func (m *mockRepository) QuantityByProduct(_ context.Context, _ *int64, _, _ time.Time) (map[string]float64, error) {
	out := make(map[string]float64)
	for _, o := range m.orders {
		if o.Status == StatusCancelled {
			continue
		}
		for _, l := range o.Lines {
			out[l.Product] += l.QuantityKg
		}
	}
	return out, nil
}

type mockCustomerStore struct {
	customers map[int64]customers.Customer
}

func (m *mockCustomerStore) Get(_ context.Context, id int64) (customers.Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return customers.Customer{}, shared.ErrNotFound
	}
	return c, nil
}

func newTestService(repo Repository) *Service {
	store := &mockCustomerStore{customers: map[int64]customers.Customer{
		1: {ID: 1, Code: "CU-20240101-ABC123", Name: "Fresh Mart", IsActive: true},
		2: {ID: 2, Code: "CU-20240101-DEF456", Name: "Closed Shop", IsActive: false},
	}}
	svc := NewService(repo, store, nil)
	svc.now = func() time.Time {
		return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	}
	return svc
}

func validRequest() CreateRequest {
	return CreateRequest{
		FarmID:     1,
		CustomerID: 1,
		OrderDate:  "2024-06-01",
		Lines: []LineRequest{
			{Product: "Bell Pepper", Grade: "A", QuantityKg: 100, UnitPrice: 3.5},
			{Product: "Bell Pepper", Grade: "B", QuantityKg: 50, UnitPrice: 2.0},
		},
	}
}

// ============================================================================
// TESTS
// ============================================================================

func TestCreateOrderDerivesTotals(t *testing.T) {
	svc := newTestService(newMockRepository())

	order, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, order.Status)
	assert.True(t, strings.HasPrefix(order.OrderNumber, "SO-20240601-"),
		"order number %q should carry the SO-YYYYMMDD prefix", order.OrderNumber)
	require.Len(t, order.Lines, 2)
	assert.InDelta(t, 350.0, order.Lines[0].LineTotal, 0.0001)
	assert.InDelta(t, 100.0, order.Lines[1].LineTotal, 0.0001)
	assert.InDelta(t, 450.0, order.TotalAmount, 0.0001)
}

func TestCreateOrderRequiresLines(t *testing.T) {
	svc := newTestService(newMockRepository())

	req := validRequest()
	req.Lines = nil

	_, err := svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateOrderInactiveCustomer(t *testing.T) {
	svc := newTestService(newMockRepository())

	req := validRequest()
	req.CustomerID = 2

	_, err := svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestOrderLifecycle(t *testing.T) {
	svc := newTestService(newMockRepository())

	created, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	confirmed, err := svc.Confirm(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, confirmed.Status)

	delivered, err := svc.Deliver(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, delivered.Status)

	// Delivered orders cannot be cancelled.
	_, err = svc.Cancel(context.Background(), created.ID)
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestCancelDraftOrder(t *testing.T) {
	svc := newTestService(newMockRepository())

	created, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	// Cancelled is terminal.
	_, err = svc.Confirm(context.Background(), created.ID)
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestDashboard(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	first, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	_, err = svc.Confirm(context.Background(), first.ID)
	require.NoError(t, err)

	second, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), second.ID)
	require.NoError(t, err)

	kpi, err := svc.Dashboard(context.Background(), nil,
		time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, kpi.TotalOrders, "cancelled orders stay out of the KPI")
	assert.Equal(t, 1, kpi.ConfirmedOrders)
	assert.InDelta(t, 450.0, kpi.TotalRevenue, 0.0001)
	assert.InDelta(t, 150.0, kpi.QuantityByProduct["Bell Pepper"], 0.0001)
}
