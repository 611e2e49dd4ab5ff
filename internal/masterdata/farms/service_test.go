package farms

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mdshared "github.com/farmdeck-erp/farmdeck-erp/internal/masterdata/shared"
	"github.com/farmdeck-erp/farmdeck-erp/internal/shared"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	farms       map[int64]*Farm
	farmsByCode map[string]*Farm
	nextID      int64

	// Error injection
	listError   error
	createError error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		farms:       make(map[int64]*Farm),
		farmsByCode: make(map[string]*Farm),
		nextID:      1,
	}
}

func (m *mockRepository) List(_ context.Context, filters mdshared.ListFilters) ([]Farm, int, error) {
	if m.listError != nil {
		return nil, 0, m.listError
	}
	var out []Farm
	for _, f := range m.farms {
		out = append(out, *f)
	}
	return out, len(out), nil
}

func (m *mockRepository) Get(_ context.Context, id int64) (Farm, error) {
	f, ok := m.farms[id]
	if !ok {
		return Farm{}, shared.ErrNotFound
	}
	return *f, nil
}

func (m *mockRepository) Create(_ context.Context, farm Farm) (Farm, error) {
	if m.createError != nil {
		return Farm{}, m.createError
	}
	if _, exists := m.farmsByCode[farm.Code]; exists {
		return Farm{}, shared.ErrDuplicate
	}
	farm.ID = m.nextID
	m.nextID++
	m.farms[farm.ID] = &farm
	m.farmsByCode[farm.Code] = &farm
	return farm, nil
}

func (m *mockRepository) Update(_ context.Context, id int64, farm Farm) error {
	if _, ok := m.farms[id]; !ok {
		return shared.ErrNotFound
	}
	farm.ID = id
	m.farms[id] = &farm
	return nil
}

func (m *mockRepository) Delete(_ context.Context, id int64) error {
	if _, ok := m.farms[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.farms, id)
	return nil
}

// ============================================================================
// TESTS
// ============================================================================

func TestCreateFarm(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	farm, err := svc.Create(context.Background(), CreateRequest{
		Code:            "gv-001",
		Name:            "  Green Valley Farm  ",
		Country:         "Nigeria",
		DefaultCurrency: "ngn",
	})
	require.NoError(t, err)
	assert.Equal(t, "GV-001", farm.Code, "code should be upper-cased")
	assert.Equal(t, "Green Valley Farm", farm.Name, "name should be trimmed")
	assert.Equal(t, "NGN", farm.DefaultCurrency)
	assert.Equal(t, StatusActive, farm.Status, "new farms start active")
	assert.NotZero(t, farm.ID)
}

func TestCreateFarmValidation(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.Create(context.Background(), CreateRequest{Name: "No Code"})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrValidation)

	var fieldErrs *shared.FieldErrors
	require.True(t, errors.As(err, &fieldErrs))
	assert.Contains(t, fieldErrs.Fields, "code")
}

func TestCreateFarmDuplicateCode(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), CreateRequest{Code: "GV-001", Name: "First"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateRequest{Code: "GV-001", Name: "Second"})
	assert.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestUpdateFarm(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), CreateRequest{Code: "GV-001", Name: "Old Name"})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, UpdateRequest{
		Name:   "New Name",
		Status: StatusInactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, StatusInactive, updated.Status)
	assert.Equal(t, "GV-001", updated.Code, "code is immutable on update")
}

func TestUpdateFarmKeepsStatusWhenOmitted(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), CreateRequest{Code: "GV-001", Name: "Farm"})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, UpdateRequest{Name: "Farm"})
	require.NoError(t, err)
	assert.Equal(t, StatusActive, updated.Status)
}

func TestGetFarmInvalidID(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.Get(context.Background(), 0)
	assert.ErrorIs(t, err, shared.ErrInvalidID)

	_, err = svc.Get(context.Background(), -5)
	assert.ErrorIs(t, err, shared.ErrInvalidID)
}

func TestGetFarmNotFound(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.Get(context.Background(), 99)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteFarm(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), CreateRequest{Code: "GV-001", Name: "Farm"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	_, err = svc.Get(context.Background(), created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListFarmsRepositoryError(t *testing.T) {
	repo := newMockRepository()
	repo.listError = errors.New("connection refused")
	svc := NewService(repo)

	_, _, err := svc.List(context.Background(), mdshared.ListFilters{Page: 1, Limit: 20})
	assert.Error(t, err)
}
