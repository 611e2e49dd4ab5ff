package farms

import (
	"context"

	mdshared "github.com/farmdeck-erp/farmdeck-erp/internal/masterdata/shared"
	"github.com/farmdeck-erp/farmdeck-erp/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters mdshared.ListFilters) ([]Farm, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Farm, error) {
	if id <= 0 {
		return Farm{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Farm, error) {
	farm, err := s.validateCreate(req)
	if err != nil {
		return Farm{}, err
	}
	return s.repo.Create(ctx, farm)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (Farm, error) {
	if id <= 0 {
		return Farm{}, shared.ErrInvalidID
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Farm{}, err
	}
	updated, err := s.validateUpdate(current, req)
	if err != nil {
		return Farm{}, err
	}
	if err := s.repo.Update(ctx, id, updated); err != nil {
		return Farm{}, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}
