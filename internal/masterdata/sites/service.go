package sites

import (
	"context"
	"strings"

	mdshared "github.com/farmdeck-erp/farmdeck-erp/internal/masterdata/shared"
	"github.com/farmdeck-erp/farmdeck-erp/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters mdshared.ListFilters) ([]Site, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Site, error) {
	if id <= 0 {
		return Site{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req SaveRequest) (Site, error) {
	if fields := shared.ValidateStruct(req); fields != nil {
		return Site{}, shared.NewFieldErrors(fields)
	}
	return s.repo.Create(ctx, fromRequest(Site{IsActive: true}, req))
}

func (s *Service) Update(ctx context.Context, id int64, req SaveRequest) (Site, error) {
	if id <= 0 {
		return Site{}, shared.ErrInvalidID
	}
	if fields := shared.ValidateStruct(req); fields != nil {
		return Site{}, shared.NewFieldErrors(fields)
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Site{}, err
	}
	if err := s.repo.Update(ctx, id, fromRequest(current, req)); err != nil {
		return Site{}, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

func fromRequest(base Site, req SaveRequest) Site {
	base.FarmID = req.FarmID
	base.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	base.Name = strings.TrimSpace(req.Name)
	base.Type = strings.ToUpper(req.Type)
	base.Description = req.Description
	base.Address = req.Address
	base.Latitude = req.Latitude
	base.Longitude = req.Longitude
	base.TotalArea = req.TotalArea
	base.AreaUnit = req.AreaUnit
	base.Notes = req.Notes
	if req.IsActive != nil {
		base.IsActive = *req.IsActive
	}
	return base
}
