package greenhouses

import (
	"context"
	"strings"
	"time"

	"github.com/farmdeck-erp/farmdeck-erp/internal/agrorules"
	mdshared "github.com/farmdeck-erp/farmdeck-erp/internal/masterdata/shared"
	"github.com/farmdeck-erp/farmdeck-erp/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters mdshared.ListFilters) ([]Greenhouse, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Greenhouse, error) {
	if id <= 0 {
		return Greenhouse{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req SaveRequest) (Greenhouse, error) {
	gh, err := fromRequest(Greenhouse{IsActive: true}, req)
	if err != nil {
		return Greenhouse{}, err
	}
	return s.repo.Create(ctx, gh)
}

func (s *Service) Update(ctx context.Context, id int64, req SaveRequest) (Greenhouse, error) {
	if id <= 0 {
		return Greenhouse{}, shared.ErrInvalidID
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Greenhouse{}, err
	}
	updated, err := fromRequest(current, req)
	if err != nil {
		return Greenhouse{}, err
	}
	if err := s.repo.Update(ctx, id, updated); err != nil {
		return Greenhouse{}, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

func fromRequest(base Greenhouse, req SaveRequest) (Greenhouse, error) {
	if fields := shared.ValidateStruct(req); fields != nil {
		return Greenhouse{}, shared.NewFieldErrors(fields)
	}
	base.FarmID = req.FarmID
	base.SiteID = req.SiteID
	base.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	base.Name = strings.TrimSpace(req.Name)
	base.SizeSqm = req.SizeSqm
	base.ConstructionCost = req.ConstructionCost
	base.AmortizationCycles = req.AmortizationCycles
	base.Notes = req.Notes
	if req.IsActive != nil {
		base.IsActive = *req.IsActive
	}
	if req.BuiltDate != "" {
		built, err := agrorules.ParseDate(req.BuiltDate)
		if err != nil {
			return Greenhouse{}, shared.NewFieldErrors(map[string]string{"built_date": "must be a valid date (YYYY-MM-DD)"})
		}
		base.BuiltDate = &built
	} else {
		base.BuiltDate = nil
	}
	if base.BuiltDate != nil && base.BuiltDate.After(time.Now()) {
		return Greenhouse{}, shared.NewFieldErrors(map[string]string{"built_date": "cannot be in the future"})
	}
	return base, nil
}
