package boreholes

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

func (s *Service) List(ctx context.Context, filters mdshared.ListFilters) ([]Borehole, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Borehole, error) {
	if id <= 0 {
		return Borehole{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req SaveRequest) (Borehole, error) {
	bh, err := fromRequest(Borehole{IsActive: true}, req)
	if err != nil {
		return Borehole{}, err
	}
	return s.repo.Create(ctx, bh)
}

func (s *Service) Update(ctx context.Context, id int64, req SaveRequest) (Borehole, error) {
	if id <= 0 {
		return Borehole{}, shared.ErrInvalidID
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Borehole{}, err
	}
	updated, err := fromRequest(current, req)
	if err != nil {
		return Borehole{}, err
	}
	if err := s.repo.Update(ctx, id, updated); err != nil {
		return Borehole{}, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

func fromRequest(base Borehole, req SaveRequest) (Borehole, error) {
	if fields := shared.ValidateStruct(req); fields != nil {
		return Borehole{}, shared.NewFieldErrors(fields)
	}
	base.FarmID = req.FarmID
	base.SiteID = req.SiteID
	base.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	base.Name = strings.TrimSpace(req.Name)
	base.InstallationCost = req.InstallationCost
	base.AmortizationCycles = req.AmortizationCycles
	base.Specifications = req.Specifications
	base.Notes = req.Notes
	if req.IsActive != nil {
		base.IsActive = *req.IsActive
	}
	if req.InstalledDate != "" {
		installed, err := agrorules.ParseDate(req.InstalledDate)
		if err != nil {
			return Borehole{}, shared.NewFieldErrors(map[string]string{"installed_date": "must be a valid date (YYYY-MM-DD)"})
		}
		if installed.After(time.Now()) {
			return Borehole{}, shared.NewFieldErrors(map[string]string{"installed_date": "cannot be in the future"})
		}
		base.InstalledDate = &installed
	} else {
		base.InstalledDate = nil
	}
	return base, nil
}
