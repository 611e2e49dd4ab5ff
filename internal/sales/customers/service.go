package customers

import (
	"context"
	"strings"
	"time"

	"github.com/farmdeck-erp/farmdeck-erp/internal/shared"
)

type Service struct {
	repo Repository

	now func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Customer, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Customer, error) {
	if id <= 0 {
		return Customer{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req SaveRequest) (Customer, error) {
	if fields := shared.ValidateStruct(req); fields != nil {
		return Customer{}, shared.NewFieldErrors(fields)
	}
	c := applyRequest(Customer{CustomerType: TypeRetail, IsActive: true}, req)
	c.Code = shared.NewReferenceCode("CU", s.now())
	return s.repo.Create(ctx, c)
}

func (s *Service) Update(ctx context.Context, id int64, req SaveRequest) (Customer, error) {
	if id <= 0 {
		return Customer{}, shared.ErrInvalidID
	}
	if fields := shared.ValidateStruct(req); fields != nil {
		return Customer{}, shared.NewFieldErrors(fields)
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Customer{}, err
	}
	if err := s.repo.Update(ctx, id, applyRequest(current, req)); err != nil {
		return Customer{}, err
	}
	return s.repo.Get(ctx, id)
}

func applyRequest(base Customer, req SaveRequest) Customer {
	base.Name = strings.TrimSpace(req.Name)
	if req.CustomerType != "" {
		base.CustomerType = req.CustomerType
	}
	base.Phone = strings.TrimSpace(req.Phone)
	base.Email = strings.ToLower(strings.TrimSpace(req.Email))
	base.Address = req.Address
	base.Notes = req.Notes
	if req.IsActive != nil {
		base.IsActive = *req.IsActive
	}
	return base
}
