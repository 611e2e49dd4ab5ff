package farms

import (
	"strings"

	"github.com/farmdeck-erp/farmdeck-erp/internal/shared"
)

func (s *Service) validateCreate(req CreateRequest) (Farm, error) {
	if fields := shared.ValidateStruct(req); fields != nil {
		return Farm{}, shared.NewFieldErrors(fields)
	}
	return Farm{
		Code:            strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:            strings.TrimSpace(req.Name),
		LegalName:       strings.TrimSpace(req.LegalName),
		FarmType:        req.FarmType,
		Country:         req.Country,
		State:           req.State,
		Town:            req.Town,
		DefaultCurrency: strings.ToUpper(req.DefaultCurrency),
		DefaultTimezone: req.DefaultTimezone,
		Status:          StatusActive,
	}, nil
}

func (s *Service) validateUpdate(current Farm, req UpdateRequest) (Farm, error) {
	if fields := shared.ValidateStruct(req); fields != nil {
		return Farm{}, shared.NewFieldErrors(fields)
	}
	current.Name = strings.TrimSpace(req.Name)
	current.LegalName = strings.TrimSpace(req.LegalName)
	current.FarmType = req.FarmType
	current.Country = req.Country
	current.State = req.State
	current.Town = req.Town
	current.DefaultCurrency = strings.ToUpper(req.DefaultCurrency)
	current.DefaultTimezone = req.DefaultTimezone
	if req.Status != "" {
		current.Status = req.Status
	}
	return current, nil
}
