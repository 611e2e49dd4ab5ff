package cycles

import (
	"context"
	"fmt"
	"time"

	"github.com/farmdeck-erp/farmdeck-erp/internal/agrorules"
	"github.com/farmdeck-erp/farmdeck-erp/internal/shared"
)

type Service struct {
	repo  Repository
	rules agrorules.Ruleset
	audit *shared.AuditLogger

	now func() time.Time
}

func NewService(repo Repository, rules agrorules.Ruleset, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, rules: rules, audit: audit, now: time.Now}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Cycle, int, error) {
	filters.Status = NormalizeStatus(filters.Status)
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Cycle, error) {
	if id <= 0 {
		return Cycle{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Cycle, error) {
	if fields := shared.ValidateStruct(req); fields != nil {
		return Cycle{}, shared.NewFieldErrors(fields)
	}

	start, err := agrorules.ParseDate(req.StartDate)
	if err != nil {
		return Cycle{}, shared.NewFieldErrors(map[string]string{"start_date": "must be a valid date (YYYY-MM-DD)"})
	}

	cycle := Cycle{
		FarmID:          req.FarmID,
		SiteID:          req.SiteID,
		GreenhouseID:    req.GreenhouseID,
		Code:            shared.NewReferenceCode("PC", s.now()),
		Crop:            req.Crop,
		Variety:         req.Variety,
		Status:          StatusPlanned,
		StartDate:       start,
		ExpectedYieldKg: req.ExpectedYieldKg,
		Notes:           req.Notes,
	}

	if req.PlantingDate != "" {
		planting, err := agrorules.ParseDate(req.PlantingDate)
		if err != nil {
			return Cycle{}, shared.NewFieldErrors(map[string]string{"planting_date": "must be a valid date (YYYY-MM-DD)"})
		}
		if planting.Before(start) {
			return Cycle{}, shared.NewFieldErrors(map[string]string{"planting_date": "cannot be before the cycle start date"})
		}
		cycle.PlantingDate = &planting
	}
	if req.ExpectedEndDate != "" {
		end, err := agrorules.ParseDate(req.ExpectedEndDate)
		if err != nil {
			return Cycle{}, shared.NewFieldErrors(map[string]string{"expected_end_date": "must be a valid date (YYYY-MM-DD)"})
		}
		if !end.After(start) {
			return Cycle{}, shared.NewFieldErrors(map[string]string{"expected_end_date": "must be after the start date"})
		}
		cycle.ExpectedEndDate = &end
	}

	created, err := s.repo.Create(ctx, cycle)
	if err != nil {
		return Cycle{}, err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Entity:   "production_cycle",
		EntityID: created.Code,
		Action:   "create",
		Meta:     map[string]any{"crop": created.Crop, "farm_id": created.FarmID},
	})
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (Cycle, error) {
	if id <= 0 {
		return Cycle{}, shared.ErrInvalidID
	}
	if fields := shared.ValidateStruct(req); fields != nil {
		return Cycle{}, shared.NewFieldErrors(fields)
	}
	cycle, err := s.repo.Get(ctx, id)
	if err != nil {
		return Cycle{}, err
	}
	if cycle.IsTerminal() {
		return Cycle{}, fmt.Errorf("cycle %s is %s: %w", cycle.Code, cycle.Status, shared.ErrConflict)
	}

	cycle.Variety = req.Variety
	cycle.ExpectedYieldKg = req.ExpectedYieldKg
	cycle.Notes = req.Notes

	if req.PlantingDate != "" {
		planting, err := agrorules.ParseDate(req.PlantingDate)
		if err != nil {
			return Cycle{}, shared.NewFieldErrors(map[string]string{"planting_date": "must be a valid date (YYYY-MM-DD)"})
		}
		if planting.Before(cycle.StartDate) {
			return Cycle{}, shared.NewFieldErrors(map[string]string{"planting_date": "cannot be before the cycle start date"})
		}
		cycle.PlantingDate = &planting
	}
	if req.ExpectedEndDate != "" {
		end, err := agrorules.ParseDate(req.ExpectedEndDate)
		if err != nil {
			return Cycle{}, shared.NewFieldErrors(map[string]string{"expected_end_date": "must be a valid date (YYYY-MM-DD)"})
		}
		cycle.ExpectedEndDate = &end
	}

	if err := s.repo.Update(ctx, id, cycle); err != nil {
		return Cycle{}, err
	}
	return s.repo.Get(ctx, id)
}

// Transition moves a cycle through its lifecycle. Completing a cycle records
// the actual yield and derives the variance against the expectation.
func (s *Service) Transition(ctx context.Context, id int64, req TransitionRequest) (Cycle, error) {
	if id <= 0 {
		return Cycle{}, shared.ErrInvalidID
	}
	if fields := shared.ValidateStruct(req); fields != nil {
		return Cycle{}, shared.NewFieldErrors(fields)
	}

	target := NormalizeStatus(req.Status)
	cycle, err := s.repo.Get(ctx, id)
	if err != nil {
		return Cycle{}, err
	}
	if !CanTransition(cycle.Status, target) {
		return Cycle{}, fmt.Errorf("cannot move cycle %s from %s to %s: %w",
			cycle.Code, cycle.Status, target, shared.ErrConflict)
	}

	previous := cycle.Status
	cycle.Status = target

	if target == StatusCompleted {
		if req.ActualYieldKg == nil {
			return Cycle{}, shared.NewFieldErrors(map[string]string{"actual_yield_kg": "is required to complete a cycle"})
		}
		cycle.ActualYieldKg = req.ActualYieldKg
		if cycle.ExpectedYieldKg != nil && *cycle.ExpectedYieldKg > 0 {
			variance := (*req.ActualYieldKg - *cycle.ExpectedYieldKg) / *cycle.ExpectedYieldKg * 100
			cycle.YieldVariancePct = &variance
		}
		end := s.now()
		if req.ActualEndDate != "" {
			parsed, err := agrorules.ParseDate(req.ActualEndDate)
			if err != nil {
				return Cycle{}, shared.NewFieldErrors(map[string]string{"actual_end_date": "must be a valid date (YYYY-MM-DD)"})
			}
			end = parsed
		}
		cycle.ActualEndDate = &end
	}
	if target == StatusAbandoned {
		end := s.now()
		cycle.ActualEndDate = &end
	}

	if err := s.repo.Update(ctx, id, cycle); err != nil {
		return Cycle{}, err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Entity:   "production_cycle",
		EntityID: cycle.Code,
		Action:   "transition",
		Meta:     map[string]any{"from": previous, "to": target},
	})
	return s.repo.Get(ctx, id)
}

// HarvestEligibility checks whether a harvest may be recorded on a date.
// Bell pepper measures growth from cycle start, other crops from planting.
func (s *Service) HarvestEligibility(ctx context.Context, id int64, rawDate string) (EligibilityResponse, error) {
	if id <= 0 {
		return EligibilityResponse{}, shared.ErrInvalidID
	}
	cycle, err := s.repo.Get(ctx, id)
	if err != nil {
		return EligibilityResponse{}, err
	}

	candidate := time.Time{}
	if rawDate != "" {
		candidate, err = agrorules.ParseDate(rawDate)
		if err != nil {
			return EligibilityResponse{}, shared.NewFieldErrors(map[string]string{"date": "must be a valid date (YYYY-MM-DD)"})
		}
	}

	bellPepper := agrorules.IsBellPepper(cycle.Crop)
	ref := cycle.HarvestReference(bellPepper)
	minDays := s.rules.MinGrowthDays(cycle.Crop)

	check := agrorules.ValidateDate(candidate, ref, minDays)
	minDate, err := agrorules.MinimumDate(ref, minDays)
	if err != nil {
		return EligibilityResponse{}, err
	}

	var cycleEnd time.Time
	if cycle.ActualEndDate != nil {
		cycleEnd = *cycle.ActualEndDate
	}
	maxDate := agrorules.MaximumDate(cycleEnd, s.now())

	resp := EligibilityResponse{
		Valid:          check.Valid,
		DaysDifference: check.DaysDifference,
		MinimumDate:    minDate.Format(agrorules.DateLayout),
		MaximumDate:    maxDate.Format(agrorules.DateLayout),
		MinGrowthDays:  minDays,
	}
	if !check.Valid {
		resp.Reason = fmt.Sprintf("harvest requires at least %d days of growth, got %d", minDays, check.DaysDifference)
	}
	if check.Valid && !candidate.IsZero() && candidate.After(maxDate) {
		resp.Valid = false
		resp.Reason = "harvest date is after the allowed window"
	}
	return resp, nil
}
