package harvests

import (
	"context"
	"fmt"
	"time"

	"github.com/farmdeck-erp/farmdeck-erp/internal/agrorules"
	"github.com/farmdeck-erp/farmdeck-erp/internal/production/cycles"
	"github.com/farmdeck-erp/farmdeck-erp/internal/shared"
)

// CycleStore is the slice of the cycle repository harvests need.
type CycleStore interface {
	Get(ctx context.Context, id int64) (cycles.Cycle, error)
}

type Service struct {
	repo      Repository
	cycleRepo CycleStore
	rules     agrorules.Ruleset
	audit     *shared.AuditLogger

	now func() time.Time
}

func NewService(repo Repository, cycleRepo CycleStore, rules agrorules.Ruleset, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, cycleRepo: cycleRepo, rules: rules, audit: audit, now: time.Now}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Record, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Record, error) {
	if id <= 0 {
		return Record{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req SaveRequest) (Record, error) {
	rec, err := s.buildRecord(ctx, Record{Status: StatusDraft}, req)
	if err != nil {
		return Record{}, err
	}
	rec.Code = shared.NewReferenceCode("HR", s.now())
	created, err := s.repo.Create(ctx, rec)
	if err != nil {
		return Record{}, err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Entity:   "harvest_record",
		EntityID: created.Code,
		Action:   "create",
		Meta:     map[string]any{"cycle_id": created.CycleID, "total_weight_kg": created.TotalWeightKg},
	})
	return created, nil
}

// Update edits a DRAFT record. Submitted and approved records are locked.
func (s *Service) Update(ctx context.Context, id int64, req SaveRequest) (Record, error) {
	if id <= 0 {
		return Record{}, shared.ErrInvalidID
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if current.Status != StatusDraft {
		return Record{}, fmt.Errorf("harvest record %s is %s: %w", current.Code, current.Status, shared.ErrConflict)
	}
	updated, err := s.buildRecord(ctx, current, req)
	if err != nil {
		return Record{}, err
	}
	if err := s.repo.Update(ctx, id, updated); err != nil {
		return Record{}, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Submit(ctx context.Context, id int64) (Record, error) {
	return s.advance(ctx, id, StatusDraft, StatusSubmitted, func(rec *Record) {
		at := s.now()
		rec.SubmittedAt = &at
	})
}

func (s *Service) Approve(ctx context.Context, id int64, approvedBy string) (Record, error) {
	return s.advance(ctx, id, StatusSubmitted, StatusApproved, func(rec *Record) {
		at := s.now()
		rec.ApprovedBy = approvedBy
		rec.ApprovedAt = &at
	})
}

// Delete removes a DRAFT record. Anything past draft stays for the books.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if rec.Status != StatusDraft {
		return fmt.Errorf("harvest record %s is %s: %w", rec.Code, rec.Status, shared.ErrConflict)
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) TotalsByCycle(ctx context.Context, cycleID int64) (Totals, error) {
	if cycleID <= 0 {
		return Totals{}, shared.ErrInvalidID
	}
	if _, err := s.cycleRepo.Get(ctx, cycleID); err != nil {
		return Totals{}, err
	}
	return s.repo.TotalsByCycle(ctx, cycleID)
}

func (s *Service) advance(ctx context.Context, id int64, from, to string, stamp func(*Record)) (Record, error) {
	if id <= 0 {
		return Record{}, shared.ErrInvalidID
	}
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if rec.Status != from {
		return Record{}, fmt.Errorf("harvest record %s is %s, expected %s: %w",
			rec.Code, rec.Status, from, shared.ErrConflict)
	}
	rec.Status = to
	stamp(&rec)
	if err := s.repo.Update(ctx, id, rec); err != nil {
		return Record{}, err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Entity:   "harvest_record",
		EntityID: rec.Code,
		Action:   "status",
		Meta:     map[string]any{"from": from, "to": to},
	})
	return s.repo.Get(ctx, id)
}

// buildRecord validates the request against the cycle's date window and
// derives total weight and crate count from the grade weights.
func (s *Service) buildRecord(ctx context.Context, base Record, req SaveRequest) (Record, error) {
	if fields := shared.ValidateStruct(req); fields != nil {
		return Record{}, shared.NewFieldErrors(fields)
	}

	cycle, err := s.cycleRepo.Get(ctx, req.CycleID)
	if err != nil {
		return Record{}, err
	}
	eligible := cycle.Status == cycles.StatusActive || cycle.Status == cycles.StatusHarvesting ||
		(cycle.Status == cycles.StatusPlanned && req.AllowPlanned)
	if !eligible {
		return Record{}, fmt.Errorf("cycle %s is %s, harvests need an active cycle: %w",
			cycle.Code, cycle.Status, shared.ErrConflict)
	}

	harvestDate, err := agrorules.ParseDate(req.HarvestDate)
	if err != nil {
		return Record{}, shared.NewFieldErrors(map[string]string{"harvest_date": "must be a valid date (YYYY-MM-DD)"})
	}

	bellPepper := agrorules.IsBellPepper(cycle.Crop)
	minDays := s.rules.MinGrowthDays(cycle.Crop)
	check := agrorules.ValidateDate(harvestDate, cycle.HarvestReference(bellPepper), minDays)
	if !check.Valid {
		return Record{}, shared.NewFieldErrors(map[string]string{
			"harvest_date": fmt.Sprintf("is %d days after planting, needs at least %d, earliest allowed is %s",
				check.DaysDifference, minDays, check.MinimumDate.Format(agrorules.DateLayout)),
		})
	}
	var cycleEnd time.Time
	if cycle.ActualEndDate != nil {
		cycleEnd = *cycle.ActualEndDate
	}
	if maxDate := agrorules.MaximumDate(cycleEnd, s.now()); harvestDate.After(maxDate) {
		return Record{}, shared.NewFieldErrors(map[string]string{
			"harvest_date": fmt.Sprintf("cannot be after %s", maxDate.Format(agrorules.DateLayout)),
		})
	}

	weights := agrorules.GradeWeights{}
	if req.GradeAKg != nil {
		weights.A = *req.GradeAKg
	}
	if req.GradeBKg != nil {
		weights.B = *req.GradeBKg
	}
	if req.GradeCKg != nil {
		weights.C = *req.GradeCKg
	}

	base.FarmID = req.FarmID
	base.GreenhouseID = cycle.GreenhouseID
	base.CycleID = req.CycleID
	base.HarvestDate = harvestDate
	base.GradeAKg = weights.A
	base.GradeBKg = weights.B
	base.GradeCKg = weights.C
	base.TotalWeightKg = agrorules.TotalWeight(weights)
	base.Notes = req.Notes
	if req.RecordedBy != "" {
		base.RecordedBy = req.RecordedBy
	}

	if req.CratesCount != nil {
		base.CratesCount = *req.CratesCount
		base.CratesOverridden = true
	} else {
		crates, err := agrorules.CrateCount(base.TotalWeightKg, s.rules.AvgCrateCapacityKg)
		if err != nil {
			return Record{}, err
		}
		base.CratesCount = crates
		base.CratesOverridden = false
	}
	return base, nil
}
