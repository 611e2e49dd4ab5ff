package batches

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/farmdeck-erp/farmdeck-erp/internal/agrorules"
	"github.com/farmdeck-erp/farmdeck-erp/internal/shared"
)

// CacheBumper invalidates the availability cache after writes that change
// sellable stock.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// WarmupEnqueuer schedules the availability warmup job after a batch
// completes.
type WarmupEnqueuer interface {
	EnqueueAvailabilityWarmup(ctx context.Context, farmID int64) error
}

type Service struct {
	repo     Repository
	cache    CacheBumper
	enqueuer WarmupEnqueuer
	audit    *shared.AuditLogger
	logger   *slog.Logger

	now func() time.Time
}

func NewService(repo Repository, cache CacheBumper, enqueuer WarmupEnqueuer, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, enqueuer: enqueuer, audit: audit, logger: logger, now: time.Now}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Batch, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Batch, error) {
	if id <= 0 {
		return Batch{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req SaveRequest) (Batch, error) {
	b, err := s.buildBatch(Batch{Status: StatusProcessing}, req)
	if err != nil {
		return Batch{}, err
	}
	b.Code = shared.NewReferenceCode("GB", s.now())
	created, err := s.repo.Create(ctx, b)
	if err != nil {
		return Batch{}, err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Entity:   "gari_batch",
		EntityID: created.Code,
		Action:   "create",
		Meta:     map[string]any{"farm_id": created.FarmID, "gari_produced_kg": created.GariProducedKg},
	})
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, req SaveRequest) (Batch, error) {
	if id <= 0 {
		return Batch{}, shared.ErrInvalidID
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Batch{}, err
	}
	if current.Status != StatusProcessing {
		return Batch{}, fmt.Errorf("batch %s is %s: %w", current.Code, current.Status, shared.ErrConflict)
	}
	updated, err := s.buildBatch(current, req)
	if err != nil {
		return Batch{}, err
	}
	if err := s.repo.Update(ctx, id, updated); err != nil {
		return Batch{}, err
	}
	return s.repo.Get(ctx, id)
}

// Complete freezes the batch numbers and makes it sellable. The availability
// cache is invalidated and a warmup job queued so the next FIFO lookup is
// fresh and cheap.
func (s *Service) Complete(ctx context.Context, id int64) (Batch, error) {
	if id <= 0 {
		return Batch{}, shared.ErrInvalidID
	}
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return Batch{}, err
	}
	if b.Status != StatusProcessing {
		return Batch{}, fmt.Errorf("batch %s is %s: %w", b.Code, b.Status, shared.ErrConflict)
	}
	if b.GariProducedKg <= 0 {
		return Batch{}, shared.NewFieldErrors(map[string]string{
			"gari_produced_kg": "must be greater than 0 to complete a batch",
		})
	}

	b.Status = StatusCompleted
	if err := s.repo.Update(ctx, id, b); err != nil {
		return Batch{}, err
	}

	if s.cache != nil {
		if err := s.cache.Bump(ctx); err != nil {
			s.logger.Warn("availability cache bump failed", "error", err)
		}
	}
	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueueAvailabilityWarmup(ctx, b.FarmID); err != nil {
			s.logger.Warn("availability warmup enqueue failed", "error", err)
		}
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Entity:   "gari_batch",
		EntityID: b.Code,
		Action:   "complete",
		Meta:     map[string]any{"gari_produced_kg": b.GariProducedKg, "cost_per_kg": b.CostPerKgGari},
	})
	return s.repo.Get(ctx, id)
}

func (s *Service) buildBatch(base Batch, req SaveRequest) (Batch, error) {
	if fields := shared.ValidateStruct(req); fields != nil {
		return Batch{}, shared.NewFieldErrors(fields)
	}
	date, err := agrorules.ParseDate(req.ProcessingDate)
	if err != nil {
		return Batch{}, shared.NewFieldErrors(map[string]string{"processing_date": "must be a valid date (YYYY-MM-DD)"})
	}
	if req.GariProducedKg > req.CassavaQuantityKg {
		return Batch{}, shared.NewFieldErrors(map[string]string{
			"gari_produced_kg": "cannot exceed the cassava input quantity",
		})
	}

	base.FarmID = req.FarmID
	base.ProcessingDate = date
	base.CassavaSource = req.CassavaSource
	base.CassavaQuantityKg = req.CassavaQuantityKg
	base.CassavaCostPerKg = req.CassavaCostPerKg
	base.GariProducedKg = req.GariProducedKg
	base.GariType = req.GariType
	base.GariGrade = req.GariGrade
	base.LabourCost = req.LabourCost
	base.FuelCost = req.FuelCost
	base.EquipmentCost = req.EquipmentCost
	base.WaterCost = req.WaterCost
	base.TransportCost = req.TransportCost
	base.OtherCosts = req.OtherCosts
	base.WasteKg = req.WasteKg
	base.Notes = req.Notes
	base.deriveCosts()
	return base, nil
}
