package sales

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/farmdeck-erp/farmdeck-erp/internal/agrorules"
	"github.com/farmdeck-erp/farmdeck-erp/internal/shared"
)

type Service struct {
	repo   Repository
	rules  agrorules.Ruleset
	cache  *Cache
	idem   *shared.IdempotencyStore
	audit  *shared.AuditLogger
	logger *slog.Logger

	group singleflight.Group
	now   func() time.Time
}

func NewService(repo Repository, rules agrorules.Ruleset, cache *Cache, idem *shared.IdempotencyStore, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		rules:  rules,
		cache:  cache,
		idem:   idem,
		audit:  audit,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Sale, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Sale, error) {
	if id <= 0 {
		return Sale{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

// AvailableBatches serves the sale-form bootstrap: FIFO-ordered batches with
// stock, the oldest preselected, and its field defaults. Results are cached
// per farm under the availability version; concurrent misses for the same
// farm collapse into one database load.
func (s *Service) AvailableBatches(ctx context.Context, farmID int64) (AvailabilityResponse, error) {
	if farmID <= 0 {
		return AvailabilityResponse{}, shared.ErrInvalidID
	}

	key, err := s.cache.BuildKey(ctx, "gari:availability", strconv.FormatInt(farmID, 10))
	if err != nil {
		return AvailabilityResponse{}, err
	}

	var raw []agrorules.Batch
	err = s.cache.FetchJSON(ctx, key, &raw, func(ctx context.Context) (interface{}, error) {
		v, err, _ := s.group.Do(key, func() (interface{}, error) {
			return s.repo.AvailableBatches(ctx, farmID)
		})
		return v, err
	})
	if err != nil {
		return AvailabilityResponse{}, err
	}

	available := agrorules.ListAvailable(raw)
	resp := AvailabilityResponse{Batches: available}
	if def := agrorules.SelectDefault(available); def != nil {
		resp.Default = def
		fields := s.rules.FieldsFromBatch(*def)
		resp.Fields = &fields
	}
	return resp, nil
}

// Create records a sale. Kilograms are taken as given or derived from the
// packaging weight table; totals, cost and margin always come from here.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Sale, error) {
	if fields := shared.ValidateStruct(req); fields != nil {
		return Sale{}, shared.NewFieldErrors(fields)
	}
	if req.QuantityKg == nil && req.QuantityUnits == nil {
		return Sale{}, shared.NewFieldErrors(map[string]string{
			"quantity_kg": "either quantity_kg or quantity_units is required",
		})
	}

	saleDate, err := agrorules.ParseDate(req.SaleDate)
	if err != nil {
		return Sale{}, shared.NewFieldErrors(map[string]string{"sale_date": "must be a valid date (YYYY-MM-DD)"})
	}

	if req.IdempotencyKey != "" && s.idem != nil {
		if err := s.idem.CheckAndInsert(ctx, req.IdempotencyKey, "gari_sales"); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				return Sale{}, fmt.Errorf("duplicate sale submission: %w", shared.ErrConflict)
			}
			return Sale{}, err
		}
	}

	batch, err := s.lookupBatch(ctx, req.FarmID, req.BatchID)
	if err != nil {
		return Sale{}, err
	}
	fields := s.rules.FieldsFromBatch(batch)

	packaging := req.PackagingType
	if packaging == "" {
		packaging = fields.DefaultPackaging
	}

	quantityKg := 0.0
	quantityUnits := 0
	if req.QuantityKg != nil {
		quantityKg = *req.QuantityKg
		if req.QuantityUnits != nil {
			quantityUnits = *req.QuantityUnits
		}
	} else {
		quantityUnits = *req.QuantityUnits
		if packaging == BulkPackaging {
			return Sale{}, shared.NewFieldErrors(map[string]string{
				"quantity_kg": "bulk sales must state the kilograms directly",
			})
		}
		quantityKg, err = s.rules.KgFromPackaging(packaging, quantityUnits)
		if err != nil {
			return Sale{}, shared.NewFieldErrors(map[string]string{
				"packaging_type": fmt.Sprintf("unknown packaging %q", packaging),
			})
		}
	}
	if quantityKg <= 0 {
		return Sale{}, shared.NewFieldErrors(map[string]string{"quantity_kg": "must be greater than 0"})
	}

	sale := Sale{
		FarmID:          req.FarmID,
		BatchID:         req.BatchID,
		Code:            shared.NewReferenceCode("GS", s.now()),
		SaleDate:        saleDate,
		CustomerName:    req.CustomerName,
		CustomerContact: req.CustomerContact,
		GariType:        fields.GariType,
		GariGrade:       fields.GariGrade,
		PackagingType:   packaging,
		QuantityKg:      quantityKg,
		QuantityUnits:   quantityUnits,
		UnitPrice:       req.UnitPrice,
		Discount:        req.Discount,
		CostPerKg:       fields.CostPerKg,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
	}
	sale.TotalAmount = sale.QuantityKg * sale.UnitPrice
	sale.FinalAmount = sale.TotalAmount - sale.Discount
	if sale.FinalAmount < 0 {
		return Sale{}, shared.NewFieldErrors(map[string]string{"discount": "cannot exceed the sale amount"})
	}
	sale.TotalCost = sale.QuantityKg * sale.CostPerKg
	sale.GrossMargin = sale.FinalAmount - sale.TotalCost
	if sale.FinalAmount > 0 {
		sale.GrossMarginPct = sale.GrossMargin / sale.FinalAmount * 100
	}

	paid := sale.FinalAmount
	if req.AmountPaid != nil {
		paid = *req.AmountPaid
	}
	sale.AmountPaid = paid
	switch {
	case paid >= sale.FinalAmount:
		sale.PaymentStatus = PaymentPaid
	case paid > 0:
		sale.PaymentStatus = PaymentPartial
	default:
		sale.PaymentStatus = PaymentUnpaid
	}

	created, err := s.repo.CreateSale(ctx, sale)
	if err != nil {
		// Give a retry with the same key a chance once the cause is fixed.
		if req.IdempotencyKey != "" && s.idem != nil && !errors.Is(err, shared.ErrConflict) {
			_ = s.idem.Delete(ctx, req.IdempotencyKey)
		}
		return Sale{}, err
	}

	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("availability cache bump failed", "error", err)
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Entity:   "gari_sale",
		EntityID: created.Code,
		Action:   "create",
		Meta: map[string]any{
			"batch_id":     created.BatchID,
			"quantity_kg":  created.QuantityKg,
			"final_amount": created.FinalAmount,
		},
	})
	return created, nil
}

// lookupBatch finds the batch inside the farm's availability set.
func (s *Service) lookupBatch(ctx context.Context, farmID, batchID int64) (agrorules.Batch, error) {
	raw, err := s.repo.AvailableBatches(ctx, farmID)
	if err != nil {
		return agrorules.Batch{}, err
	}
	for _, b := range raw {
		if b.ID == batchID {
			return b, nil
		}
	}
	return agrorules.Batch{}, fmt.Errorf("batch %d has no sellable stock: %w", batchID, shared.ErrNotFound)
}
