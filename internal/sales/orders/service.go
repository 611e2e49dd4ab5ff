package orders

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/farmdeck-erp/farmdeck-erp/internal/agrorules"
	"github.com/farmdeck-erp/farmdeck-erp/internal/sales/customers"
	"github.com/farmdeck-erp/farmdeck-erp/internal/shared"
)

// CustomerStore is the slice of the customer repository orders need.
type CustomerStore interface {
	Get(ctx context.Context, id int64) (customers.Customer, error)
}

type Service struct {
	repo      Repository
	custRepo  CustomerStore
	audit     *shared.AuditLogger

	now func() time.Time
}

func NewService(repo Repository, custRepo CustomerStore, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, custRepo: custRepo, audit: audit, now: time.Now}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]SalesOrder, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (SalesOrder, error) {
	if id <= 0 {
		return SalesOrder{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

// Create opens a draft order. Line totals and the order total are derived
// here, client supplied totals are ignored.
func (s *Service) Create(ctx context.Context, req CreateRequest) (SalesOrder, error) {
	if fields := shared.ValidateStruct(req); fields != nil {
		return SalesOrder{}, shared.NewFieldErrors(fields)
	}

	customer, err := s.custRepo.Get(ctx, req.CustomerID)
	if err != nil {
		return SalesOrder{}, err
	}
	if !customer.IsActive {
		return SalesOrder{}, fmt.Errorf("customer %s is inactive: %w", customer.Code, shared.ErrConflict)
	}

	orderDate, err := agrorules.ParseDate(req.OrderDate)
	if err != nil {
		return SalesOrder{}, shared.NewFieldErrors(map[string]string{"order_date": "must be a valid date (YYYY-MM-DD)"})
	}

	order := SalesOrder{
		FarmID:      req.FarmID,
		CustomerID:  req.CustomerID,
		OrderNumber: shared.NewReferenceCode("SO", s.now()),
		Status:      StatusDraft,
		OrderDate:   orderDate,
		Notes:       req.Notes,
	}
	for _, l := range req.Lines {
		line := OrderLine{
			Product:    l.Product,
			Grade:      l.Grade,
			QuantityKg: l.QuantityKg,
			UnitPrice:  l.UnitPrice,
			LineTotal:  l.QuantityKg * l.UnitPrice,
		}
		order.TotalAmount += line.LineTotal
		order.Lines = append(order.Lines, line)
	}

	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return SalesOrder{}, err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Entity:   "sales_order",
		EntityID: created.OrderNumber,
		Action:   "create",
		Meta:     map[string]any{"customer_id": created.CustomerID, "total_amount": created.TotalAmount},
	})
	return created, nil
}

func (s *Service) Confirm(ctx context.Context, id int64) (SalesOrder, error) {
	return s.transition(ctx, id, StatusConfirmed, map[string]bool{StatusDraft: true})
}

func (s *Service) Deliver(ctx context.Context, id int64) (SalesOrder, error) {
	return s.transition(ctx, id, StatusDelivered, map[string]bool{StatusConfirmed: true})
}

func (s *Service) Cancel(ctx context.Context, id int64) (SalesOrder, error) {
	return s.transition(ctx, id, StatusCancelled, map[string]bool{
		StatusDraft: true, StatusConfirmed: true,
	})
}

func (s *Service) transition(ctx context.Context, id int64, to string, allowedFrom map[string]bool) (SalesOrder, error) {
	if id <= 0 {
		return SalesOrder{}, shared.ErrInvalidID
	}
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return SalesOrder{}, err
	}
	if !allowedFrom[order.Status] {
		return SalesOrder{}, fmt.Errorf("cannot move order %s from %s to %s: %w",
			order.OrderNumber, order.Status, to, shared.ErrConflict)
	}
	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return SalesOrder{}, err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Entity:   "sales_order",
		EntityID: order.OrderNumber,
		Action:   "status",
		Meta:     map[string]any{"from": order.Status, "to": to},
	})
	return s.repo.Get(ctx, id)
}

// DashboardKPI aggregates the sales dashboard numbers. The two queries are
// independent and run concurrently.
type DashboardKPI struct {
	KPI
	QuantityByProduct map[string]float64 `json:"quantity_by_product"`
}

func (s *Service) Dashboard(ctx context.Context, farmID *int64, from, to time.Time) (DashboardKPI, error) {
	var out DashboardKPI

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		kpi, err := s.repo.KPI(ctx, farmID, from, to)
		if err != nil {
			return err
		}
		out.KPI = kpi
		return nil
	})
	g.Go(func() error {
		byProduct, err := s.repo.QuantityByProduct(ctx, farmID, from, to)
		if err != nil {
			return err
		}
		out.QuantityByProduct = byProduct
		return nil
	})
	if err := g.Wait(); err != nil {
		return DashboardKPI{}, err
	}
	return out, nil
}
