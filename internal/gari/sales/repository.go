package sales

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/farmdeck-erp/farmdeck-erp/internal/agrorules"
	"github.com/farmdeck-erp/farmdeck-erp/internal/platform/db"
	"github.com/farmdeck-erp/farmdeck-erp/internal/shared"
)

// ListFilters narrows the sale list.
type ListFilters struct {
	Page    int
	Limit   int
	FarmID  *int64
	BatchID *int64
	Search  string
}

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Sale, int, error)
	Get(ctx context.Context, id int64) (Sale, error)
	AvailableBatches(ctx context.Context, farmID int64) ([]agrorules.Batch, error)
	CreateSale(ctx context.Context, sale Sale) (Sale, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const saleColumns = `id, farm_id, batch_id, sale_code, sale_date, customer_name,
	customer_contact, gari_type, gari_grade, packaging_type, quantity_kg,
	quantity_units, unit_price, total_amount, discount, final_amount, cost_per_kg,
	total_cost, gross_margin, gross_margin_percent, payment_method, payment_status,
	amount_paid, notes, created_at, updated_at`

// List uses a dynamic query due to filter complexity
func (r *repository) List(ctx context.Context, filters ListFilters) ([]Sale, int, error) {
	query := `SELECT ` + saleColumns + ` FROM gari_sales WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM gari_sales WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.FarmID != nil {
		argCount++
		clause := ` AND farm_id = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, *filters.FarmID)
	}
	if filters.BatchID != nil {
		argCount++
		clause := ` AND batch_id = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, *filters.BatchID)
	}
	if filters.Search != "" {
		argCount++
		p := "$" + strconv.Itoa(argCount)
		clause := ` AND (sale_code ILIKE ` + p + ` OR customer_name ILIKE ` + p + `)`
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY sale_date DESC, id DESC`

	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Sale, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+saleColumns+` FROM gari_sales WHERE id = $1`, id)
	s, err := scanSale(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Sale{}, shared.ErrNotFound
	}
	return s, err
}

// AvailableBatches assembles the selector's view of sellable stock. For each
// COMPLETED batch: packaged inventory rows when any exist, otherwise
// max(0, produced - sold) exposed as a single synthetic BULK option.
func (r *repository) AvailableBatches(ctx context.Context, farmID int64) ([]agrorules.Batch, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT b.id, b.batch_code, b.processing_date, b.gari_produced_kg, b.gari_type,
			b.gari_grade, b.cost_per_kg_gari,
			COALESCE((SELECT SUM(s.quantity_kg) FROM gari_sales s WHERE s.batch_id = b.id), 0)
		FROM gari_production_batches b
		WHERE b.farm_id = $1 AND b.status = 'COMPLETED'
		ORDER BY b.id ASC`, farmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []agrorules.Batch
	for rows.Next() {
		var b agrorules.Batch
		var producedKg, soldKg float64
		if err := rows.Scan(&b.ID, &b.Code, &b.ProcessingDate, &producedKg,
			&b.GariType, &b.GariGrade, &b.CostPerKg, &soldKg); err != nil {
			return nil, err
		}
		b.TotalAvailableKg = producedKg - soldKg
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range batches {
		options, err := r.packagingOptions(ctx, batches[i].ID, batches[i].CostPerKg)
		if err != nil {
			return nil, err
		}
		if len(options) > 0 {
			batches[i].PackagingOptions = options
			var sum float64
			for _, opt := range options {
				sum += opt.AvailableKg
			}
			batches[i].TotalAvailableKg = sum
			continue
		}
		// No packaged inventory, sell loose.
		if batches[i].TotalAvailableKg < 0 {
			batches[i].TotalAvailableKg = 0
		}
		if batches[i].TotalAvailableKg > 0 {
			batches[i].PackagingOptions = []agrorules.PackagingOption{{
				PackagingType: BulkPackaging,
				AvailableKg:   batches[i].TotalAvailableKg,
				CostPerKg:     batches[i].CostPerKg,
			}}
		}
	}
	return batches, nil
}

func (r *repository) packagingOptions(ctx context.Context, batchID int64, costPerKg float64) ([]agrorules.PackagingOption, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT packaging_type, COALESCE(SUM(quantity_kg), 0)
		FROM gari_inventories
		WHERE gari_production_batch_id = $1 AND status = 'AVAILABLE'
		GROUP BY packaging_type
		HAVING COALESCE(SUM(quantity_kg), 0) > 0
		ORDER BY packaging_type`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var options []agrorules.PackagingOption
	for rows.Next() {
		opt := agrorules.PackagingOption{CostPerKg: costPerKg}
		if err := rows.Scan(&opt.PackagingType, &opt.AvailableKg); err != nil {
			return nil, err
		}
		options = append(options, opt)
	}
	return options, rows.Err()
}

// CreateSale inserts the sale and decrements packaged inventory in one
// serializable transaction, re-checking availability inside it.
func (r *repository) CreateSale(ctx context.Context, sale Sale) (Sale, error) {
	now := time.Now()
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var producedKg, soldKg float64
		var status string
		err := tx.QueryRow(ctx, `
			SELECT b.gari_produced_kg, b.status,
				COALESCE((SELECT SUM(s.quantity_kg) FROM gari_sales s WHERE s.batch_id = b.id), 0)
			FROM gari_production_batches b WHERE b.id = $1`,
			sale.BatchID,
		).Scan(&producedKg, &status, &soldKg)
		if errors.Is(err, pgx.ErrNoRows) {
			return shared.ErrNotFound
		}
		if err != nil {
			return err
		}
		if status != "COMPLETED" {
			return fmt.Errorf("batch %d is %s, not sellable: %w", sale.BatchID, status, shared.ErrConflict)
		}

		if sale.PackagingType != BulkPackaging {
			var packagedKg float64
			err := tx.QueryRow(ctx, `
				SELECT COALESCE(SUM(quantity_kg), 0) FROM gari_inventories
				WHERE gari_production_batch_id = $1 AND packaging_type = $2 AND status = 'AVAILABLE'`,
				sale.BatchID, sale.PackagingType,
			).Scan(&packagedKg)
			if err != nil {
				return err
			}
			if packagedKg > 0 {
				if sale.QuantityKg > packagedKg {
					return fmt.Errorf("only %.2f kg of %s left in batch %d: %w",
						packagedKg, sale.PackagingType, sale.BatchID, shared.ErrConflict)
				}
				if err := decrementInventory(ctx, tx, sale); err != nil {
					return err
				}
				return insertSale(ctx, tx, &sale, now)
			}
		}

		available := producedKg - soldKg
		if available < 0 {
			available = 0
		}
		if sale.QuantityKg > available {
			return fmt.Errorf("only %.2f kg left in batch %d: %w",
				available, sale.BatchID, shared.ErrConflict)
		}
		return insertSale(ctx, tx, &sale, now)
	})
	if err != nil {
		return Sale{}, err
	}
	return sale, nil
}

// decrementInventory drains packaged rows oldest first until the sold
// quantity is covered.
func decrementInventory(ctx context.Context, tx pgx.Tx, sale Sale) error {
	rows, err := tx.Query(ctx, `
		SELECT id, quantity_kg FROM gari_inventories
		WHERE gari_production_batch_id = $1 AND packaging_type = $2
			AND status = 'AVAILABLE' AND quantity_kg > 0
		ORDER BY production_date ASC, id ASC
		FOR UPDATE`,
		sale.BatchID, sale.PackagingType)
	if err != nil {
		return err
	}

	type invRow struct {
		id  int64
		qty float64
	}
	var inventory []invRow
	for rows.Next() {
		var row invRow
		if err := rows.Scan(&row.id, &row.qty); err != nil {
			rows.Close()
			return err
		}
		inventory = append(inventory, row)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	remaining := sale.QuantityKg
	for _, row := range inventory {
		if remaining <= 0 {
			break
		}
		take := row.qty
		if take > remaining {
			take = remaining
		}
		if _, err := tx.Exec(ctx, `
			UPDATE gari_inventories
			SET quantity_kg = quantity_kg - $1,
				status = CASE WHEN quantity_kg - $1 <= 0 THEN 'DEPLETED' ELSE status END
			WHERE id = $2`, take, row.id); err != nil {
			return err
		}
		remaining -= take
	}
	if remaining > 0 {
		return fmt.Errorf("inventory changed underneath the sale: %w", shared.ErrConflict)
	}
	return nil
}

func insertSale(ctx context.Context, tx pgx.Tx, sale *Sale, now time.Time) error {
	return tx.QueryRow(ctx, `
		INSERT INTO gari_sales (farm_id, batch_id, sale_code, sale_date, customer_name,
			customer_contact, gari_type, gari_grade, packaging_type, quantity_kg,
			quantity_units, unit_price, total_amount, discount, final_amount,
			cost_per_kg, total_cost, gross_margin, gross_margin_percent,
			payment_method, payment_status, amount_paid, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $24)
		RETURNING id, created_at, updated_at`,
		sale.FarmID, sale.BatchID, sale.Code, sale.SaleDate, sale.CustomerName,
		sale.CustomerContact, sale.GariType, sale.GariGrade, sale.PackagingType,
		sale.QuantityKg, sale.QuantityUnits, sale.UnitPrice, sale.TotalAmount,
		sale.Discount, sale.FinalAmount, sale.CostPerKg, sale.TotalCost,
		sale.GrossMargin, sale.GrossMarginPct, sale.PaymentMethod, sale.PaymentStatus,
		sale.AmountPaid, sale.Notes, now,
	).Scan(&sale.ID, &sale.CreatedAt, &sale.UpdatedAt)
}

func scanSale(row pgx.Row) (Sale, error) {
	var s Sale
	err := row.Scan(&s.ID, &s.FarmID, &s.BatchID, &s.Code, &s.SaleDate, &s.CustomerName,
		&s.CustomerContact, &s.GariType, &s.GariGrade, &s.PackagingType, &s.QuantityKg,
		&s.QuantityUnits, &s.UnitPrice, &s.TotalAmount, &s.Discount, &s.FinalAmount,
		&s.CostPerKg, &s.TotalCost, &s.GrossMargin, &s.GrossMarginPct,
		&s.PaymentMethod, &s.PaymentStatus, &s.AmountPaid, &s.Notes,
		&s.CreatedAt, &s.UpdatedAt)
	return s, err
}
