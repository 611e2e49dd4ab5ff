package orders

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/farmdeck-erp/farmdeck-erp/internal/platform/db"
	"github.com/farmdeck-erp/farmdeck-erp/internal/shared"
)

// ListFilters narrows the order list.
type ListFilters struct {
	Page       int
	Limit      int
	FarmID     *int64
	CustomerID *int64
	Status     string
	From       *time.Time
	To         *time.Time
}

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]SalesOrder, int, error)
	Get(ctx context.Context, id int64) (SalesOrder, error)
	Create(ctx context.Context, order SalesOrder) (SalesOrder, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	KPI(ctx context.Context, farmID *int64, from, to time.Time) (KPI, error)
	QuantityByProduct(ctx context.Context, farmID *int64, from, to time.Time) (map[string]float64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const orderColumns = `id, farm_id, customer_id, order_number, status, order_date,
	total_amount, notes, created_at, updated_at`

// List returns orders without lines; Get loads the full document.
func (r *repository) List(ctx context.Context, filters ListFilters) ([]SalesOrder, int, error) {
	query := `SELECT ` + orderColumns + ` FROM sales_orders WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM sales_orders WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	appendClause := func(clause string, value interface{}) {
		argCount++
		full := ` AND ` + clause + ` $` + strconv.Itoa(argCount)
		query += full
		countQuery += full
		args = append(args, value)
	}

	if filters.FarmID != nil {
		appendClause("farm_id =", *filters.FarmID)
	}
	if filters.CustomerID != nil {
		appendClause("customer_id =", *filters.CustomerID)
	}
	if filters.Status != "" {
		appendClause("status =", filters.Status)
	}
	if filters.From != nil {
		appendClause("order_date >=", *filters.From)
	}
	if filters.To != nil {
		appendClause("order_date <=", *filters.To)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY order_date DESC, id DESC`

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

	var items []SalesOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, o)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (SalesOrder, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM sales_orders WHERE id = $1`, id)
	order, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return SalesOrder{}, shared.ErrNotFound
	}
	if err != nil {
		return SalesOrder{}, err
	}

	lineRows, err := r.pool.Query(ctx, `
		SELECT id, order_id, product, grade, quantity_kg, unit_price, line_total
		FROM sales_order_lines WHERE order_id = $1 ORDER BY id ASC`, id)
	if err != nil {
		return SalesOrder{}, err
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var l OrderLine
		if err := lineRows.Scan(&l.ID, &l.OrderID, &l.Product, &l.Grade,
			&l.QuantityKg, &l.UnitPrice, &l.LineTotal); err != nil {
			return SalesOrder{}, err
		}
		order.Lines = append(order.Lines, l)
	}
	return order, lineRows.Err()
}

// Create inserts the order and its lines atomically.
func (r *repository) Create(ctx context.Context, order SalesOrder) (SalesOrder, error) {
	now := time.Now()
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO sales_orders (farm_id, customer_id, order_number, status,
				order_date, total_amount, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
			RETURNING id, created_at, updated_at`,
			order.FarmID, order.CustomerID, order.OrderNumber, order.Status,
			order.OrderDate, order.TotalAmount, order.Notes, now,
		).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return err
		}
		for i := range order.Lines {
			line := &order.Lines[i]
			line.OrderID = order.ID
			err := tx.QueryRow(ctx, `
				INSERT INTO sales_order_lines (order_id, product, grade, quantity_kg,
					unit_price, line_total)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING id`,
				line.OrderID, line.Product, line.Grade, line.QuantityKg,
				line.UnitPrice, line.LineTotal,
			).Scan(&line.ID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return SalesOrder{}, err
	}
	return order, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE sales_orders SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// KPI aggregates over non-cancelled orders in the window.
func (r *repository) KPI(ctx context.Context, farmID *int64, from, to time.Time) (KPI, error) {
	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE o.status = 'CONFIRMED'),
			COALESCE(SUM(o.total_amount), 0),
			COALESCE(SUM(l.quantity_kg), 0)
		FROM sales_orders o
		LEFT JOIN sales_order_lines l ON l.order_id = o.id
		WHERE o.status <> 'CANCELLED' AND o.order_date BETWEEN $1 AND $2`
	args := []interface{}{from, to}
	if farmID != nil {
		query += ` AND o.farm_id = $3`
		args = append(args, *farmID)
	}

	var k KPI
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&k.TotalOrders, &k.ConfirmedOrders, &k.TotalRevenue, &k.TotalQuantityKg)
	return k, err
}

func (r *repository) QuantityByProduct(ctx context.Context, farmID *int64, from, to time.Time) (map[string]float64, error) {
	query := `
		SELECT l.product, COALESCE(SUM(l.quantity_kg), 0)
		FROM sales_order_lines l
		JOIN sales_orders o ON o.id = l.order_id
		WHERE o.status <> 'CANCELLED' AND o.order_date BETWEEN $1 AND $2`
	args := []interface{}{from, to}
	if farmID != nil {
		query += ` AND o.farm_id = $3`
		args = append(args, *farmID)
	}
	query += ` GROUP BY l.product`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var product string
		var qty float64
		if err := rows.Scan(&product, &qty); err != nil {
			return nil, err
		}
		out[product] = qty
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (SalesOrder, error) {
	var o SalesOrder
	err := row.Scan(&o.ID, &o.FarmID, &o.CustomerID, &o.OrderNumber, &o.Status,
		&o.OrderDate, &o.TotalAmount, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}
