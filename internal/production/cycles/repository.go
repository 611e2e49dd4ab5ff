package cycles

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/farmdeck-erp/farmdeck-erp/internal/shared"
)

// ListFilters narrows the cycle list.
type ListFilters struct {
	Page     int
	Limit    int
	FarmID   *int64
	Status   string
	Crop     string
	Search   string
	SortDesc bool
}

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Cycle, int, error)
	Get(ctx context.Context, id int64) (Cycle, error)
	Create(ctx context.Context, cycle Cycle) (Cycle, error)
	Update(ctx context.Context, id int64, cycle Cycle) error
	StaleActive(ctx context.Context, olderThan time.Time) ([]Cycle, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const cycleColumns = `id, farm_id, site_id, greenhouse_id, cycle_code, crop, variety, status,
	start_date, planting_date, expected_end_date, actual_end_date,
	expected_yield_kg, actual_yield_kg, yield_variance_percent, notes,
	created_at, updated_at`

// List uses a dynamic query due to filter complexity
func (r *repository) List(ctx context.Context, filters ListFilters) ([]Cycle, int, error) {
	query := `SELECT ` + cycleColumns + ` FROM production_cycles WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM production_cycles WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.FarmID != nil {
		argCount++
		clause := ` AND farm_id = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, *filters.FarmID)
	}
	if filters.Status != "" {
		argCount++
		clause := ` AND status = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, filters.Status)
	}
	if filters.Crop != "" {
		argCount++
		clause := ` AND crop = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, filters.Crop)
	}
	if filters.Search != "" {
		argCount++
		p := "$" + strconv.Itoa(argCount)
		clause := ` AND (cycle_code ILIKE ` + p + ` OR variety ILIKE ` + p + `)`
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if filters.SortDesc {
		query += ` ORDER BY start_date DESC, id DESC`
	} else {
		query += ` ORDER BY start_date ASC, id ASC`
	}

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

	var items []Cycle
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Cycle, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+cycleColumns+` FROM production_cycles WHERE id = $1`, id)
	c, err := scanCycle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Cycle{}, shared.ErrNotFound
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, cycle Cycle) (Cycle, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO production_cycles (farm_id, site_id, greenhouse_id, cycle_code,
			crop, variety, status, start_date, planting_date, expected_end_date,
			expected_yield_kg, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
		RETURNING id, created_at, updated_at`,
		cycle.FarmID, cycle.SiteID, cycle.GreenhouseID, cycle.Code, cycle.Crop, cycle.Variety,
		cycle.Status, cycle.StartDate, cycle.PlantingDate, cycle.ExpectedEndDate,
		cycle.ExpectedYieldKg, cycle.Notes, now,
	).Scan(&cycle.ID, &cycle.CreatedAt, &cycle.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Cycle{}, shared.ErrDuplicate
		}
		return Cycle{}, err
	}
	return cycle, nil
}

func (r *repository) Update(ctx context.Context, id int64, cycle Cycle) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE production_cycles SET variety = $1, status = $2, planting_date = $3,
			expected_end_date = $4, actual_end_date = $5, expected_yield_kg = $6,
			actual_yield_kg = $7, yield_variance_percent = $8, notes = $9, updated_at = $10
		WHERE id = $11`,
		cycle.Variety, cycle.Status, cycle.PlantingDate, cycle.ExpectedEndDate,
		cycle.ActualEndDate, cycle.ExpectedYieldKg, cycle.ActualYieldKg,
		cycle.YieldVariancePct, cycle.Notes, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// StaleActive lists ACTIVE cycles whose expected end date has passed. The
// nightly status refresh job flags them.
func (r *repository) StaleActive(ctx context.Context, olderThan time.Time) ([]Cycle, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+cycleColumns+` FROM production_cycles
		 WHERE status = $1 AND expected_end_date IS NOT NULL AND expected_end_date < $2
		 ORDER BY expected_end_date ASC`,
		StatusActive, olderThan)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Cycle
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func scanCycle(row pgx.Row) (Cycle, error) {
	var c Cycle
	err := row.Scan(&c.ID, &c.FarmID, &c.SiteID, &c.GreenhouseID, &c.Code, &c.Crop, &c.Variety,
		&c.Status, &c.StartDate, &c.PlantingDate, &c.ExpectedEndDate, &c.ActualEndDate,
		&c.ExpectedYieldKg, &c.ActualYieldKg, &c.YieldVariancePct, &c.Notes,
		&c.CreatedAt, &c.UpdatedAt)
	return c, err
}
