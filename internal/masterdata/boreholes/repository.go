package boreholes

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	mdshared "github.com/farmdeck-erp/farmdeck-erp/internal/masterdata/shared"
	"github.com/farmdeck-erp/farmdeck-erp/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters mdshared.ListFilters) ([]Borehole, int, error)
	Get(ctx context.Context, id int64) (Borehole, error)
	Create(ctx context.Context, bh Borehole) (Borehole, error)
	Update(ctx context.Context, id int64, bh Borehole) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const boreholeColumns = `id, farm_id, site_id, code, name, installed_date,
	installation_cost, amortization_cycles, specifications, notes, is_active,
	created_at, updated_at`

// List uses a dynamic query due to filter complexity
func (r *repository) List(ctx context.Context, filters mdshared.ListFilters) ([]Borehole, int, error) {
	query := `SELECT ` + boreholeColumns + ` FROM boreholes WHERE deleted_at IS NULL`
	countQuery := `SELECT COUNT(*) FROM boreholes WHERE deleted_at IS NULL`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		p := "$" + strconv.Itoa(argCount)
		clause := ` AND (name ILIKE ` + p + ` OR code ILIKE ` + p + `)`
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.FarmID != nil {
		argCount++
		clause := ` AND farm_id = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, *filters.FarmID)
	}
	if filters.IsActive != nil {
		argCount++
		clause := ` AND is_active = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, *filters.IsActive)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += " ORDER BY " + sortOrder(filters.SortBy, filters.SortDir)

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

	var items []Borehole
	for rows.Next() {
		b, err := scanBorehole(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Borehole, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+boreholeColumns+` FROM boreholes WHERE id = $1 AND deleted_at IS NULL`, id)
	b, err := scanBorehole(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Borehole{}, shared.ErrNotFound
	}
	return b, err
}

func (r *repository) Create(ctx context.Context, bh Borehole) (Borehole, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO boreholes (farm_id, site_id, code, name, installed_date,
			installation_cost, amortization_cycles, specifications, notes, is_active,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING id, created_at, updated_at`,
		bh.FarmID, bh.SiteID, bh.Code, bh.Name, bh.InstalledDate, bh.InstallationCost,
		bh.AmortizationCycles, bh.Specifications, bh.Notes, bh.IsActive, now,
	).Scan(&bh.ID, &bh.CreatedAt, &bh.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Borehole{}, shared.ErrDuplicate
		}
		return Borehole{}, err
	}
	return bh, nil
}

func (r *repository) Update(ctx context.Context, id int64, bh Borehole) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE boreholes SET farm_id = $1, site_id = $2, code = $3, name = $4,
			installed_date = $5, installation_cost = $6, amortization_cycles = $7,
			specifications = $8, notes = $9, is_active = $10, updated_at = $11
		WHERE id = $12 AND deleted_at IS NULL`,
		bh.FarmID, bh.SiteID, bh.Code, bh.Name, bh.InstalledDate, bh.InstallationCost,
		bh.AmortizationCycles, bh.Specifications, bh.Notes, bh.IsActive, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE boreholes SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`,
		time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanBorehole(row pgx.Row) (Borehole, error) {
	var b Borehole
	err := row.Scan(&b.ID, &b.FarmID, &b.SiteID, &b.Code, &b.Name, &b.InstalledDate,
		&b.InstallationCost, &b.AmortizationCycles, &b.Specifications, &b.Notes,
		&b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == mdshared.SortDesc {
		dir = "DESC"
	}
	switch sortBy {
	case "code":
		return "code " + dir
	case "installed_date":
		return "installed_date " + dir
	default:
		return "name " + dir
	}
}
