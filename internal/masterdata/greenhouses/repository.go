package greenhouses

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
	List(ctx context.Context, filters mdshared.ListFilters) ([]Greenhouse, int, error)
	Get(ctx context.Context, id int64) (Greenhouse, error)
	Create(ctx context.Context, gh Greenhouse) (Greenhouse, error)
	Update(ctx context.Context, id int64, gh Greenhouse) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const greenhouseColumns = `id, farm_id, site_id, code, name, size_sqm, built_date,
	construction_cost, amortization_cycles, notes, is_active, created_at, updated_at`

// List uses a dynamic query due to filter complexity
func (r *repository) List(ctx context.Context, filters mdshared.ListFilters) ([]Greenhouse, int, error) {
	query := `SELECT ` + greenhouseColumns + ` FROM greenhouses WHERE deleted_at IS NULL`
	countQuery := `SELECT COUNT(*) FROM greenhouses WHERE deleted_at IS NULL`
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
	if filters.SiteID != nil {
		argCount++
		clause := ` AND site_id = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, *filters.SiteID)
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

	var items []Greenhouse
	for rows.Next() {
		g, err := scanGreenhouse(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, g)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Greenhouse, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+greenhouseColumns+` FROM greenhouses WHERE id = $1 AND deleted_at IS NULL`, id)
	g, err := scanGreenhouse(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Greenhouse{}, shared.ErrNotFound
	}
	return g, err
}

func (r *repository) Create(ctx context.Context, gh Greenhouse) (Greenhouse, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO greenhouses (farm_id, site_id, code, name, size_sqm, built_date,
			construction_cost, amortization_cycles, notes, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING id, created_at, updated_at`,
		gh.FarmID, gh.SiteID, gh.Code, gh.Name, gh.SizeSqm, gh.BuiltDate,
		gh.ConstructionCost, gh.AmortizationCycles, gh.Notes, gh.IsActive, now,
	).Scan(&gh.ID, &gh.CreatedAt, &gh.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Greenhouse{}, shared.ErrDuplicate
		}
		return Greenhouse{}, err
	}
	return gh, nil
}

func (r *repository) Update(ctx context.Context, id int64, gh Greenhouse) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE greenhouses SET farm_id = $1, site_id = $2, code = $3, name = $4,
			size_sqm = $5, built_date = $6, construction_cost = $7,
			amortization_cycles = $8, notes = $9, is_active = $10, updated_at = $11
		WHERE id = $12 AND deleted_at IS NULL`,
		gh.FarmID, gh.SiteID, gh.Code, gh.Name, gh.SizeSqm, gh.BuiltDate,
		gh.ConstructionCost, gh.AmortizationCycles, gh.Notes, gh.IsActive, time.Now(), id)
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
		`UPDATE greenhouses SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`,
		time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanGreenhouse(row pgx.Row) (Greenhouse, error) {
	var g Greenhouse
	err := row.Scan(&g.ID, &g.FarmID, &g.SiteID, &g.Code, &g.Name, &g.SizeSqm,
		&g.BuiltDate, &g.ConstructionCost, &g.AmortizationCycles, &g.Notes,
		&g.IsActive, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == mdshared.SortDesc {
		dir = "DESC"
	}
	switch sortBy {
	case "code":
		return "code " + dir
	case "size_sqm":
		return "size_sqm " + dir
	case "built_date":
		return "built_date " + dir
	default:
		return "name " + dir
	}
}
