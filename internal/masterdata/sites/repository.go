package sites

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
	List(ctx context.Context, filters mdshared.ListFilters) ([]Site, int, error)
	Get(ctx context.Context, id int64) (Site, error)
	Create(ctx context.Context, site Site) (Site, error)
	Update(ctx context.Context, id int64, site Site) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const siteColumns = `id, farm_id, code, name, type, description, address,
	latitude, longitude, total_area, area_unit, notes, is_active, created_at, updated_at`

// List uses a dynamic query due to filter complexity
func (r *repository) List(ctx context.Context, filters mdshared.ListFilters) ([]Site, int, error) {
	query := `SELECT ` + siteColumns + ` FROM sites WHERE deleted_at IS NULL`
	countQuery := `SELECT COUNT(*) FROM sites WHERE deleted_at IS NULL`
	args := []interface{}{}
	argCount := 0

	appendCond := func(cond string, value interface{}) {
		argCount++
		placeholder := "$" + strconv.Itoa(argCount)
		query += " AND " + cond + placeholder
		countQuery += " AND " + cond + placeholder
		args = append(args, value)
	}

	if filters.Search != "" {
		argCount++
		p := "$" + strconv.Itoa(argCount)
		clause := ` AND (name ILIKE ` + p + ` OR code ILIKE ` + p + `)`
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.FarmID != nil {
		appendCond("farm_id = ", *filters.FarmID)
	}
	if filters.IsActive != nil {
		appendCond("is_active = ", *filters.IsActive)
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

	var sites []Site
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, 0, err
		}
		sites = append(sites, s)
	}
	return sites, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Site, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+siteColumns+` FROM sites WHERE id = $1 AND deleted_at IS NULL`, id)
	s, err := scanSite(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Site{}, shared.ErrNotFound
	}
	return s, err
}

func (r *repository) Create(ctx context.Context, site Site) (Site, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO sites (farm_id, code, name, type, description, address, latitude,
			longitude, total_area, area_unit, notes, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
		RETURNING id, created_at, updated_at`,
		site.FarmID, site.Code, site.Name, site.Type, site.Description, site.Address,
		site.Latitude, site.Longitude, site.TotalArea, site.AreaUnit, site.Notes,
		site.IsActive, now,
	).Scan(&site.ID, &site.CreatedAt, &site.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Site{}, shared.ErrDuplicate
		}
		return Site{}, err
	}
	return site, nil
}

func (r *repository) Update(ctx context.Context, id int64, site Site) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sites SET farm_id = $1, code = $2, name = $3, type = $4, description = $5,
			address = $6, latitude = $7, longitude = $8, total_area = $9, area_unit = $10,
			notes = $11, is_active = $12, updated_at = $13
		WHERE id = $14 AND deleted_at IS NULL`,
		site.FarmID, site.Code, site.Name, site.Type, site.Description, site.Address,
		site.Latitude, site.Longitude, site.TotalArea, site.AreaUnit, site.Notes,
		site.IsActive, time.Now(), id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.ErrDuplicate
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE sites SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`,
		time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanSite(row pgx.Row) (Site, error) {
	var s Site
	err := row.Scan(&s.ID, &s.FarmID, &s.Code, &s.Name, &s.Type, &s.Description,
		&s.Address, &s.Latitude, &s.Longitude, &s.TotalArea, &s.AreaUnit, &s.Notes,
		&s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == mdshared.SortDesc {
		dir = "DESC"
	}
	switch sortBy {
	case "code":
		return "code " + dir
	case "type":
		return "type " + dir
	case "created_at":
		return "created_at " + dir
	default:
		return "name " + dir
	}
}
