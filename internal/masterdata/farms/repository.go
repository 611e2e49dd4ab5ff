package farms

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
	List(ctx context.Context, filters mdshared.ListFilters) ([]Farm, int, error)
	Get(ctx context.Context, id int64) (Farm, error)
	Create(ctx context.Context, farm Farm) (Farm, error)
	Update(ctx context.Context, id int64, farm Farm) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const farmColumns = `id, farm_code, name, legal_name, farm_type, country, state, town,
	default_currency, default_timezone, status, created_at, updated_at`

// List uses a dynamic query due to filter complexity
func (r *repository) List(ctx context.Context, filters mdshared.ListFilters) ([]Farm, int, error) {
	query := `SELECT ` + farmColumns + ` FROM farms WHERE deleted_at IS NULL`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		query += ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR farm_code ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.IsActive != nil {
		argCount++
		query += ` AND status = $` + strconv.Itoa(argCount)
		if *filters.IsActive {
			args = append(args, StatusActive)
		} else {
			args = append(args, StatusInactive)
		}
	}

	countQuery := `SELECT COUNT(*) FROM farms WHERE deleted_at IS NULL`
	countArgs := []interface{}{}
	if filters.Search != "" {
		countArgs = append(countArgs, "%"+filters.Search+"%")
		countQuery += ` AND (name ILIKE $1 OR farm_code ILIKE $1)`
	}
	if filters.IsActive != nil {
		status := StatusInactive
		if *filters.IsActive {
			status = StatusActive
		}
		countArgs = append(countArgs, status)
		countQuery += ` AND status = $` + strconv.Itoa(len(countArgs))
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
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

	var farms []Farm
	for rows.Next() {
		f, err := scanFarm(rows)
		if err != nil {
			return nil, 0, err
		}
		farms = append(farms, f)
	}
	return farms, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Farm, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+farmColumns+` FROM farms WHERE id = $1 AND deleted_at IS NULL`, id)
	f, err := scanFarm(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Farm{}, shared.ErrNotFound
	}
	return f, err
}

func (r *repository) Create(ctx context.Context, farm Farm) (Farm, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO farms (farm_code, name, legal_name, farm_type, country, state, town,
			default_currency, default_timezone, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING id, created_at, updated_at`,
		farm.Code, farm.Name, farm.LegalName, farm.FarmType, farm.Country, farm.State,
		farm.Town, farm.DefaultCurrency, farm.DefaultTimezone, farm.Status, now,
	).Scan(&farm.ID, &farm.CreatedAt, &farm.UpdatedAt)
	if isUniqueViolation(err) {
		return Farm{}, shared.ErrDuplicate
	}
	if err != nil {
		return Farm{}, err
	}
	return farm, nil
}

func (r *repository) Update(ctx context.Context, id int64, farm Farm) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE farms SET name = $1, legal_name = $2, farm_type = $3, country = $4,
			state = $5, town = $6, default_currency = $7, default_timezone = $8,
			status = $9, updated_at = $10
		WHERE id = $11 AND deleted_at IS NULL`,
		farm.Name, farm.LegalName, farm.FarmType, farm.Country, farm.State, farm.Town,
		farm.DefaultCurrency, farm.DefaultTimezone, farm.Status, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete soft-deletes so historical production records keep their farm.
func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE farms SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`,
		time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanFarm(row pgx.Row) (Farm, error) {
	var f Farm
	err := row.Scan(&f.ID, &f.Code, &f.Name, &f.LegalName, &f.FarmType, &f.Country,
		&f.State, &f.Town, &f.DefaultCurrency, &f.DefaultTimezone, &f.Status,
		&f.CreatedAt, &f.UpdatedAt)
	return f, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == mdshared.SortDesc {
		dir = "DESC"
	}
	switch sortBy {
	case "farm_code":
		return "farm_code " + dir
	case "created_at":
		return "created_at " + dir
	case "name":
		return "name " + dir
	default:
		return "name " + dir
	}
}
