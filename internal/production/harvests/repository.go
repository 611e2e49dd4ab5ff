package harvests

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

// ListFilters narrows the harvest record list.
type ListFilters struct {
	Page    int
	Limit   int
	FarmID  *int64
	CycleID *int64
	Status  string
}

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Record, int, error)
	Get(ctx context.Context, id int64) (Record, error)
	Create(ctx context.Context, rec Record) (Record, error)
	Update(ctx context.Context, id int64, rec Record) error
	Delete(ctx context.Context, id int64) error
	TotalsByCycle(ctx context.Context, cycleID int64) (Totals, error)
	StaleDrafts(ctx context.Context, olderThan time.Time) ([]Record, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const recordColumns = `id, farm_id, greenhouse_id, cycle_id, harvest_code, harvest_date,
	grade_a_kg, grade_b_kg, grade_c_kg, total_weight_kg, crates_count,
	crates_overridden, status, recorded_by, submitted_at, approved_by,
	approved_at, notes, created_at, updated_at`

// List uses a dynamic query due to filter complexity
func (r *repository) List(ctx context.Context, filters ListFilters) ([]Record, int, error) {
	query := `SELECT ` + recordColumns + ` FROM harvest_records WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM harvest_records WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.FarmID != nil {
		argCount++
		clause := ` AND farm_id = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, *filters.FarmID)
	}
	if filters.CycleID != nil {
		argCount++
		clause := ` AND cycle_id = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, *filters.CycleID)
	}
	if filters.Status != "" {
		argCount++
		clause := ` AND status = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, filters.Status)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY harvest_date DESC, id DESC`

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

	var items []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Record, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM harvest_records WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, shared.ErrNotFound
	}
	return rec, err
}

func (r *repository) Create(ctx context.Context, rec Record) (Record, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO harvest_records (farm_id, greenhouse_id, cycle_id, harvest_code,
			harvest_date, grade_a_kg, grade_b_kg, grade_c_kg, total_weight_kg,
			crates_count, crates_overridden, status, recorded_by, notes,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)
		RETURNING id, created_at, updated_at`,
		rec.FarmID, rec.GreenhouseID, rec.CycleID, rec.Code, rec.HarvestDate, rec.GradeAKg, rec.GradeBKg,
		rec.GradeCKg, rec.TotalWeightKg, rec.CratesCount, rec.CratesOverridden,
		rec.Status, rec.RecordedBy, rec.Notes, now,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Record{}, shared.ErrDuplicate
		}
		return Record{}, err
	}
	return rec, nil
}

func (r *repository) Update(ctx context.Context, id int64, rec Record) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE harvest_records SET greenhouse_id = $1, harvest_date = $2,
			grade_a_kg = $3, grade_b_kg = $4, grade_c_kg = $5, total_weight_kg = $6,
			crates_count = $7, crates_overridden = $8, status = $9, recorded_by = $10,
			submitted_at = $11, approved_by = $12, approved_at = $13, notes = $14,
			updated_at = $15
		WHERE id = $16`,
		rec.GreenhouseID, rec.HarvestDate, rec.GradeAKg, rec.GradeBKg, rec.GradeCKg,
		rec.TotalWeightKg, rec.CratesCount, rec.CratesOverridden, rec.Status,
		rec.RecordedBy, rec.SubmittedAt, rec.ApprovedBy, rec.ApprovedAt, rec.Notes,
		time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM harvest_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) TotalsByCycle(ctx context.Context, cycleID int64) (Totals, error) {
	t := Totals{CycleID: cycleID}
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(grade_a_kg), 0), COALESCE(SUM(grade_b_kg), 0),
			COALESCE(SUM(grade_c_kg), 0), COALESCE(SUM(total_weight_kg), 0),
			COALESCE(SUM(crates_count), 0)
		FROM harvest_records WHERE cycle_id = $1`, cycleID,
	).Scan(&t.Records, &t.GradeAKg, &t.GradeBKg, &t.GradeCKg, &t.TotalWeightKg, &t.CratesCount)
	return t, err
}

// StaleDrafts lists DRAFT records untouched since the cutoff. The nightly
// scan job nags supervisors about them.
func (r *repository) StaleDrafts(ctx context.Context, olderThan time.Time) ([]Record, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+recordColumns+` FROM harvest_records
		 WHERE status = $1 AND updated_at < $2 ORDER BY updated_at ASC`,
		StatusDraft, olderThan)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	return items, rows.Err()
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.FarmID, &rec.GreenhouseID, &rec.CycleID, &rec.Code, &rec.HarvestDate,
		&rec.GradeAKg, &rec.GradeBKg, &rec.GradeCKg, &rec.TotalWeightKg,
		&rec.CratesCount, &rec.CratesOverridden, &rec.Status, &rec.RecordedBy,
		&rec.SubmittedAt, &rec.ApprovedBy, &rec.ApprovedAt, &rec.Notes,
		&rec.CreatedAt, &rec.UpdatedAt)
	return rec, err
}
