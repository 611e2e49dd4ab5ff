package batches

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

// ListFilters narrows the batch list.
type ListFilters struct {
	Page   int
	Limit  int
	FarmID *int64
	Status string
	Search string
}

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Batch, int, error)
	Get(ctx context.Context, id int64) (Batch, error)
	Create(ctx context.Context, b Batch) (Batch, error)
	Update(ctx context.Context, id int64, b Batch) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const batchColumns = `id, farm_id, batch_code, processing_date, cassava_source,
	cassava_quantity_kg, cassava_cost_per_kg, total_cassava_cost, gari_produced_kg,
	gari_type, gari_grade, conversion_yield_percent, labour_cost, fuel_cost,
	equipment_cost, water_cost, transport_cost, other_costs, total_processing_cost,
	waste_kg, waste_percent, total_cost, cost_per_kg_gari, notes, status,
	created_at, updated_at`

// List uses a dynamic query due to filter complexity
func (r *repository) List(ctx context.Context, filters ListFilters) ([]Batch, int, error) {
	query := `SELECT ` + batchColumns + ` FROM gari_production_batches WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM gari_production_batches WHERE 1=1`
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
	if filters.Search != "" {
		argCount++
		p := "$" + strconv.Itoa(argCount)
		clause := ` AND (batch_code ILIKE ` + p + ` OR cassava_source ILIKE ` + p + `)`
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	// Oldest first, matching the FIFO selling order.
	query += ` ORDER BY processing_date ASC, id ASC`

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

	var items []Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Batch, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+batchColumns+` FROM gari_production_batches WHERE id = $1`, id)
	b, err := scanBatch(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Batch{}, shared.ErrNotFound
	}
	return b, err
}

func (r *repository) Create(ctx context.Context, b Batch) (Batch, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO gari_production_batches (farm_id, batch_code, processing_date,
			cassava_source, cassava_quantity_kg, cassava_cost_per_kg, total_cassava_cost,
			gari_produced_kg, gari_type, gari_grade, conversion_yield_percent,
			labour_cost, fuel_cost, equipment_cost, water_cost, transport_cost,
			other_costs, total_processing_cost, waste_kg, waste_percent, total_cost,
			cost_per_kg_gari, notes, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $25)
		RETURNING id, created_at, updated_at`,
		b.FarmID, b.Code, b.ProcessingDate, b.CassavaSource, b.CassavaQuantityKg,
		b.CassavaCostPerKg, b.TotalCassavaCost, b.GariProducedKg, b.GariType,
		b.GariGrade, b.YieldPercent, b.LabourCost, b.FuelCost, b.EquipmentCost,
		b.WaterCost, b.TransportCost, b.OtherCosts, b.TotalProcessingCost,
		b.WasteKg, b.WastePercent, b.TotalCost, b.CostPerKgGari, b.Notes, b.Status, now,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Batch{}, shared.ErrDuplicate
		}
		return Batch{}, err
	}
	return b, nil
}

func (r *repository) Update(ctx context.Context, id int64, b Batch) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE gari_production_batches SET processing_date = $1, cassava_source = $2,
			cassava_quantity_kg = $3, cassava_cost_per_kg = $4, total_cassava_cost = $5,
			gari_produced_kg = $6, gari_type = $7, gari_grade = $8,
			conversion_yield_percent = $9, labour_cost = $10, fuel_cost = $11,
			equipment_cost = $12, water_cost = $13, transport_cost = $14,
			other_costs = $15, total_processing_cost = $16, waste_kg = $17,
			waste_percent = $18, total_cost = $19, cost_per_kg_gari = $20,
			notes = $21, status = $22, updated_at = $23
		WHERE id = $24`,
		b.ProcessingDate, b.CassavaSource, b.CassavaQuantityKg, b.CassavaCostPerKg,
		b.TotalCassavaCost, b.GariProducedKg, b.GariType, b.GariGrade, b.YieldPercent,
		b.LabourCost, b.FuelCost, b.EquipmentCost, b.WaterCost, b.TransportCost,
		b.OtherCosts, b.TotalProcessingCost, b.WasteKg, b.WastePercent, b.TotalCost,
		b.CostPerKgGari, b.Notes, b.Status, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanBatch(row pgx.Row) (Batch, error) {
	var b Batch
	err := row.Scan(&b.ID, &b.FarmID, &b.Code, &b.ProcessingDate, &b.CassavaSource,
		&b.CassavaQuantityKg, &b.CassavaCostPerKg, &b.TotalCassavaCost,
		&b.GariProducedKg, &b.GariType, &b.GariGrade, &b.YieldPercent, &b.LabourCost,
		&b.FuelCost, &b.EquipmentCost, &b.WaterCost, &b.TransportCost, &b.OtherCosts,
		&b.TotalProcessingCost, &b.WasteKg, &b.WastePercent, &b.TotalCost,
		&b.CostPerKgGari, &b.Notes, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}
