package production

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Insert(ctx context.Context, record Record) (Record, error)
	GetByKey(ctx context.Context, key string) (Record, error)
	List(ctx context.Context, filter PeriodFilter) ([]Record, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// Insert stores a capture row. A repeated idempotency key is not an error:
// the previously stored row is returned instead of a duplicate.
func (r *repository) Insert(ctx context.Context, record Record) (Record, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO production_records (branch_id, product_id, day, quantity, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (idempotency_key) DO NOTHING
		RETURNING id, created_at`,
		record.BranchID, record.ProductID, record.Day, record.Quantity, record.IdempotencyKey,
	).Scan(&record.ID, &record.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return r.GetByKey(ctx, record.IdempotencyKey)
	}
	if err != nil {
		return Record{}, err
	}
	return record, nil
}

func (r *repository) GetByKey(ctx context.Context, key string) (Record, error) {
	var record Record
	err := r.pool.QueryRow(ctx, `
		SELECT id, branch_id, product_id, day, quantity, idempotency_key, created_at
		FROM production_records WHERE idempotency_key = $1`, key,
	).Scan(&record.ID, &record.BranchID, &record.ProductID, &record.Day,
		&record.Quantity, &record.IdempotencyKey, &record.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return record, err
}

func (r *repository) List(ctx context.Context, filter PeriodFilter) ([]Record, error) {
	const query = `
		SELECT id, branch_id, product_id, day, quantity, idempotency_key, created_at
		FROM production_records
		WHERE branch_id = $1 AND day >= $2 AND day <= $3
		ORDER BY day, product_id`

	rows, err := r.pool.Query(ctx, query, filter.BranchID, filter.From, filter.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var record Record
		if err := rows.Scan(&record.ID, &record.BranchID, &record.ProductID, &record.Day,
			&record.Quantity, &record.IdempotencyKey, &record.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM production_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
