package products

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/comal-erp/comal-erp/internal/masterdata/shared"
)

const productColumns = `id, code, name, kind, recipe_category_id, unit_id, price, tax_rate,
	ideal_cost_percent, purchase_price, simple_conversion, conversion_unit_id,
	initial_weight, final_weight, COALESCE(waste_notes, ''), batch_yield, is_active, created_at, updated_at`

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, id int64, product Product) error
	AssignConversionUnit(ctx context.Context, id, unitID int64) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Kind != "" {
		argCount++
		where += ` AND kind = $` + strconv.Itoa(argCount)
		args = append(args, filters.Kind)
	}
	if filters.CategoryID != nil {
		argCount++
		where += ` AND recipe_category_id = $` + strconv.Itoa(argCount)
		args = append(args, *filters.CategoryID)
	}
	if filters.Search != "" {
		argCount++
		where += ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR code ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.IsActive != nil {
		argCount++
		where += ` AND is_active = $` + strconv.Itoa(argCount)
		args = append(args, *filters.IsActive)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + productColumns + ` FROM products` + where + ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)
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

	var result []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, p)
	}
	return result, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, shared.ErrNotFound
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO products (code, name, kind, recipe_category_id, unit_id, price, tax_rate,
			ideal_cost_percent, purchase_price, simple_conversion, conversion_unit_id,
			initial_weight, final_weight, waste_notes, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $16)
		RETURNING id`,
		product.Code, product.Name, product.Kind, product.RecipeCategoryID, product.UnitID,
		product.Price, product.TaxRate, product.IdealCostPercent, product.PurchasePrice,
		product.SimpleConversion, product.ConversionUnitID, product.InitialWeight,
		product.FinalWeight, product.WasteNotes, product.IsActive, now,
	).Scan(&product.ID)
	if isUniqueViolation(err) {
		return Product{}, shared.ErrDuplicate
	}
	if err != nil {
		return Product{}, err
	}
	product.CreatedAt = now
	product.UpdatedAt = now
	return product, nil
}

func (r *repository) Update(ctx context.Context, id int64, product Product) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products SET code = $1, name = $2, kind = $3, recipe_category_id = $4, unit_id = $5,
			price = $6, tax_rate = $7, ideal_cost_percent = $8, purchase_price = $9,
			simple_conversion = $10, conversion_unit_id = $11, initial_weight = $12,
			final_weight = $13, waste_notes = $14, is_active = $15, updated_at = $16
		WHERE id = $17`,
		product.Code, product.Name, product.Kind, product.RecipeCategoryID, product.UnitID,
		product.Price, product.TaxRate, product.IdealCostPercent, product.PurchasePrice,
		product.SimpleConversion, product.ConversionUnitID, product.InitialWeight,
		product.FinalWeight, product.WasteNotes, product.IsActive, time.Now(), id)
	if isUniqueViolation(err) {
		return shared.ErrDuplicate
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AssignConversionUnit persists an accepted auto-assignment suggestion.
func (r *repository) AssignConversionUnit(ctx context.Context, id, unitID int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET conversion_unit_id = $1, updated_at = $2 WHERE id = $3`,
		unitID, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Kind, &p.RecipeCategoryID, &p.UnitID,
		&p.Price, &p.TaxRate, &p.IdealCostPercent, &p.PurchasePrice, &p.SimpleConversion,
		&p.ConversionUnitID, &p.InitialWeight, &p.FinalWeight, &p.WasteNotes,
		&p.BatchYield, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == shared.SortDesc {
		dir = "DESC"
	}
	switch sortBy {
	case "code":
		return "code " + dir
	case "price":
		return "price " + dir
	case "kind":
		return "kind " + dir
	case "created_at":
		return "created_at " + dir
	default:
		return "name " + dir
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
