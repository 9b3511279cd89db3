package recipes

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/comal-erp/comal-erp/internal/platform/db"
)

type Repository interface {
	ListByParent(ctx context.Context, parentID int64) ([]KitLine, error)
	Upsert(ctx context.Context, parentID int64, items []KitItemInput) error
	Delete(ctx context.Context, parentID, childID int64) error
	ProductsExist(ctx context.Context, ids []int64) (map[int64]bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// ListByParent returns the kit of one product joined with child details,
// ordered the way the costing grid groups it.
func (r *repository) ListByParent(ctx context.Context, parentID int64) ([]KitLine, error) {
	const query = `
		SELECT rc.parent_id, rc.child_id, p.code, p.name,
		       COALESCE(cat.name, ''), COALESCE(cu.name, pu.name, ''), rc.quantity
		FROM recipe_components rc
		JOIN products p ON p.id = rc.child_id
		LEFT JOIN recipe_categories cat ON cat.id = p.recipe_category_id
		LEFT JOIN presentation_units pu ON pu.id = p.unit_id
		LEFT JOIN presentation_units cu ON cu.id = p.conversion_unit_id
		WHERE rc.parent_id = $1
		ORDER BY cat.name NULLS LAST, p.name`

	rows, err := r.pool.Query(ctx, query, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []KitLine
	for rows.Next() {
		var line KitLine
		if err := rows.Scan(&line.ParentID, &line.ChildID, &line.Code, &line.Name,
			&line.RecipeCategory, &line.InventoryUnit, &line.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// Upsert merges the given items into the parent's kit in one transaction.
func (r *repository) Upsert(ctx context.Context, parentID int64, items []KitItemInput) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, item := range items {
			if _, err := tx.Exec(ctx, `
				INSERT INTO recipe_components (parent_id, child_id, quantity, updated_at)
				VALUES ($1, $2, $3, NOW())
				ON CONFLICT (parent_id, child_id)
				DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = NOW()`,
				parentID, item.ChildID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) Delete(ctx context.Context, parentID, childID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM recipe_components WHERE parent_id = $1 AND child_id = $2`,
		parentID, childID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ProductsExist reports which of the given ids exist as active products.
func (r *repository) ProductsExist(ctx context.Context, ids []int64) (map[int64]bool, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM products WHERE id = ANY($1) AND is_active`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := make(map[int64]bool, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found[id] = true
	}
	return found, rows.Err()
}
