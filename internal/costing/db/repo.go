// Package db loads costing snapshots from Postgres.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/comal-erp/comal-erp/internal/costing"
)

// Repository reads the product graph for the costing engine.
type Repository struct {
	pool *pgxpool.Pool
}

// New constructs the snapshot repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// LoadSnapshot fetches every active product with its cost profile plus all
// component edges in two queries. The snapshot is a value copy; concurrent
// explosions never share mutable state with the database layer.
func (r *Repository) LoadSnapshot(ctx context.Context) (*costing.Snapshot, error) {
	const productQuery = `
		SELECT p.id, p.code, p.name, p.kind,
		       COALESCE(pu.name, ''), COALESCE(cu.name, ''),
		       COALESCE(rc.id, 0), COALESCE(rc.name, ''),
		       p.price, p.tax_rate, p.ideal_cost_percent, p.batch_yield,
		       p.purchase_price, p.simple_conversion, p.conversion_unit_id,
		       p.initial_weight, p.final_weight, COALESCE(p.waste_notes, '')
		FROM products p
		LEFT JOIN presentation_units pu ON pu.id = p.unit_id
		LEFT JOIN presentation_units cu ON cu.id = p.conversion_unit_id
		LEFT JOIN recipe_categories rc ON rc.id = p.recipe_category_id
		WHERE p.is_active`

	rows, err := r.pool.Query(ctx, productQuery)
	if err != nil {
		return nil, fmt.Errorf("costing/db: query products: %w", err)
	}
	defer rows.Close()

	snap := &costing.Snapshot{
		Products:   make(map[int64]costing.Product),
		Components: make(map[int64][]costing.Component),
	}
	for rows.Next() {
		var (
			p              costing.Product
			purchaseUnit   string
			conversionUnit string
			profile        costing.CostProfile
		)
		if err := rows.Scan(
			&p.ID, &p.Code, &p.Name, &p.Kind,
			&purchaseUnit, &conversionUnit,
			&p.CategoryID, &p.CategoryName,
			&p.Price, &p.TaxRate, &p.IdealCostPercent, &p.BatchYield,
			&profile.PurchasePrice, &profile.Conversion, &profile.ConversionUnitID,
			&profile.InitialWeight, &profile.FinalWeight, &profile.WasteNotes,
		); err != nil {
			return nil, fmt.Errorf("costing/db: scan product: %w", err)
		}
		p.Unit = purchaseUnit
		if p.Kind == costing.KindRawMaterial {
			profile.PurchaseUnit = purchaseUnit
			if conversionUnit != "" {
				p.Unit = conversionUnit
			}
			p.Profile = &profile
		}
		snap.Products[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("costing/db: iterate products: %w", err)
	}

	const edgeQuery = `SELECT parent_id, child_id, quantity FROM recipe_components ORDER BY parent_id, child_id`
	edgeRows, err := r.pool.Query(ctx, edgeQuery)
	if err != nil {
		return nil, fmt.Errorf("costing/db: query components: %w", err)
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var comp costing.Component
		if err := edgeRows.Scan(&comp.ParentID, &comp.ChildID, &comp.Quantity); err != nil {
			return nil, fmt.Errorf("costing/db: scan component: %w", err)
		}
		snap.Components[comp.ParentID] = append(snap.Components[comp.ParentID], comp)
	}
	if err := edgeRows.Err(); err != nil {
		return nil, fmt.Errorf("costing/db: iterate components: %w", err)
	}
	return snap, nil
}

// ListUnits returns the presentation units for conversion matching.
func (r *Repository) ListUnits(ctx context.Context) ([]costing.Unit, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM presentation_units ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("costing/db: query units: %w", err)
	}
	defer rows.Close()

	var units []costing.Unit
	for rows.Next() {
		var u costing.Unit
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, fmt.Errorf("costing/db: scan unit: %w", err)
		}
		units = append(units, u)
	}
	return units, rows.Err()
}
