package products

import (
	"time"
)

// Product kinds mirror the costing engine's tagged union.
const (
	KindRawMaterial = "raw_material"
	KindSubRecipe   = "sub_recipe"
	KindDish        = "dish"
)

// Product represents a product entity. The raw-material fields (purchase
// price, conversion, weights) are zero for dishes and sub-recipes.
type Product struct {
	ID               int64     `json:"id"`
	Code             string    `json:"code"`
	Name             string    `json:"name"`
	Kind             string    `json:"kind"`
	RecipeCategoryID *int64    `json:"recipe_category_id,omitempty"`
	UnitID           *int64    `json:"unit_id,omitempty"`
	Price            float64   `json:"price"`
	TaxRate          float64   `json:"tax_rate"`
	IdealCostPercent *float64  `json:"ideal_cost_percent,omitempty"`
	PurchasePrice    float64   `json:"purchase_price"`
	SimpleConversion float64   `json:"simple_conversion"`
	ConversionUnitID *int64    `json:"conversion_unit_id,omitempty"`
	InitialWeight    float64   `json:"initial_weight"`
	FinalWeight      float64   `json:"final_weight"`
	WasteNotes       string    `json:"waste_notes,omitempty"`
	BatchYield       *float64  `json:"batch_yield,omitempty"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
