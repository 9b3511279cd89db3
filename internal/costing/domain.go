package costing

// Kind enumerates the product kinds the costing engine distinguishes.
type Kind string

const (
	// KindRawMaterial is a purchased ingredient with a cost profile.
	KindRawMaterial Kind = "raw_material"
	// KindSubRecipe is an intermediate preparation usable as a component.
	KindSubRecipe Kind = "sub_recipe"
	// KindDish is a finished, sellable product.
	KindDish Kind = "dish"
)

// UncategorizedBucket collects components without a recipe category.
const UncategorizedBucket = "Uncategorized"

// CostProfile carries the purchase-side attributes of a raw material.
type CostProfile struct {
	PurchaseUnit     string
	PurchasePrice    float64
	Conversion       float64
	ConversionUnitID *int64
	InitialWeight    float64
	FinalWeight      float64
	WasteNotes       string
}

// Product is the engine's read-only view of a product row.
type Product struct {
	ID               int64
	Code             string
	Name             string
	Unit             string
	CategoryID       int64
	CategoryName     string
	Price            float64
	TaxRate          float64
	Kind             Kind
	IdealCostPercent *float64
	BatchYield       *float64
	Profile          *CostProfile
}

// Component is one edge of the BOM graph: parent uses Quantity of child.
type Component struct {
	ParentID int64
	ChildID  int64
	Quantity float64
}

// Snapshot is the point-in-time input the engine computes over. The engine
// never mutates it, so one snapshot is safe to share across explosions.
type Snapshot struct {
	Products   map[int64]Product
	Components map[int64][]Component
}

// Line is one priced component of a breakdown.
type Line struct {
	ProductID int64   `json:"product_id"`
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Unit      string  `json:"unit"`
	Quantity  float64 `json:"quantity"`
	UnitCost  float64 `json:"unit_cost"`
	Total     float64 `json:"total"`
}

// CategoryGroup holds the lines of one recipe category with their subtotal.
type CategoryGroup struct {
	Category string  `json:"category"`
	Lines    []Line  `json:"lines"`
	Subtotal float64 `json:"subtotal"`
}

// Breakdown is the exploded cost of one product. TotalCost is the unrounded
// sum of all line totals; UnitCost is TotalCost scaled by the batch yield and
// is what a parent recipe pays per unit of this product.
type Breakdown struct {
	ProductID int64           `json:"product_id"`
	Lines     []Line          `json:"lines"`
	Groups    []CategoryGroup `json:"groups"`
	TotalCost float64         `json:"total_cost"`
	UnitCost  float64         `json:"unit_cost"`
}

// AlertResult reports a product's cost against its tax-exclusive sale price.
type AlertResult struct {
	PriceExTax       float64  `json:"price_ex_tax"`
	CostPercent      float64  `json:"cost_percent"`
	IdealCostPercent *float64 `json:"ideal_cost_percent,omitempty"`
	Alert            bool     `json:"alert"`
}
