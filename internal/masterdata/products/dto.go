package products

// ProductForm is the JSON payload for create and update.
type ProductForm struct {
	Code             string   `json:"code" validate:"required"`
	Name             string   `json:"name" validate:"required"`
	Kind             string   `json:"kind" validate:"required,oneof=raw_material sub_recipe dish"`
	RecipeCategoryID *int64   `json:"recipe_category_id"`
	UnitID           *int64   `json:"unit_id"`
	Price            float64  `json:"price" validate:"gte=0"`
	TaxRate          float64  `json:"tax_rate" validate:"gte=0,lte=100"`
	IdealCostPercent *float64 `json:"ideal_cost_percent" validate:"omitempty,gt=0,lte=100"`
	PurchasePrice    float64  `json:"purchase_price" validate:"gte=0"`
	SimpleConversion float64  `json:"simple_conversion" validate:"gte=0"`
	ConversionUnitID *int64   `json:"conversion_unit_id"`
	InitialWeight    float64  `json:"initial_weight" validate:"gte=0"`
	FinalWeight      float64  `json:"final_weight" validate:"gte=0"`
	WasteNotes       string   `json:"waste_notes"`
	IsActive         bool     `json:"is_active"`
}

func (f ProductForm) toProduct() Product {
	return Product{
		Code:             f.Code,
		Name:             f.Name,
		Kind:             f.Kind,
		RecipeCategoryID: f.RecipeCategoryID,
		UnitID:           f.UnitID,
		Price:            f.Price,
		TaxRate:          f.TaxRate,
		IdealCostPercent: f.IdealCostPercent,
		PurchasePrice:    f.PurchasePrice,
		SimpleConversion: f.SimpleConversion,
		ConversionUnitID: f.ConversionUnitID,
		InitialWeight:    f.InitialWeight,
		FinalWeight:      f.FinalWeight,
		WasteNotes:       f.WasteNotes,
		IsActive:         f.IsActive,
	}
}
