package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comal-erp/comal-erp/internal/costing"
)

func TestTechnicalSheetHTMLForDish(t *testing.T) {
	ideal := 30.0
	cost := &costing.ProductCost{
		ProductID: 4,
		Code:      "DSH-001",
		Name:      "Grilled Fish Plate",
		Kind:      costing.KindDish,
		Price:     50,
		TaxRate:   16,
		Breakdown: &costing.Breakdown{
			ProductID: 4,
			Groups: []costing.CategoryGroup{
				{
					Category: "Proteins",
					Lines: []costing.Line{
						{Code: "SR-001", Name: "Fish Base", Unit: "kg", Quantity: 0.5, UnitCost: 160, Total: 80},
					},
					Subtotal: 80,
				},
				{
					Category: "Uncategorized",
					Lines: []costing.Line{
						{Code: "RM-002", Name: "Garnish", Unit: "pz", Quantity: 1, UnitCost: 5, Total: 5},
					},
					Subtotal: 5,
				},
			},
			TotalCost: 85,
			UnitCost:  85,
		},
		Alert: &costing.AlertResult{
			PriceExTax:       42,
			CostPercent:      202.380952,
			IdealCostPercent: &ideal,
			Alert:            true,
		},
	}

	html, err := TechnicalSheetHTML(cost, time.Date(2026, 8, 31, 9, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Contains(t, html, "Grilled Fish Plate")
	require.Contains(t, html, "DSH-001")
	require.Contains(t, html, "Dish")
	require.Contains(t, html, "generated 2026-08-31 09:30")
	require.Contains(t, html, "Proteins")
	require.Contains(t, html, "Fish Base")
	require.Contains(t, html, "$160.00")
	require.Contains(t, html, "$85.00")
	require.Contains(t, html, "202.38%")
	require.Contains(t, html, "30.00%")
	require.Contains(t, html, `<span class="alert">202.38%</span>`)

	// Uncategorized sorts after named categories.
	require.Less(t, strings.Index(html, "Proteins"), strings.Index(html, "Uncategorized"))
}

func TestTechnicalSheetHTMLForRawMaterial(t *testing.T) {
	cost := &costing.ProductCost{
		ProductID: 1,
		Code:      "RM-001",
		Name:      "Whole Fish",
		Kind:      costing.KindRawMaterial,
		Price:     0,
		Breakdown: &costing.Breakdown{ProductID: 1, TotalCost: 80, UnitCost: 80},
		Yield: &costing.YieldFigures{
			YieldPercent:       80,
			WastePercent:       20,
			NetUnitPrice:       80,
			ProcessedUnitPrice: 80,
		},
	}

	html, err := TechnicalSheetHTML(cost, time.Now())
	require.NoError(t, err)

	require.Contains(t, html, "Raw material")
	require.Contains(t, html, "80.00%")
	require.Contains(t, html, "20.00%")
	require.NotContains(t, html, "Cost position")
	require.NotContains(t, html, "Composition")
}

func TestTechnicalSheetHTMLWithoutTarget(t *testing.T) {
	cost := &costing.ProductCost{
		ProductID: 3,
		Code:      "SR-001",
		Name:      "Fish Base",
		Kind:      costing.KindSubRecipe,
		Breakdown: &costing.Breakdown{ProductID: 3, TotalCost: 160, UnitCost: 160},
		Alert: &costing.AlertResult{
			PriceExTax:  0,
			CostPercent: 0,
		},
	}

	html, err := TechnicalSheetHTML(cost, time.Now())
	require.NoError(t, err)
	require.Contains(t, html, "<td class=\"num\">-</td>")
	require.NotContains(t, html, "span class=\"alert\"")
}
