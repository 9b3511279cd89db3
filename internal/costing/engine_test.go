package costing

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

// kitchenSnapshot builds the sauce/plate fixture used across the engine
// tests: a trimmed raw material, a garnish, a sub-recipe and a dish.
func kitchenSnapshot() *Snapshot {
	return &Snapshot{
		Products: map[int64]Product{
			1: {ID: 1, Code: "RM-001", Name: "Fish", CategoryName: "Proteins", Kind: KindRawMaterial,
				Profile: &CostProfile{PurchasePrice: 100, Conversion: 1, InitialWeight: 10, FinalWeight: 8}},
			2: {ID: 2, Code: "RM-002", Name: "Garnish", CategoryName: "Produce", Kind: KindRawMaterial,
				Profile: &CostProfile{PurchasePrice: 5, Conversion: 1}},
			3: {ID: 3, Code: "SR-001", Name: "Salsa", CategoryName: "Sauces", Kind: KindSubRecipe},
			4: {ID: 4, Code: "DSH-001", Name: "Plate", Kind: KindDish, Price: 50, TaxRate: 16,
				IdealCostPercent: floatPtr(30)},
		},
		Components: map[int64][]Component{
			3: {{ParentID: 3, ChildID: 1, Quantity: 2}},
			4: {
				{ParentID: 4, ChildID: 3, Quantity: 0.5},
				{ParentID: 4, ChildID: 2, Quantity: 1},
			},
		},
	}
}

func TestExplodeRawMaterialBaseCase(t *testing.T) {
	snap := kitchenSnapshot()
	breakdown, err := Explode(snap, 1)
	require.NoError(t, err)
	require.Empty(t, breakdown.Lines)
	require.InDelta(t, 80, breakdown.UnitCost, 1e-9)
}

func TestExplodeSubRecipe(t *testing.T) {
	snap := kitchenSnapshot()
	breakdown, err := Explode(snap, 3)
	require.NoError(t, err)
	require.Len(t, breakdown.Lines, 1)
	require.InDelta(t, 160, breakdown.TotalCost, 1e-9)
	require.InDelta(t, 160, breakdown.UnitCost, 1e-9)
}

func TestExplodeDishThroughNestedSubRecipe(t *testing.T) {
	snap := kitchenSnapshot()
	breakdown, err := Explode(snap, 4)
	require.NoError(t, err)
	require.Len(t, breakdown.Lines, 2)
	// 0.5 * 160 (salsa) + 1 * 5 (garnish)
	require.InDelta(t, 85, breakdown.TotalCost, 1e-9)
}

func TestExplodeAdditivity(t *testing.T) {
	snap := kitchenSnapshot()
	breakdown, err := Explode(snap, 4)
	require.NoError(t, err)
	sum := 0.0
	for _, line := range breakdown.Lines {
		require.InDelta(t, line.UnitCost*line.Quantity, line.Total, 1e-9)
		sum += line.Total
	}
	require.InDelta(t, breakdown.TotalCost, sum, 1e-9)
}

func TestExplodeBatchYieldDividesUnitCost(t *testing.T) {
	snap := kitchenSnapshot()
	salsa := snap.Products[3]
	salsa.BatchYield = floatPtr(4)
	snap.Products[3] = salsa

	breakdown, err := Explode(snap, 3)
	require.NoError(t, err)
	require.InDelta(t, 160, breakdown.TotalCost, 1e-9)
	require.InDelta(t, 40, breakdown.UnitCost, 1e-9)

	plate, err := Explode(snap, 4)
	require.NoError(t, err)
	// 0.5 * 40 + 1 * 5
	require.InDelta(t, 25, plate.TotalCost, 1e-9)
}

func TestExplodeGroupsByCategory(t *testing.T) {
	snap := kitchenSnapshot()
	breakdown, err := Explode(snap, 4)
	require.NoError(t, err)
	require.Len(t, breakdown.Groups, 2)

	var subtotal float64
	for _, group := range breakdown.Groups {
		require.NotEmpty(t, group.Lines)
		subtotal += group.Subtotal
	}
	require.InDelta(t, breakdown.TotalCost, subtotal, 1e-9)
}

func TestExplodeUncategorizedBucketSortsLast(t *testing.T) {
	snap := kitchenSnapshot()
	garnish := snap.Products[2]
	garnish.CategoryName = ""
	snap.Products[2] = garnish

	breakdown, err := Explode(snap, 4)
	require.NoError(t, err)
	last := breakdown.Groups[len(breakdown.Groups)-1]
	require.Equal(t, UncategorizedBucket, last.Category)
}

func TestExplodeIdempotent(t *testing.T) {
	snap := kitchenSnapshot()
	first, err := Explode(snap, 4)
	require.NoError(t, err)
	second, err := Explode(snap, 4)
	require.NoError(t, err)
	require.Equal(t, first.TotalCost, second.TotalCost)
	require.Equal(t, first.Lines, second.Lines)
}

func TestExplodeDetectsCycle(t *testing.T) {
	snap := kitchenSnapshot()
	snap.Components[1] = []Component{{ParentID: 1, ChildID: 3, Quantity: 1}}
	fish := snap.Products[1]
	fish.Kind = KindSubRecipe
	snap.Products[1] = fish

	_, err := Explode(snap, 3)
	var cyclic *CyclicRecipeError
	require.ErrorAs(t, err, &cyclic)
	require.Equal(t, []int64{3, 1, 3}, cyclic.Chain)
}

func TestExplodeSiblingBranchesShareProduct(t *testing.T) {
	// The same sub-recipe under two sibling branches is not a cycle.
	snap := kitchenSnapshot()
	snap.Products[5] = Product{ID: 5, Code: "SR-002", Name: "Base", CategoryName: "Sauces", Kind: KindSubRecipe}
	snap.Components[5] = []Component{{ParentID: 5, ChildID: 1, Quantity: 1}}
	snap.Components[4] = append(snap.Components[4],
		Component{ParentID: 4, ChildID: 5, Quantity: 1})
	snap.Components[3] = append(snap.Components[3],
		Component{ParentID: 3, ChildID: 5, Quantity: 1})

	_, err := Explode(snap, 4)
	require.NoError(t, err)
}

func TestExplodeDanglingReference(t *testing.T) {
	snap := kitchenSnapshot()
	snap.Components[4] = append(snap.Components[4], Component{ParentID: 4, ChildID: 99, Quantity: 1})

	breakdown, err := Explode(snap, 4)
	var dangling *DanglingReferenceError
	require.ErrorAs(t, err, &dangling)
	require.EqualValues(t, 99, dangling.ProductID)
	require.Nil(t, breakdown)
}

func TestExplodeRootMissing(t *testing.T) {
	snap := kitchenSnapshot()
	_, err := Explode(snap, 404)
	var dangling *DanglingReferenceError
	require.ErrorAs(t, err, &dangling)
}

func TestExplodeRejectsInvalidQuantity(t *testing.T) {
	for _, qty := range []float64{-1, math.NaN(), math.Inf(1)} {
		snap := kitchenSnapshot()
		snap.Components[4][1].Quantity = qty
		_, err := Explode(snap, 4)
		var invalid *InvalidQuantityError
		require.ErrorAs(t, err, &invalid, "quantity %v", qty)
	}
}

func TestLineCost(t *testing.T) {
	total, err := LineCost(80, 2)
	require.NoError(t, err)
	require.InDelta(t, 160, total, 1e-9)

	_, err = LineCost(80, -2)
	var invalid *InvalidQuantityError
	require.True(t, errors.As(err, &invalid))
}

func TestRound2(t *testing.T) {
	require.Equal(t, 202.38, Round2(202.380952))
	require.Equal(t, 0.1, Round2(0.1))
}
