package costing

import (
	"math"
	"sort"
)

// Memo caches per-product breakdowns within one rollup or scan invocation.
// Never keep a Memo across snapshots: it would serve stale prices.
type Memo map[int64]*Breakdown

// NewMemo returns an empty per-call memo.
func NewMemo() Memo {
	return make(Memo)
}

// Explode walks the component graph of the given product and returns its
// flattened, category-grouped cost breakdown. Structural problems (cycles,
// dangling references, invalid quantities) abort the whole explosion with a
// typed error; no partial breakdown is returned.
func Explode(snap *Snapshot, productID int64) (*Breakdown, error) {
	return explode(snap, productID, nil, nil)
}

// ExplodeWithMemo behaves like Explode but reuses already-computed sub-trees
// from memo. The numeric result is identical with or without the memo.
func ExplodeWithMemo(snap *Snapshot, productID int64, memo Memo) (*Breakdown, error) {
	return explode(snap, productID, nil, memo)
}

// LineCost prices a single component: quantity times the resolved unit cost.
// Negative or non-finite quantities are rejected rather than clamped, since
// silently accepting them would skew totals.
func LineCost(unitCost, quantity float64) (float64, error) {
	if quantity < 0 || math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return 0, &InvalidQuantityError{Quantity: quantity}
	}
	return unitCost * quantity, nil
}

// Round2 applies the 2-decimal presentation rounding. Internal accumulation
// stays unrounded so deep recipe trees do not compound rounding error.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// path is the ancestor chain of the current walk. It is copied before each
// descent so sibling branches never see each other's ids: only true ancestor
// chains count as cycles.
func explode(snap *Snapshot, productID int64, path []int64, memo Memo) (*Breakdown, error) {
	for _, ancestor := range path {
		if ancestor == productID {
			chain := append(append([]int64{}, path...), productID)
			return nil, &CyclicRecipeError{Chain: chain}
		}
	}

	if memo != nil {
		if cached, ok := memo[productID]; ok {
			return cached, nil
		}
	}

	product, ok := snap.Products[productID]
	if !ok {
		var parentID int64
		if len(path) > 0 {
			parentID = path[len(path)-1]
		}
		return nil, &DanglingReferenceError{ParentID: parentID, ProductID: productID}
	}

	components := snap.Components[productID]
	if len(components) == 0 && product.Kind == KindRawMaterial {
		unitCost := 0.0
		if product.Profile != nil {
			unitCost = EffectiveUnitCost(*product.Profile)
		}
		result := &Breakdown{ProductID: productID, TotalCost: unitCost, UnitCost: unitCost}
		if memo != nil {
			memo[productID] = result
		}
		return result, nil
	}

	childPath := make([]int64, len(path), len(path)+1)
	copy(childPath, path)
	childPath = append(childPath, productID)

	lines := make([]Line, 0, len(components))
	total := 0.0
	for _, comp := range components {
		if comp.Quantity < 0 || math.IsNaN(comp.Quantity) || math.IsInf(comp.Quantity, 0) {
			return nil, &InvalidQuantityError{ParentID: productID, ChildID: comp.ChildID, Quantity: comp.Quantity}
		}
		child, ok := snap.Products[comp.ChildID]
		if !ok {
			return nil, &DanglingReferenceError{ParentID: productID, ProductID: comp.ChildID}
		}

		var unitCost float64
		if child.Kind == KindRawMaterial {
			if child.Profile != nil {
				unitCost = EffectiveUnitCost(*child.Profile)
			}
		} else {
			sub, err := explode(snap, comp.ChildID, childPath, memo)
			if err != nil {
				return nil, err
			}
			unitCost = sub.UnitCost
		}

		lineTotal := unitCost * comp.Quantity
		total += lineTotal
		lines = append(lines, Line{
			ProductID: child.ID,
			Code:      child.Code,
			Name:      child.Name,
			Category:  categoryOf(child),
			Unit:      child.Unit,
			Quantity:  comp.Quantity,
			UnitCost:  unitCost,
			Total:     lineTotal,
		})
	}

	sortLines(lines)
	result := &Breakdown{
		ProductID: productID,
		Lines:     lines,
		Groups:    groupByCategory(lines),
		TotalCost: total,
		UnitCost:  total / batchYield(product),
	}
	if memo != nil {
		memo[productID] = result
	}
	return result, nil
}

func categoryOf(p Product) string {
	if p.CategoryName == "" {
		return UncategorizedBucket
	}
	return p.CategoryName
}

// batchYield is how many units one batch of the product produces. The schema
// carries no yield for most recipes, so the default is one unit per batch.
func batchYield(p Product) float64 {
	if p.BatchYield != nil && *p.BatchYield > 0 {
		return *p.BatchYield
	}
	return 1
}

func sortLines(lines []Line) {
	sort.SliceStable(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if a.Category != b.Category {
			if a.Category == UncategorizedBucket {
				return false
			}
			if b.Category == UncategorizedBucket {
				return true
			}
			return a.Category < b.Category
		}
		return a.Name < b.Name
	})
}

func groupByCategory(lines []Line) []CategoryGroup {
	var groups []CategoryGroup
	for _, line := range lines {
		if n := len(groups); n > 0 && groups[n-1].Category == line.Category {
			groups[n-1].Lines = append(groups[n-1].Lines, line)
			groups[n-1].Subtotal += line.Total
			continue
		}
		groups = append(groups, CategoryGroup{Category: line.Category, Lines: []Line{line}, Subtotal: line.Total})
	}
	return groups
}
