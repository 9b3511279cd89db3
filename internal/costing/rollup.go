package costing

import (
	"sort"
	"time"
)

// ProductionRecord is one captured finished-good quantity for a day.
type ProductionRecord struct {
	ProductID int64
	Quantity  float64
	Day       time.Time
}

// RollupLine aggregates the exploded cost of one product across a period.
type RollupLine struct {
	ProductID int64   `json:"product_id"`
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Quantity  float64 `json:"quantity"`
	UnitCost  float64 `json:"unit_cost"`
	Total     float64 `json:"total"`
}

// DayRollup is the per-day slice of a rollup.
type DayRollup struct {
	Day   string  `json:"day"`
	Total float64 `json:"total"`
}

// RollupFailure records a product whose explosion failed. Failures isolate
// per product: the rest of the rollup still computes.
type RollupFailure struct {
	ProductID int64  `json:"product_id"`
	Reason    string `json:"reason"`
}

// Rollup is the summed production cost for a period. Ingredients aggregates
// the first-level components of every produced product, scaled to the
// produced quantities and grouped by recipe category.
type Rollup struct {
	Lines       []RollupLine    `json:"lines"`
	Days        []DayRollup     `json:"days"`
	Ingredients []CategoryGroup `json:"ingredients"`
	Total       float64         `json:"total"`
	Failures    []RollupFailure `json:"failures,omitempty"`
}

// RollupProduction explodes every produced product and sums cost per product
// and per day. A single memo is shared across the whole call so a sub-recipe
// appearing under many finished products is exploded once; the memo is
// discarded with the call and never outlives the snapshot.
func RollupProduction(snap *Snapshot, records []ProductionRecord) *Rollup {
	memo := NewMemo()
	perProduct := make(map[int64]*RollupLine)
	perIngredient := make(map[int64]*Line)
	perDay := make(map[string]float64)
	failed := make(map[int64]string)

	rollup := &Rollup{}
	for _, rec := range records {
		if _, bad := failed[rec.ProductID]; bad {
			continue
		}
		breakdown, err := ExplodeWithMemo(snap, rec.ProductID, memo)
		if err != nil {
			failed[rec.ProductID] = err.Error()
			continue
		}
		cost := breakdown.UnitCost * rec.Quantity

		line, ok := perProduct[rec.ProductID]
		if !ok {
			product := snap.Products[rec.ProductID]
			line = &RollupLine{
				ProductID: product.ID,
				Code:      product.Code,
				Name:      product.Name,
				Category:  categoryOf(product),
				UnitCost:  breakdown.UnitCost,
			}
			perProduct[rec.ProductID] = line
		}
		line.Quantity += rec.Quantity
		line.Total += cost

		// Component lines describe one batch; scale them to produced units.
		scale := rec.Quantity / batchYield(snap.Products[rec.ProductID])
		for _, component := range breakdown.Lines {
			ing, ok := perIngredient[component.ProductID]
			if !ok {
				copied := component
				copied.Quantity = 0
				copied.Total = 0
				perIngredient[component.ProductID] = &copied
				ing = perIngredient[component.ProductID]
			}
			ing.Quantity += component.Quantity * scale
			ing.Total += component.Total * scale
		}

		day := rec.Day.Format("2006-01-02")
		perDay[day] += cost
		rollup.Total += cost
	}

	for _, line := range perProduct {
		rollup.Lines = append(rollup.Lines, *line)
	}
	sort.Slice(rollup.Lines, func(i, j int) bool {
		a, b := rollup.Lines[i], rollup.Lines[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Name < b.Name
	})

	ingredients := make([]Line, 0, len(perIngredient))
	for _, line := range perIngredient {
		ingredients = append(ingredients, *line)
	}
	sortLines(ingredients)
	rollup.Ingredients = groupByCategory(ingredients)

	for day, total := range perDay {
		rollup.Days = append(rollup.Days, DayRollup{Day: day, Total: total})
	}
	sort.Slice(rollup.Days, func(i, j int) bool { return rollup.Days[i].Day < rollup.Days[j].Day })

	for id, reason := range failed {
		rollup.Failures = append(rollup.Failures, RollupFailure{ProductID: id, Reason: reason})
	}
	sort.Slice(rollup.Failures, func(i, j int) bool { return rollup.Failures[i].ProductID < rollup.Failures[j].ProductID })

	return rollup
}
