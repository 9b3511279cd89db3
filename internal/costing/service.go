package costing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
)

// SnapshotSource supplies the point-in-time data the engine computes over.
// Fetching happens before computation; the engine itself performs no I/O.
type SnapshotSource interface {
	LoadSnapshot(ctx context.Context) (*Snapshot, error)
	ListUnits(ctx context.Context) ([]Unit, error)
}

// ProductCost is the full costing view of one product: its breakdown with
// alert evaluation and, for raw materials, the yield figures.
type ProductCost struct {
	ProductID int64         `json:"product_id"`
	Code      string        `json:"code"`
	Name      string        `json:"name"`
	Kind      Kind          `json:"kind"`
	Price     float64       `json:"price"`
	TaxRate   float64       `json:"tax_rate"`
	Breakdown *Breakdown    `json:"breakdown"`
	Yield     *YieldFigures `json:"yield,omitempty"`
	Alert     *AlertResult  `json:"alert,omitempty"`
}

// AlertRow is one grid row of the dish/sub-recipe alert listing.
type AlertRow struct {
	ProductID        int64    `json:"product_id"`
	Code             string   `json:"code"`
	Name             string   `json:"name"`
	Kind             Kind     `json:"kind"`
	Price            float64  `json:"price"`
	TotalCost        float64  `json:"total_cost"`
	CostPercent      float64  `json:"cost_percent"`
	IdealCostPercent *float64 `json:"ideal_cost_percent,omitempty"`
	Alert            bool     `json:"alert"`
	Failure          string   `json:"failure,omitempty"`
}

// Service orchestrates snapshot loading, explosion and caching. Explosions
// are pure reads over one snapshot, so concurrent calls need no locking.
type Service struct {
	source SnapshotSource
	cache  *Cache
	logger *slog.Logger
}

// NewService builds the costing service.
func NewService(source SnapshotSource, cache *Cache, logger *slog.Logger) *Service {
	return &Service{source: source, cache: cache, logger: logger}
}

// ProductCost explodes one product and evaluates its alert, serving from the
// versioned cache when possible. Structural engine errors pass through typed
// so callers can map them.
func (s *Service) ProductCost(ctx context.Context, productID int64) (*ProductCost, error) {
	key, err := s.cache.BuildKey(ctx, "costing", "product", strconv.FormatInt(productID, 10))
	if err != nil {
		return nil, err
	}
	var result ProductCost
	if err := s.cache.FetchJSON(ctx, key, &result, func(ctx context.Context) (interface{}, error) {
		return s.computeProductCost(ctx, productID)
	}); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Service) computeProductCost(ctx context.Context, productID int64) (*ProductCost, error) {
	snap, err := s.source.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	product, ok := snap.Products[productID]
	if !ok {
		return nil, &DanglingReferenceError{ProductID: productID}
	}
	breakdown, err := Explode(snap, productID)
	if err != nil {
		return nil, err
	}

	result := &ProductCost{
		ProductID: product.ID,
		Code:      product.Code,
		Name:      product.Name,
		Kind:      product.Kind,
		Price:     product.Price,
		TaxRate:   product.TaxRate,
		Breakdown: breakdown,
	}
	if product.Kind == KindRawMaterial && product.Profile != nil {
		fig := NormalizeYield(*product.Profile)
		result.Yield = &fig
	}
	if product.Kind != KindRawMaterial {
		alert := EvaluateAlert(product.Price, product.TaxRate, product.IdealCostPercent, breakdown.TotalCost)
		result.Alert = &alert
	}
	return result, nil
}

// Alerts explodes every dish and sub-recipe with a shared memo and reports
// their cost flags. A product that fails to explode keeps its row with the
// failure reason; the other rows compute normally.
func (s *Service) Alerts(ctx context.Context) ([]AlertRow, error) {
	snap, err := s.source.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	memo := NewMemo()
	rows := make([]AlertRow, 0, len(snap.Products))
	for _, product := range snap.Products {
		if product.Kind == KindRawMaterial {
			continue
		}
		row := AlertRow{
			ProductID:        product.ID,
			Code:             product.Code,
			Name:             product.Name,
			Kind:             product.Kind,
			Price:            product.Price,
			IdealCostPercent: product.IdealCostPercent,
		}
		breakdown, err := ExplodeWithMemo(snap, product.ID, memo)
		if err != nil {
			row.Failure = err.Error()
			if s.logger != nil {
				s.logger.Warn("cost explosion failed", slog.Int64("product_id", product.ID), slog.Any("error", err))
			}
			rows = append(rows, row)
			continue
		}
		alert := EvaluateAlert(product.Price, product.TaxRate, product.IdealCostPercent, breakdown.TotalCost)
		row.TotalCost = breakdown.TotalCost
		row.CostPercent = alert.CostPercent
		row.Alert = alert.Alert
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows, nil
}

// ConversionSuggestion proposes a conversion unit for an unassigned raw
// material. Nil means no suggestion; persisting one is the caller's job.
func (s *Service) ConversionSuggestion(ctx context.Context, productID int64) (*Unit, error) {
	snap, err := s.source.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	product, ok := snap.Products[productID]
	if !ok {
		return nil, &DanglingReferenceError{ProductID: productID}
	}
	units, err := s.source.ListUnits(ctx)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	return SuggestConversionUnit(product, units), nil
}

// Rollup explodes the given production records over a fresh snapshot.
func (s *Service) Rollup(ctx context.Context, records []ProductionRecord) (*Rollup, error) {
	snap, err := s.source.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return RollupProduction(snap, records), nil
}

// ProbeCycle reports whether adding the candidate edges to the current graph
// would create a cycle, without writing anything. Used by the recipe editor
// to reject a bad kit before persisting it.
func (s *Service) ProbeCycle(ctx context.Context, parentID int64, childIDs []int64) error {
	snap, err := s.source.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	// Kit upserts merge into existing edges, so the probe does too.
	probe := &Snapshot{Products: snap.Products, Components: make(map[int64][]Component, len(snap.Components)+1)}
	for id, comps := range snap.Components {
		probe.Components[id] = comps
	}
	existing := make(map[int64]bool, len(probe.Components[parentID]))
	edges := append([]Component{}, probe.Components[parentID]...)
	for _, comp := range edges {
		existing[comp.ChildID] = true
	}
	for _, childID := range childIDs {
		if !existing[childID] {
			edges = append(edges, Component{ParentID: parentID, ChildID: childID, Quantity: 1})
		}
	}
	probe.Components[parentID] = edges

	_, err = Explode(probe, parentID)
	var cyclic *CyclicRecipeError
	if errors.As(err, &cyclic) {
		return cyclic
	}
	return nil
}

// Invalidate bumps the cache version after price, profile or recipe edits.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}
