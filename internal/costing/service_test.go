package costing

import (
	"context"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type mockSource struct {
	snap      *Snapshot
	units     []Unit
	loadCalls int
	loadErr   error
}

func (m *mockSource) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	m.loadCalls++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.snap, nil
}

func (m *mockSource) ListUnits(ctx context.Context) ([]Unit, error) {
	return m.units, nil
}

func newTestService(t *testing.T, source *mockSource) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewCache(client, time.Minute)
	return NewService(source, cache, slog.New(slog.DiscardHandler))
}

func TestProductCostServesFromCache(t *testing.T) {
	source := &mockSource{snap: kitchenSnapshot()}
	svc := newTestService(t, source)
	ctx := context.Background()

	first, err := svc.ProductCost(ctx, 4)
	require.NoError(t, err)
	require.Equal(t, "DSH-001", first.Code)
	require.InDelta(t, 85, first.Breakdown.TotalCost, 1e-9)
	require.NotNil(t, first.Alert)
	require.True(t, first.Alert.Alert)
	require.Equal(t, 1, source.loadCalls)

	second, err := svc.ProductCost(ctx, 4)
	require.NoError(t, err)
	require.InDelta(t, first.Breakdown.TotalCost, second.Breakdown.TotalCost, 1e-9)
	require.Equal(t, 1, source.loadCalls)
}

func TestInvalidateForcesRecompute(t *testing.T) {
	source := &mockSource{snap: kitchenSnapshot()}
	svc := newTestService(t, source)
	ctx := context.Background()

	_, err := svc.ProductCost(ctx, 4)
	require.NoError(t, err)
	require.Equal(t, 1, source.loadCalls)

	require.NoError(t, svc.Invalidate(ctx))

	// Price change becomes visible only after the bump.
	snap := kitchenSnapshot()
	profile := *snap.Products[2].Profile
	profile.PurchasePrice = 10
	fish := snap.Products[2]
	fish.Profile = &profile
	snap.Products[2] = fish
	source.snap = snap

	refreshed, err := svc.ProductCost(ctx, 4)
	require.NoError(t, err)
	require.Equal(t, 2, source.loadCalls)
	require.InDelta(t, 90, refreshed.Breakdown.TotalCost, 1e-9)
}

func TestProductCostYieldOnlyForRawMaterials(t *testing.T) {
	source := &mockSource{snap: kitchenSnapshot()}
	svc := newTestService(t, source)

	raw, err := svc.ProductCost(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, raw.Yield)
	require.Nil(t, raw.Alert)
	require.InDelta(t, 80, raw.Yield.YieldPercent, 1e-9)

	dish, err := svc.ProductCost(context.Background(), 4)
	require.NoError(t, err)
	require.Nil(t, dish.Yield)
	require.NotNil(t, dish.Alert)
}

func TestProductCostUnknownProduct(t *testing.T) {
	source := &mockSource{snap: kitchenSnapshot()}
	svc := newTestService(t, source)

	_, err := svc.ProductCost(context.Background(), 404)
	var dangling *DanglingReferenceError
	require.ErrorAs(t, err, &dangling)
	require.Equal(t, int64(404), dangling.ProductID)
}

func TestAlertsIsolatesFailures(t *testing.T) {
	snap := kitchenSnapshot()
	snap.Products[5] = Product{ID: 5, Code: "DSH-002", Name: "Broken Plate", Kind: KindDish, Price: 30}
	snap.Components[5] = []Component{{ParentID: 5, ChildID: 99, Quantity: 1}}

	source := &mockSource{snap: snap}
	svc := newTestService(t, source)

	rows, err := svc.Alerts(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	byCode := map[string]AlertRow{}
	for _, row := range rows {
		byCode[row.Code] = row
	}
	require.NotEmpty(t, byCode["DSH-002"].Failure)
	require.Empty(t, byCode["DSH-001"].Failure)
	require.True(t, byCode["DSH-001"].Alert)
	require.False(t, byCode["SR-001"].Alert)
}

func TestProbeCycleRejectsProspectiveCycle(t *testing.T) {
	source := &mockSource{snap: kitchenSnapshot()}
	svc := newTestService(t, source)

	// Salsa already feeds the plate, so feeding the plate back into salsa
	// closes a loop.
	err := svc.ProbeCycle(context.Background(), 3, []int64{4})
	var cyclic *CyclicRecipeError
	require.ErrorAs(t, err, &cyclic)

	require.NoError(t, svc.ProbeCycle(context.Background(), 3, []int64{2}))
}

func TestProbeCycleLeavesSnapshotUntouched(t *testing.T) {
	snap := kitchenSnapshot()
	source := &mockSource{snap: snap}
	svc := newTestService(t, source)

	_ = svc.ProbeCycle(context.Background(), 3, []int64{4})
	require.Len(t, snap.Components[3], 1)
}

func TestConversionSuggestion(t *testing.T) {
	snap := kitchenSnapshot()
	fish := snap.Products[1]
	fish.Profile = &CostProfile{PurchaseUnit: "Kilo", PurchasePrice: 100, InitialWeight: 10, FinalWeight: 8}
	snap.Products[1] = fish

	source := &mockSource{
		snap:  snap,
		units: []Unit{{ID: 7, Name: "kilo"}, {ID: 8, Name: "pieza"}},
	}
	svc := newTestService(t, source)

	unit, err := svc.ConversionSuggestion(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, unit)
	require.Equal(t, int64(7), unit.ID)
}
