package costing

import (
	"math"
	"testing"
)

func TestNormalizeYieldZeroInitialWeight(t *testing.T) {
	fig := NormalizeYield(CostProfile{PurchasePrice: 120, InitialWeight: 0, FinalWeight: 5})
	if fig.YieldPercent != 0 || fig.WastePercent != 0 {
		t.Fatalf("expected zero yield and waste, got %v / %v", fig.YieldPercent, fig.WastePercent)
	}
	if fig.NetUnitPrice != 120 {
		t.Fatalf("expected net price to stay at purchase price, got %v", fig.NetUnitPrice)
	}
}

func TestNormalizeYieldNoLoss(t *testing.T) {
	fig := NormalizeYield(CostProfile{PurchasePrice: 50, InitialWeight: 4, FinalWeight: 4})
	if fig.YieldPercent != 100 {
		t.Fatalf("expected 100%% yield, got %v", fig.YieldPercent)
	}
	if fig.WastePercent != 0 {
		t.Fatalf("expected 0%% waste, got %v", fig.WastePercent)
	}
	if fig.NetUnitPrice != 50 {
		t.Fatalf("expected unchanged net price, got %v", fig.NetUnitPrice)
	}
}

func TestNormalizeYieldComplement(t *testing.T) {
	cases := []struct{ initial, final float64 }{
		{10, 8},
		{3, 1},
		{7.5, 7.5},
		{2, 0},
	}
	for _, tc := range cases {
		fig := NormalizeYield(CostProfile{PurchasePrice: 10, InitialWeight: tc.initial, FinalWeight: tc.final})
		if sum := fig.YieldPercent + fig.WastePercent; math.Abs(sum-100) > 1e-9 {
			t.Fatalf("yield+waste = %v for initial=%v final=%v", sum, tc.initial, tc.final)
		}
	}
}

func TestNormalizeYieldWholeFish(t *testing.T) {
	// $100 purchase, 10kg trimmed down to 8kg, conversion factor 1.
	fig := NormalizeYield(CostProfile{PurchasePrice: 100, Conversion: 1, InitialWeight: 10, FinalWeight: 8})
	if fig.YieldPercent != 80 {
		t.Fatalf("yield = %v", fig.YieldPercent)
	}
	if fig.WastePercent != 20 {
		t.Fatalf("waste = %v", fig.WastePercent)
	}
	if fig.NetUnitPrice != 80 {
		t.Fatalf("net price = %v", fig.NetUnitPrice)
	}
	if fig.ProcessedUnitPrice != 80 {
		t.Fatalf("processed price = %v", fig.ProcessedUnitPrice)
	}
}

func TestNormalizeYieldConversionSplitsPrice(t *testing.T) {
	// A case of 24 bottles: processed price is per bottle.
	fig := NormalizeYield(CostProfile{PurchasePrice: 240, Conversion: 24, InitialWeight: 0, FinalWeight: 0})
	if fig.ProcessedUnitPrice != 10 {
		t.Fatalf("processed price = %v", fig.ProcessedUnitPrice)
	}
}

func TestNormalizeYieldNegativeWeightsTreatedAsZero(t *testing.T) {
	fig := NormalizeYield(CostProfile{PurchasePrice: 30, InitialWeight: -2, FinalWeight: -1})
	if fig.YieldPercent != 0 || fig.WastePercent != 0 || fig.NetUnitPrice != 30 {
		t.Fatalf("unexpected figures: %+v", fig)
	}
}

func TestNormalizeYieldFinalAboveInitialIsDataQuality(t *testing.T) {
	fig := NormalizeYield(CostProfile{PurchasePrice: 10, InitialWeight: 5, FinalWeight: 6})
	if fig.QualityNote == "" {
		t.Fatal("expected a quality note")
	}
	if fig.WastePercent >= 0 {
		t.Fatalf("expected negative waste as computed, got %v", fig.WastePercent)
	}
}

func TestEffectiveUnitCostFallsBackWithoutConversion(t *testing.T) {
	cost := EffectiveUnitCost(CostProfile{PurchasePrice: 15, Conversion: 0, InitialWeight: 10, FinalWeight: 10})
	if cost != 15 {
		t.Fatalf("expected purchase price fallback, got %v", cost)
	}
}
