package costing

import "testing"

func TestResolveConversionUnit(t *testing.T) {
	units := []Unit{{ID: 1, Name: "Kilo"}, {ID: 2, Name: "Litro"}, {ID: 3, Name: "Pieza"}}

	match, ok := ResolveConversionUnit("litro", units)
	if !ok || match.ID != 2 {
		t.Fatalf("expected Litro, got %+v ok=%v", match, ok)
	}

	match, ok = ResolveConversionUnit("  KILO ", units)
	if !ok || match.ID != 1 {
		t.Fatalf("expected trimmed case-insensitive match, got %+v ok=%v", match, ok)
	}

	if _, ok := ResolveConversionUnit("Caja", units); ok {
		t.Fatal("no match expected for unknown unit")
	}
	if _, ok := ResolveConversionUnit("", units); ok {
		t.Fatal("empty purchase unit must not match")
	}
}

func TestSuggestConversionUnit(t *testing.T) {
	units := []Unit{{ID: 1, Name: "Kilo"}}

	assigned := int64(1)
	cases := []struct {
		name    string
		product Product
		want    *int64
	}{
		{
			name:    "unassigned raw material gets a suggestion",
			product: Product{Kind: KindRawMaterial, Profile: &CostProfile{PurchaseUnit: "kilo"}},
			want:    &assigned,
		},
		{
			name:    "already assigned stays untouched",
			product: Product{Kind: KindRawMaterial, Profile: &CostProfile{PurchaseUnit: "kilo", ConversionUnitID: &assigned}},
		},
		{
			name:    "no profile no suggestion",
			product: Product{Kind: KindDish},
		},
	}
	for _, tc := range cases {
		got := SuggestConversionUnit(tc.product, units)
		if tc.want == nil && got != nil {
			t.Fatalf("%s: unexpected suggestion %+v", tc.name, got)
		}
		if tc.want != nil && (got == nil || got.ID != *tc.want) {
			t.Fatalf("%s: expected unit %d, got %+v", tc.name, *tc.want, got)
		}
	}
}
