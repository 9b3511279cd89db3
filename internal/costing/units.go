package costing

import "strings"

// Unit is a presentation unit a purchase unit can be matched against.
type Unit struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ResolveConversionUnit finds the presentation unit whose name matches the
// purchase unit, ignoring case and surrounding whitespace. No match is not an
// error; downstream pricing simply degrades to the purchase price.
func ResolveConversionUnit(purchaseUnit string, units []Unit) (Unit, bool) {
	want := strings.TrimSpace(purchaseUnit)
	if want == "" {
		return Unit{}, false
	}
	for _, u := range units {
		if strings.EqualFold(strings.TrimSpace(u.Name), want) {
			return u, true
		}
	}
	return Unit{}, false
}

// SuggestConversionUnit proposes an auto-assignment for a raw material that
// has no conversion unit yet. The engine only suggests; persisting the
// assignment is the caller's decision.
func SuggestConversionUnit(product Product, units []Unit) *Unit {
	if product.Profile == nil || product.Profile.ConversionUnitID != nil {
		return nil
	}
	match, ok := ResolveConversionUnit(product.Profile.PurchaseUnit, units)
	if !ok {
		return nil
	}
	return &match
}
