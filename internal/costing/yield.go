package costing

// YieldFigures is the waste-adjusted pricing derived from a cost profile.
type YieldFigures struct {
	YieldPercent       float64 `json:"yield_percent"`
	WastePercent       float64 `json:"waste_percent"`
	NetUnitPrice       float64 `json:"net_unit_price"`
	ProcessedUnitPrice float64 `json:"processed_unit_price"`
	QualityNote        string  `json:"quality_note,omitempty"`
}

// NormalizeYield computes yield, waste and the waste-adjusted unit prices for
// a raw material. Zero or negative weights never fail: a zero initial weight
// means no processing data, so the net price stays at the purchase price and
// yield/waste report as 0. A final weight above the initial weight is a data
// quality condition and is only noted, the figures are computed as given.
func NormalizeYield(profile CostProfile) YieldFigures {
	price := profile.PurchasePrice
	if price < 0 {
		price = 0
	}
	initial := profile.InitialWeight
	if initial < 0 {
		initial = 0
	}
	final := profile.FinalWeight
	if final < 0 {
		final = 0
	}

	fig := YieldFigures{NetUnitPrice: price}
	if initial > 0 {
		ratio := final / initial
		fig.YieldPercent = ratio * 100
		fig.WastePercent = ((initial - final) / initial) * 100
		fig.NetUnitPrice = price * ratio
		if final > initial {
			fig.QualityNote = "final weight exceeds initial weight"
		}
	}
	if profile.Conversion > 0 {
		fig.ProcessedUnitPrice = fig.NetUnitPrice / profile.Conversion
	}
	return fig
}

// EffectiveUnitCost is the price the engine charges per usable unit of a raw
// material: the processed price when a conversion factor exists, otherwise
// the waste-adjusted purchase price.
func EffectiveUnitCost(profile CostProfile) float64 {
	fig := NormalizeYield(profile)
	if profile.Conversion > 0 {
		return fig.ProcessedUnitPrice
	}
	return fig.NetUnitPrice
}
