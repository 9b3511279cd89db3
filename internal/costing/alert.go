package costing

// EvaluateAlert compares an exploded total cost against the product's
// tax-exclusive sale price and its ideal-cost target. Without a target the
// percentage is still reported but no alert is ever raised.
func EvaluateAlert(price, taxRate float64, ideal *float64, totalCost float64) AlertResult {
	priceExTax := price - price*(taxRate/100)
	result := AlertResult{PriceExTax: priceExTax, IdealCostPercent: ideal}
	if priceExTax > 0 {
		result.CostPercent = (totalCost / priceExTax) * 100
	}
	if ideal != nil && result.CostPercent > *ideal {
		result.Alert = true
	}
	return result
}
