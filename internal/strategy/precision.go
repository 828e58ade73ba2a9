package strategy

import "github.com/shopspring/decimal"

// PricePrecision returns the fractional digits used to display prices
// quoted around price.
func (e *Engine) PricePrecision(price float64) int32 {
	if price < 1 {
		return e.params.SubUnitPrecision
	}
	return e.params.DefaultPrecision
}

// PricePrecision returns the display digits for price under the stock
// thresholds.
func PricePrecision(price float64) int32 {
	return defaultEngine.PricePrecision(price)
}

// RoundPrice rounds v half away from zero to places fractional digits.
func RoundPrice(v float64, places int32) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(places)
}
