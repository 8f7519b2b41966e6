package meter

import "github.com/shopspring/decimal"

// kWh values are rounded to the nearest 0.1 everywhere: delta computation,
// aggregation and summaries all go through RoundKWh so stored deltas and
// displayed totals reconcile.
const roundPlaces = 1

// RoundKWh rounds v to the service-wide kWh precision.
func RoundKWh(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(roundPlaces).Float64()
	return f
}
