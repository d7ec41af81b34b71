// Package money holds the monetary arithmetic helpers shared by the ledger
// and the balance engine. Amounts live as float64 in the models; decimal is
// used at the comparison and rounding boundaries so results are stable.
package money

import "github.com/shopspring/decimal"

// Tolerance is the maximum accepted drift between a record amount and the
// sum of its splits, in currency units.
const Tolerance = 0.01

// Round2 rounds to 2 decimal places, half away from zero.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// SumWithin reports whether sum and total differ by at most Tolerance.
func SumWithin(sum, total float64) bool {
	diff := decimal.NewFromFloat(sum).Sub(decimal.NewFromFloat(total)).Abs()
	return diff.LessThanOrEqual(decimal.NewFromFloat(Tolerance))
}
