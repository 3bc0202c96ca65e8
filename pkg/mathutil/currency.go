// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/proforma/pkg/constants"
	"github.com/shopspring/decimal"
)

// RoundCurrency rounds a value to whole currency units. It is applied only
// when a computed field is reported, never mid-calculation.
func RoundCurrency(val float64) float64 {
	return roundPlaces(val, constants.CurrencyPrecision)
}

// RoundRatio rounds a ratio (rate, multiple, coverage) to four decimals.
func RoundRatio(val float64) float64 {
	return roundPlaces(val, constants.RatioPrecision)
}

// RoundRatioPtr rounds a nullable ratio, preserving nil.
func RoundRatioPtr(val *float64) *float64 {
	if val == nil {
		return nil
	}
	rounded := RoundRatio(*val)
	return &rounded
}

func roundPlaces(val float64, places int32) float64 {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0
	}
	return decimal.NewFromFloat(val).Round(places).InexactFloat64()
}

// SafeDivide returns numerator / denominator, or 0 when the denominator is
// not strictly positive.
func SafeDivide(numerator, denominator float64) float64 {
	if denominator <= 0 {
		return 0
	}
	return numerator / denominator
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// IsZero checks if a currency value is effectively zero (within one unit)
func IsZero(val float64) bool {
	return math.Abs(val) < constants.CurrencyTolerance
}

// ClampInt restricts v to the closed range [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// GrowthFactor returns (1 + rate)^periods.
func GrowthFactor(rate float64, periods int) float64 {
	if periods <= 0 {
		return 1
	}
	return math.Pow(1+rate, float64(periods))
}
