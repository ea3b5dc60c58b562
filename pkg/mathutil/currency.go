// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/bapenda-labs/pad-forecast/pkg/constants"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Used for making logical comparisons.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// IsPositive checks if a value is positive (greater than tolerance)
func IsPositive(val float64) bool {
	return val > constants.CurrencyTolerance
}

// IsNegative checks if a value is negative (less than negative tolerance)
func IsNegative(val float64) bool {
	return val < -constants.CurrencyTolerance
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// SafeDiv divides num by den, returning 0 when the denominator is exactly
// zero. This is the single division-by-zero policy for every elasticity,
// percentage-change, and range computation in the pipeline.
func SafeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// CalculatePercentage calculates what percentage value is of total
func CalculatePercentage(value, total float64) float64 {
	return SafeDiv(value, total) * constants.PercentageMultiplier
}

// PercentChanges returns the year-over-year fractional changes of a series,
// one element shorter than the input. A zero previous value contributes 0
// rather than propagating Inf.
func PercentChanges(series []float64) []float64 {
	if len(series) < 2 {
		return nil
	}
	changes := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		changes = append(changes, SafeDiv(series[i]-series[i-1], series[i-1]))
	}
	return changes
}

// Min returns the minimum of two float64 values
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum of two float64 values
func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
