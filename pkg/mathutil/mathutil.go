// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/roller-forecast/pkg/constants"
)

// IsFinite reports whether val is neither NaN nor infinite.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// IsNonNegative reports whether val is a finite number greater than or equal to zero.
func IsNonNegative(val float64) bool {
	return IsFinite(val) && val >= 0
}

// PercentToFraction converts a percentage (12.5) into a fraction (0.125).
func PercentToFraction(percent float64) float64 {
	return percent / constants.PercentageMultiplier
}

// FractionToPercent converts a fraction (0.125) into a percentage (12.5).
func FractionToPercent(fraction float64) float64 {
	return fraction * constants.PercentageMultiplier
}

// IsWhole reports whether val is a finite number without a fractional part.
func IsWhole(val float64) bool {
	return IsFinite(val) && val == math.Trunc(val)
}
