// Package format renders balances, rewards, percentages and power values for
// reports.
package format

import (
	"strings"

	"github.com/iwvelando/roller-forecast/pkg/constants"
	"github.com/iwvelando/roller-forecast/pkg/mathutil"
	"github.com/iwvelando/roller-forecast/pkg/units"
	"github.com/shopspring/decimal"
)

// Fixed returns value rounded half away from zero to places decimals without
// grouping, e.g. "1234.5000".
func Fixed(value float64, places int32) string {
	return decimal.NewFromFloat(value).StringFixed(places)
}

// Grouped returns value rounded to places decimals with thousands separators
// (e.g., "-1,234.5000").
func Grouped(value float64, places int32) string {
	d := decimal.NewFromFloat(value).Round(places)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	formatted := d.StringFixed(places)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	if len(parts) == 2 {
		return sign + intPart + "." + parts[1]
	}
	return sign + intPart
}

// Balance renders a balance with BalancePrecision decimals and grouping.
func Balance(value float64) string {
	return Grouped(value, constants.BalancePrecision)
}

// Reward renders a per-cycle reward with RewardPrecision decimals.
func Reward(value float64) string {
	return Fixed(value, constants.RewardPrecision)
}

// Percent renders a fraction (0.125) as a percentage ("12.50 %").
func Percent(fraction float64) string {
	return Fixed(mathutil.FractionToPercent(fraction), 2) + " %"
}

// Power renders a base-unit power magnitude in the largest fitting unit.
func Power(magnitude float64) string {
	return units.Format(magnitude)
}
