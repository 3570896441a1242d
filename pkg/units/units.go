// Package units converts power quantities between the supported hash-rate
// units and scales base-unit magnitudes for display.
package units

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iwvelando/roller-forecast/pkg/constants"
)

// Power unit labels, smallest first. Each unit is UnitStep times the previous one.
const (
	GigaHash  = "Gh/s"
	TeraHash  = "Th/s"
	PetaHash  = "Ph/s"
	ExaHash   = "Eh/s"
	BaseLabel = GigaHash
)

// PowerUnits lists the supported labels in ascending order.
var PowerUnits = []string{GigaHash, TeraHash, PetaHash, ExaHash}

// Index returns the position of unit in PowerUnits. Matching ignores case.
func Index(unit string) (int, error) {
	for i, u := range PowerUnits {
		if strings.EqualFold(u, unit) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("unknown power unit %q, expected one of %s", unit, strings.Join(PowerUnits, ", "))
}

// ToBase converts value expressed in unit into the base unit (Gh/s).
func ToBase(value float64, unit string) (float64, error) {
	idx, err := Index(unit)
	if err != nil {
		return 0, err
	}
	for i := 0; i < idx; i++ {
		value *= constants.UnitStep
	}
	return value, nil
}

// Split separates a power string such as "15.7 Th/s" into its numeric part and
// unit. A missing unit yields the base unit label.
func Split(s string) (string, string) {
	trimmed := strings.TrimSpace(s)
	for _, u := range PowerUnits {
		if len(trimmed) >= len(u) && strings.EqualFold(trimmed[len(trimmed)-len(u):], u) {
			return strings.TrimSpace(trimmed[:len(trimmed)-len(u)]), u
		}
	}
	return trimmed, BaseLabel
}

// Parse converts a plain "<number> <unit>" string into base units.
func Parse(s string) (float64, error) {
	num, unit := Split(s)
	if num == "" {
		return 0, fmt.Errorf("missing value in power %q", s)
	}
	value, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid power %q: %w", s, err)
	}
	return ToBase(value, unit)
}

// Scale divides magnitude by UnitStep while it is at least UnitStep and returns
// the scaled value with its label. Magnitudes beyond the largest unit stay in
// that unit.
func Scale(magnitude float64) (float64, string) {
	i := 0
	for magnitude >= constants.UnitStep && i < len(PowerUnits)-1 {
		magnitude /= constants.UnitStep
		i++
	}
	return magnitude, PowerUnits[i]
}

// Format renders a base-unit magnitude as e.g. "1.500 Th/s".
func Format(magnitude float64) string {
	value, label := Scale(magnitude)
	return strconv.FormatFloat(value, 'f', constants.PowerPrecision, 64) + " " + label
}
