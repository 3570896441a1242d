// Package datetime provides time-of-day helpers for fractional simulation days.
package datetime

import (
	"fmt"
	"math"

	"github.com/iwvelando/roller-forecast/pkg/constants"
)

// DayClock renders the fractional part of days as an HH:MM:SS clock time, e.g.
// 2.75 days yields "18:00:00". Whole days are discarded and partial seconds
// are truncated.
func DayClock(days float64) string {
	if math.IsNaN(days) || math.IsInf(days, 0) {
		return "00:00:00"
	}
	fraction := days - math.Floor(days)
	seconds := int(math.Floor(fraction * constants.SecondsPerDay))
	if seconds >= constants.SecondsPerDay {
		seconds = constants.SecondsPerDay - 1
	}
	hours := seconds / 3600
	minutes := seconds % 3600 / 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds%60)
}
