package output

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/roller-forecast/internal/forecast"
	"github.com/iwvelando/roller-forecast/pkg/constants"
	"github.com/iwvelando/roller-forecast/pkg/datetime"
	"github.com/iwvelando/roller-forecast/pkg/format"
)

// Annotation describes the state of a scenario at position x on the day axis,
// where the integer part selects the day and the fraction the time of day.
// It returns an error when x falls outside the trajectory.
func Annotation(result forecast.Forecast, x float64) (string, error) {
	if !result.OK() {
		return "", fmt.Errorf("scenario %s has no trajectory", result.Name)
	}
	if math.IsNaN(x) || x < 0 {
		return "", fmt.Errorf("position %v is outside the trajectory", x)
	}
	day := int(x)
	point, ok := result.Trajectory.Point(day)
	if !ok {
		return "", fmt.Errorf("day %d is outside the trajectory of %d days", day, result.Trajectory.Len())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Scenario: %d\n", result.Index+1)
	fmt.Fprintf(&b, "Day: %d\n", day)
	fmt.Fprintf(&b, "Time: %s\n", datetime.DayClock(x))
	fmt.Fprintf(&b, "Balance: %s %s\n", format.Fixed(point.Balance, constants.BalancePrecision), constants.ResourceLabel)
	fmt.Fprintf(&b, "Power (Without Bonus): %s\n", format.Power(point.UnbonusedProduction))
	fmt.Fprintf(&b, "Power (With Bonus): %s\n", format.Power(point.BonusedProduction))
	fmt.Fprintf(&b, "Bonus Percentage: %s\n", format.Percent(point.BonusFraction))
	fmt.Fprintf(&b, "Reward (Per 10 mins): %s %s", format.Reward(point.RewardRate), constants.ResourceLabel)
	return b.String(), nil
}
