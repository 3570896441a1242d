// Package testutil provides fixtures and lookups shared by forecast tests.
package testutil

import (
	"testing"

	"github.com/iwvelando/roller-forecast/internal/forecast"
	"github.com/iwvelando/roller-forecast/internal/projection"
)

// Trajectory builds a trajectory with the given daily balances and zeroed
// production, bonus and reward series of the same length.
func Trajectory(balances ...float64) *projection.Trajectory {
	n := len(balances)
	return &projection.Trajectory{
		Balance:             balances,
		UnbonusedProduction: make([]float64, n),
		BonusedProduction:   make([]float64, n),
		BonusFraction:       make([]float64, n),
		RewardRate:          make([]float64, n),
	}
}

// Scenario returns the forecast named name, failing tb when no result has
// that name.
func Scenario(tb testing.TB, results []forecast.Forecast, name string) forecast.Forecast {
	tb.Helper()
	for _, result := range results {
		if result.Name == name {
			return result
		}
	}
	tb.Fatalf("no scenario named %q among %d results", name, len(results))
	return forecast.Forecast{}
}

// BalanceOn returns the balance of the named scenario at the end of day,
// failing tb when the scenario is missing, failed, or shorter than day.
func BalanceOn(tb testing.TB, results []forecast.Forecast, name string, day int) float64 {
	tb.Helper()
	result := Scenario(tb, results, name)
	if !result.OK() {
		tb.Fatalf("scenario %q has no trajectory: %v", name, result.Err)
		return 0
	}
	point, ok := result.Trajectory.Point(day)
	if !ok {
		tb.Fatalf("scenario %q has %d days, day %d requested", name, result.Trajectory.Len(), day)
		return 0
	}
	return point.Balance
}
