// Package analysis derives comparison metrics from projected trajectories.
package analysis

import (
	"github.com/iwvelando/roller-forecast/internal/forecast"
	"github.com/iwvelando/roller-forecast/internal/projection"
	"github.com/iwvelando/roller-forecast/pkg/mathutil"
)

// Summary condenses one scenario's trajectory.
type Summary struct {
	Name              string  `json:"name"`
	Days              int     `json:"days"`
	FinalBalance      float64 `json:"finalBalance"`
	FinalProduction   float64 `json:"finalProduction"`
	FinalBonused      float64 `json:"finalBonusedProduction"`
	FinalBonusPercent float64 `json:"finalBonusPercent"`
	FinalRewardRate   float64 `json:"finalRewardRate"`
	UpgradesBought    int     `json:"upgradesBought"`
	UpgradesPending   int     `json:"upgradesPending"`
	Spent             float64 `json:"spent"`
	LastPurchaseDay   int     `json:"lastPurchaseDay"` // -1 when nothing was bought
}

// Summarize builds the Summary of traj. queueLen is the number of upgrades the
// scenario had queued.
func Summarize(name string, traj *projection.Trajectory, queueLen int) Summary {
	s := Summary{Name: name, LastPurchaseDay: -1}
	if traj == nil {
		s.UpgradesPending = queueLen
		return s
	}

	s.Days = traj.Len()
	if final, ok := traj.Final(); ok {
		s.FinalBalance = final.Balance
		s.FinalProduction = final.UnbonusedProduction
		s.FinalBonused = final.BonusedProduction
		s.FinalBonusPercent = mathutil.FractionToPercent(final.BonusFraction)
		s.FinalRewardRate = final.RewardRate
	}
	s.UpgradesBought = len(traj.Purchases)
	s.UpgradesPending = queueLen - s.UpgradesBought
	for _, p := range traj.Purchases {
		s.Spent += p.Price
		s.LastPurchaseDay = p.Day
	}
	return s
}

// Crossover marks the first day on which Challenger's balance rises above
// Leader's, Leader being ahead (or level) on day 0.
type Crossover struct {
	Leader     string `json:"leader"`
	Challenger string `json:"challenger"`
	Day        int    `json:"day"`
}

// FindCrossover returns the first day on which b overtakes a, given a starts
// at least level with b. It returns false when b never overtakes a or when a
// is already behind on day 0.
func FindCrossover(a, b *projection.Trajectory) (int, bool) {
	if a == nil || b == nil {
		return 0, false
	}
	n := a.Len()
	if b.Len() < n {
		n = b.Len()
	}
	if n == 0 || b.Balance[0] > a.Balance[0] {
		return 0, false
	}
	for d := 1; d < n; d++ {
		if b.Balance[d] > a.Balance[d] {
			return d, true
		}
	}
	return 0, false
}

// Crossovers lists, for every ordered pair of successful forecasts, the day the
// trailing scenario first overtakes the one ahead on day 0. Pairs that start
// level are checked in both directions.
func Crossovers(results []forecast.Forecast) []Crossover {
	var out []Crossover
	for i := range results {
		for j := range results {
			if i == j || !results[i].OK() || !results[j].OK() {
				continue
			}
			a, b := results[i].Trajectory, results[j].Trajectory
			if a.Len() == 0 || b.Len() == 0 {
				continue
			}
			if day, ok := FindCrossover(a, b); ok {
				out = append(out, Crossover{Leader: results[i].Name, Challenger: results[j].Name, Day: day})
			}
		}
	}
	return out
}
