// Package projection simulates a scenario day by day: each day the next queued
// upgrade is bought if affordable, then rewards accrue from the bonused
// production relative to the reference rate.
package projection

import (
	"context"
	"fmt"

	"github.com/iwvelando/roller-forecast/internal/model"
	"github.com/iwvelando/roller-forecast/pkg/constants"
	"github.com/iwvelando/roller-forecast/pkg/mathutil"
	"go.uber.org/zap"
)

// CyclesPerDay is the number of reward cycles accrued per simulated day.
const CyclesPerDay = constants.CyclesPerDay

// Engine runs projections. It holds no per-run state and is safe for
// concurrent use.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a new engine with the given logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Project simulates scenario over params.DurationDays days. Inputs are
// validated before the first step; on error no trajectory is returned.
// At most one upgrade is bought per day, strictly in queue order.
func (e *Engine) Project(ctx context.Context, params model.RunParameters, scenario model.Scenario) (*Trajectory, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	queue := scenario.Upgrades
	balance := params.StartingBalance
	unbonused := params.StartingProduction
	bonus := mathutil.PercentToFraction(params.StartingBonusPercent)
	next := 0

	result := newTrajectory(params.DurationDays)
	for day := 0; day < params.DurationDays; day++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("projection of %q cancelled at day %d: %w", scenario.Name, day, err)
		}

		if next < len(queue) && balance >= queue[next].Price {
			u := queue[next]
			balance -= u.Price
			unbonused += u.ProductionIncrement
			bonus += mathutil.PercentToFraction(u.BonusIncrementPercent)
			result.Purchases = append(result.Purchases, Purchase{Day: day, Index: next, Price: u.Price})
			e.logger.Debug("upgrade purchased",
				zap.String("op", "projection.Project"),
				zap.String("scenario", scenario.Name),
				zap.Int("day", day),
				zap.Int("upgrade", next),
				zap.Float64("price", u.Price),
			)
			next++
		}

		bonused := unbonused * (1 + bonus)
		reward := bonused / params.ReferenceRate * params.RewardPerCycle
		balance += reward * CyclesPerDay

		result.append(balance, unbonused, bonused, bonus, reward)
	}

	return result, nil
}
