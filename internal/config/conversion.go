package config

import (
	"fmt"
	"strings"

	"github.com/iwvelando/roller-forecast/internal/model"
	"github.com/iwvelando/roller-forecast/pkg/constants"
	"github.com/iwvelando/roller-forecast/pkg/expr"
	"github.com/iwvelando/roller-forecast/pkg/mathutil"
	"github.com/iwvelando/roller-forecast/pkg/units"
)

// RunParameters evaluates the Common section into base-unit run parameters.
func (conf *Configuration) RunParameters() (model.RunParameters, error) {
	var params model.RunParameters
	var err error

	c := conf.Common
	if params.StartingBalance, err = evalNumber("Starting balance", c.StartingBalance); err != nil {
		return params, err
	}
	if params.StartingProduction, err = evalPower("Starting production", c.StartingProduction); err != nil {
		return params, err
	}
	if params.StartingBonusPercent, err = evalNumber("Starting bonus", c.StartingBonusPercent); err != nil {
		return params, err
	}
	if params.ReferenceRate, err = evalPower("Reference rate", c.ReferenceRate); err != nil {
		return params, err
	}
	if params.RewardPerCycle, err = evalNumber("Reward per cycle", c.RewardPerCycle); err != nil {
		return params, err
	}
	if params.DurationDays, err = evalDays("Duration", c.DurationDays); err != nil {
		return params, err
	}

	if err := params.Validate(); err != nil {
		return params, err
	}
	return params, nil
}

// ToModel converts the scenario into a model.Scenario with every power value
// normalised to base units. index is the scenario's zero-based position and
// is used for error messages and the default name.
func (s Scenario) ToModel(index int) (model.Scenario, error) {
	scenario := model.Scenario{Name: s.DisplayName(index)}
	for j, u := range s.Upgrades {
		where := fmt.Sprintf("of upgrade %d in scenario %d", j+1, index+1)

		production, err := evalPower("Production "+where, u.Production)
		if err != nil {
			return model.Scenario{}, err
		}
		bonus, err := evalNumber("Bonus "+where, u.BonusPercent)
		if err != nil {
			return model.Scenario{}, err
		}
		price, err := evalNumber("Price "+where, u.Price)
		if err != nil {
			return model.Scenario{}, err
		}

		upgrade := model.Upgrade{
			ProductionIncrement:   production,
			BonusIncrementPercent: bonus,
			Price:                 price,
		}
		if err := upgrade.Validate(); err != nil {
			return model.Scenario{}, fmt.Errorf("upgrade %d in scenario %d: %w", j+1, index+1, err)
		}
		scenario.Append(upgrade)
	}
	return scenario, nil
}

// DisplayName returns the configured name or "Scenario N".
func (s Scenario) DisplayName(index int) string {
	if name := strings.TrimSpace(s.Name); name != "" {
		return name
	}
	return fmt.Sprintf("Scenario %d", index+1)
}

func evalNumber(field, text string) (float64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, fmt.Errorf("%w: %s is not set", model.ErrInvalidArgument, field)
	}
	v, err := expr.Eval(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", model.ErrInvalidArgument, field, err)
	}
	return v, nil
}

func evalPower(field, text string) (float64, error) {
	num, unit := units.Split(text)
	v, err := evalNumber(field, num)
	if err != nil {
		return 0, err
	}
	base, err := units.ToBase(v, unit)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", model.ErrInvalidArgument, field, err)
	}
	return base, nil
}

func evalDays(field, text string) (int, error) {
	v, err := evalNumber(field, text)
	if err != nil {
		return 0, err
	}
	if !mathutil.IsWhole(v) || v < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative whole number of days, got %v", model.ErrInvalidArgument, field, v)
	}
	if v > constants.MaxDurationDays {
		return 0, fmt.Errorf("%w: %s must be at most %d days, got %v", model.ErrInvalidArgument, field, constants.MaxDurationDays, v)
	}
	return int(v), nil
}
