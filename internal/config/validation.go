package config

import (
	"github.com/iwvelando/roller-forecast/pkg/validation"
)

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (conf *Configuration) ValidateConfiguration() []string {
	var common validation.CommonConfig
	if reward, err := evalNumber("Reward per cycle", conf.Common.RewardPerCycle); err == nil {
		common.RewardPerCycle = &reward
	}
	if days, err := evalDays("Duration", conf.Common.DurationDays); err == nil {
		common.DurationDays = &days
	}

	scenarios := make([]validation.ScenarioConfig, 0, len(conf.Scenarios))
	for i, scenario := range conf.Scenarios {
		scenarios = append(scenarios, validation.ScenarioConfig{
			Name:     scenario.DisplayName(i),
			Active:   scenario.Active,
			Upgrades: len(scenario.Upgrades),
		})
	}

	validator := validation.ConfigValidator{Common: common, Scenarios: scenarios}
	return validator.ValidateAll()
}
