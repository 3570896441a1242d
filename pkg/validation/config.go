// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"strings"
)

// ConfigValidator collects non-fatal configuration warnings.
type ConfigValidator struct {
	Common    CommonConfig
	Scenarios []ScenarioConfig
}

// CommonConfig carries the evaluated shared parameters relevant to warnings.
// A nil pointer means the value could not be evaluated; errors for those are
// reported elsewhere.
type CommonConfig struct {
	RewardPerCycle *float64
	DurationDays   *int
}

// ScenarioConfig describes one configured scenario.
type ScenarioConfig struct {
	Name     string
	Active   bool
	Upgrades int
}

// ValidateScenarioNames warns about active scenarios sharing a name, which
// makes their results indistinguishable.
func ValidateScenarioNames(scenarios []ScenarioConfig) []string {
	var warnings []string
	seen := make(map[string]int)
	for _, scenario := range scenarios {
		if !scenario.Active {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(scenario.Name))
		seen[key]++
		if seen[key] == 2 {
			warnings = append(warnings, fmt.Sprintf("Scenario name '%s' is used by more than one active scenario", scenario.Name))
		}
	}
	return warnings
}

// ValidateAll validates the entire configuration and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	active := 0
	for _, scenario := range cv.Scenarios {
		if !scenario.Active {
			continue
		}
		active++
		if scenario.Upgrades == 0 {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' has no upgrades queued - production stays constant", scenario.Name))
		}
	}
	if active == 0 {
		warnings = append(warnings, "No active scenarios - nothing will be projected")
	}

	warnings = append(warnings, ValidateScenarioNames(cv.Scenarios)...)

	if r := cv.Common.RewardPerCycle; r != nil && *r == 0 {
		warnings = append(warnings, "Reward per cycle is zero - balances will never grow")
	}
	if d := cv.Common.DurationDays; d != nil && *d == 0 {
		warnings = append(warnings, "Duration is zero days - trajectories will be empty")
	}

	return warnings
}
