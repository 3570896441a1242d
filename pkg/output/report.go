// Package output provides utilities for formatting and displaying forecast results.
package output

import (
	"github.com/iwvelando/roller-forecast/internal/analysis"
	"github.com/iwvelando/roller-forecast/internal/forecast"
	"github.com/iwvelando/roller-forecast/internal/projection"
)

// Report is the serialisable view of a comparison.
type Report struct {
	Scenarios  []ScenarioReport     `json:"scenarios"`
	Crossovers []analysis.Crossover `json:"crossovers,omitempty"`
}

// ScenarioReport is one scenario's entry in a Report.
type ScenarioReport struct {
	Index      int                    `json:"index"`
	Name       string                 `json:"name"`
	Error      string                 `json:"error,omitempty"`
	Summary    analysis.Summary       `json:"summary"`
	Trajectory *projection.Trajectory `json:"trajectory,omitempty"`
}

// BuildReport assembles a Report from forecast results.
func BuildReport(results []forecast.Forecast) Report {
	report := Report{Scenarios: make([]ScenarioReport, 0, len(results))}
	for _, result := range results {
		entry := ScenarioReport{
			Index:      result.Index,
			Name:       result.Name,
			Summary:    analysis.Summarize(result.Name, result.Trajectory, result.Upgrades),
			Trajectory: result.Trajectory,
		}
		if result.Err != nil {
			entry.Error = result.Err.Error()
		}
		report.Scenarios = append(report.Scenarios, entry)
	}
	report.Crossovers = analysis.Crossovers(results)
	return report
}
