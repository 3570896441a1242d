// Package recorder keeps an optional history of forecast runs.
package recorder

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/roller-forecast/internal/analysis"
	"github.com/iwvelando/roller-forecast/internal/forecast"
)

// Run is one forecast invocation and the summaries it produced.
type Run struct {
	ID        uuid.UUID
	StartedAt time.Time
	Source    string // "cli" or "api"
	Days      int
	Summaries []analysis.Summary
	Errors    []ScenarioFailure
}

// ScenarioFailure is a scenario that could not be projected.
type ScenarioFailure struct {
	Name    string
	Message string
}

// NewRun returns a Run with a fresh identifier.
func NewRun(source string, days int) *Run {
	return &Run{
		ID:        uuid.New(),
		StartedAt: time.Now().UTC(),
		Source:    source,
		Days:      days,
	}
}

// AddResults summarizes each forecast into the run.
func (r *Run) AddResults(results []forecast.Forecast) {
	for _, result := range results {
		if !result.OK() {
			r.Errors = append(r.Errors, ScenarioFailure{Name: result.Name, Message: result.Err.Error()})
			continue
		}
		r.Summaries = append(r.Summaries, analysis.Summarize(result.Name, result.Trajectory, result.Upgrades))
	}
}

// Recorder persists forecast runs for later comparison.
type Recorder interface {
	RecordRun(ctx context.Context, run *Run) error
	Close() error
}
