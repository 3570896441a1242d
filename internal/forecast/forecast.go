// Package forecast runs the projection engine over every scenario of a
// comparison and collects the resulting trajectories.
package forecast

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"github.com/iwvelando/roller-forecast/internal/config"
	"github.com/iwvelando/roller-forecast/internal/model"
	"github.com/iwvelando/roller-forecast/internal/projection"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Forecast holds all information related to a specific scenario's projection.
// Exactly one of Trajectory and Err is set.
type Forecast struct {
	Index      int
	Name       string
	Upgrades   int // queued upgrades
	Trajectory *projection.Trajectory
	Err        error
}

// OK reports whether the scenario was projected successfully.
func (f Forecast) OK() bool {
	return f.Err == nil && f.Trajectory != nil
}

// ScenarioError attributes a projection failure to its scenario.
type ScenarioError struct {
	Index int
	Name  string
	Err   error
}

func (e *ScenarioError) Error() string {
	return fmt.Sprintf("scenario %d (%s): %v", e.Index+1, e.Name, e.Err)
}

func (e *ScenarioError) Unwrap() error {
	return e.Err
}

// Compare projects every scenario against the shared params. Scenarios run
// concurrently on private snapshots; results keep the input order. A failing
// scenario does not affect the others: its Forecast carries the error, and all
// failures are also combined into the returned error.
func Compare(ctx context.Context, logger *zap.Logger, params model.RunParameters, scenarios []model.Scenario) ([]Forecast, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	engine := projection.NewEngine(logger)
	results := make([]Forecast, len(scenarios))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range scenarios {
		i := i
		snapshot := scenarios[i].Snapshot()
		g.Go(func() error {
			traj, err := engine.Project(gctx, params, snapshot)
			results[i] = Forecast{Index: i, Name: snapshot.Name, Upgrades: snapshot.Len(), Trajectory: traj}
			if err != nil {
				results[i].Trajectory = nil
				results[i].Err = &ScenarioError{Index: i, Name: snapshot.Name, Err: err}
			}
			// Scenario failures are independent; never cancel siblings.
			return nil
		})
	}
	_ = g.Wait()

	var errs error
	for _, result := range results {
		if result.Err != nil {
			logger.Warn("scenario projection failed",
				zap.String("op", "forecast.Compare"),
				zap.String("scenario", result.Name),
				zap.Error(result.Err),
			)
			errs = multierr.Append(errs, result.Err)
		}
	}

	return results, errs
}

// GetForecast processes the Forecasts for all active Scenarios of conf.
// Configuration errors in the shared parameters abort the whole run; errors in
// a single scenario are reported on that scenario only.
func GetForecast(ctx context.Context, logger *zap.Logger, conf config.Configuration) ([]Forecast, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	params, err := conf.RunParameters()
	if err != nil {
		return nil, fmt.Errorf("invalid run parameters: %w", err)
	}

	var (
		scenarios []model.Scenario
		indexes   []int
		results   []Forecast
		errs      error
	)
	for i, scenario := range conf.Scenarios {
		if !scenario.Active {
			logger.Debug(fmt.Sprintf("skipping scenario %s because it is inactive", scenario.DisplayName(i)),
				zap.String("op", "forecast.GetForecast"),
			)
			continue
		}
		converted, err := scenario.ToModel(i)
		if err != nil {
			scenarioErr := &ScenarioError{Index: i, Name: scenario.DisplayName(i), Err: err}
			results = append(results, Forecast{Index: i, Name: scenario.DisplayName(i), Upgrades: len(scenario.Upgrades), Err: scenarioErr})
			errs = multierr.Append(errs, scenarioErr)
			continue
		}
		scenarios = append(scenarios, converted)
		indexes = append(indexes, i)
	}

	projected, projectErr := Compare(ctx, logger, params, scenarios)
	errs = multierr.Append(errs, projectErr)
	for j := range projected {
		// Report positions in the configuration, not in the filtered list.
		projected[j].Index = indexes[j]
		if se, ok := projected[j].Err.(*ScenarioError); ok {
			se.Index = indexes[j]
		}
	}
	results = append(results, projected...)
	sort.SliceStable(results, func(a, b int) bool { return results[a].Index < results[b].Index })

	logger.Info("forecast computed",
		zap.String("op", "forecast.GetForecast"),
		zap.Int("scenarios", len(results)),
		zap.Int("days", params.DurationDays),
	)

	return results, errs
}
