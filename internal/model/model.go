// Package model defines the scenario data structures shared by the projection
// engine and its callers: upgrades, scenarios with their ordered purchase queue,
// and the run parameters common to every scenario in a comparison.
package model

import (
	"errors"
	"fmt"

	"github.com/iwvelando/roller-forecast/pkg/constants"
	"github.com/iwvelando/roller-forecast/pkg/mathutil"
)

var (
	// ErrInvalidArgument marks inputs rejected before any simulation step runs.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDivisionByZero is returned when the reference rate is zero.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrIndexOutOfRange is returned by queue edits addressing a missing position.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Upgrade is one purchasable item in a scenario's queue. Production is in base
// units (Gh/s).
type Upgrade struct {
	ProductionIncrement   float64 `json:"productionIncrement" yaml:"productionIncrement"`
	BonusIncrementPercent float64 `json:"bonusIncrementPercent" yaml:"bonusIncrementPercent"`
	Price                 float64 `json:"price" yaml:"price"`
}

// Validate checks that every field is a finite, non-negative number.
func (u Upgrade) Validate() error {
	if !mathutil.IsNonNegative(u.ProductionIncrement) {
		return fmt.Errorf("%w: production increment must be non-negative, got %v", ErrInvalidArgument, u.ProductionIncrement)
	}
	if !mathutil.IsNonNegative(u.BonusIncrementPercent) {
		return fmt.Errorf("%w: bonus increment must be non-negative, got %v", ErrInvalidArgument, u.BonusIncrementPercent)
	}
	if !mathutil.IsNonNegative(u.Price) {
		return fmt.Errorf("%w: price must be non-negative, got %v", ErrInvalidArgument, u.Price)
	}
	return nil
}

// RunParameters holds the inputs shared by every scenario in one comparison.
// Production and reference rate are in base units.
type RunParameters struct {
	StartingBalance      float64 `json:"startingBalance"`
	StartingProduction   float64 `json:"startingProduction"`
	StartingBonusPercent float64 `json:"startingBonusPercent"`
	ReferenceRate        float64 `json:"referenceRate"`
	RewardPerCycle       float64 `json:"rewardPerCycle"`
	DurationDays         int     `json:"durationDays"`
}

// Validate reports the first invalid field. A zero reference rate yields
// ErrDivisionByZero, every other problem ErrInvalidArgument.
func (p RunParameters) Validate() error {
	if p.DurationDays < 0 {
		return fmt.Errorf("%w: duration must be a non-negative number of days, got %d", ErrInvalidArgument, p.DurationDays)
	}
	if p.DurationDays > constants.MaxDurationDays {
		return fmt.Errorf("%w: duration must be at most %d days, got %d", ErrInvalidArgument, constants.MaxDurationDays, p.DurationDays)
	}
	fields := []struct {
		name  string
		value float64
	}{
		{"starting balance", p.StartingBalance},
		{"starting production", p.StartingProduction},
		{"starting bonus", p.StartingBonusPercent},
		{"reference rate", p.ReferenceRate},
		{"reward per cycle", p.RewardPerCycle},
	}
	for _, f := range fields {
		if !mathutil.IsNonNegative(f.value) {
			return fmt.Errorf("%w: %s must be non-negative, got %v", ErrInvalidArgument, f.name, f.value)
		}
	}
	if p.ReferenceRate == 0 {
		return fmt.Errorf("%w: reference rate must be greater than zero", ErrDivisionByZero)
	}
	return nil
}
