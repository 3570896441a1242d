// Package config defines the data structures related to configuration and
// includes functions for loading the config and converting it into the
// scenario model used by the projection engine.
package config

import (
	"fmt"
	"io"

	"github.com/spf13/viper"
)

// Configuration holds all configuration for roller-forecast.
type Configuration struct {
	Common    Common
	Scenarios []Scenario
	Logging   LoggingConfig  `yaml:"logging,omitempty"`
	Output    OutputConfig   `yaml:"output,omitempty"`
	Recorder  RecorderConfig `yaml:"recorder,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// RecorderConfig enables the optional run history database.
type RecorderConfig struct {
	SQLitePath string `yaml:"sqlitePath,omitempty" mapstructure:"sqlitePath"`
}

// Common holds the run parameters shared between all scenarios. Every value is
// an arithmetic expression; power values may carry a unit suffix such as
// "1.5 Th/s" and default to Gh/s.
type Common struct {
	StartingBalance      string `yaml:"startingBalance"`
	StartingProduction   string `yaml:"startingProduction"`
	StartingBonusPercent string `yaml:"startingBonusPercent"`
	ReferenceRate        string `yaml:"referenceRate"`
	RewardPerCycle       string `yaml:"rewardPerCycle"`
	DurationDays         string `yaml:"durationDays"`
}

// Scenario holds the ordered upgrade queue for a given scenario.
type Scenario struct {
	Name     string    `yaml:"name,omitempty"`
	Active   bool      `yaml:"active"`
	Upgrades []Upgrade `yaml:"upgrades,omitempty"`
}

// Upgrade is one queued purchase as entered by the user.
type Upgrade struct {
	Production   string `yaml:"production"`
	BonusPercent string `yaml:"bonusPercent"`
	Price        string `yaml:"price"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()

	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	err := v.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}
