// Package constants provides shared constants for the roller-forecast application.
package constants

// Reward cycle constants
const (
	// CyclesPerHour is the number of ten-minute reward cycles in one hour.
	CyclesPerHour = 6

	// HoursPerDay is the number of hours in one simulated day.
	HoursPerDay = 24

	// CyclesPerDay is the number of reward cycles accrued in one simulated day.
	CyclesPerDay = CyclesPerHour * HoursPerDay

	// SecondsPerDay is used to render fractional days as a clock time.
	SecondsPerDay = HoursPerDay * 3600

	// MaxDurationDays bounds a projection to one hundred years of days.
	MaxDurationDays = 100 * 365
)

// ResourceLabel is the name of the accumulated resource in reports.
const ResourceLabel = "RLT"

// Numeric constants
const (
	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// UnitStep is the factor between two consecutive power units.
	UnitStep = 1000.0

	// BalancePrecision is the number of decimals shown for balances.
	BalancePrecision = 4

	// RewardPrecision is the number of decimals shown for per-cycle rewards.
	RewardPrecision = 6

	// PowerPrecision is the number of decimals shown for scaled power values.
	PowerPrecision = 3
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML configs (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)
