// Package constants provides shared constants for the pad-forecast application.
package constants

// Statistical defaults
const (
	// DefaultVariationFraction is the perturbation applied to each predictor
	// during sensitivity analysis (0.10 = ±10%)
	DefaultVariationFraction = 0.10

	// DefaultSignificanceLevel is the alpha used for regression confidence
	// intervals (0.32 yields a 68% interval, one standard error equivalent)
	DefaultSignificanceLevel = 0.32

	// DefaultNumStdDev is the number of standard deviations applied in
	// volatility-based scenario bounds
	DefaultNumStdDev = 1.0

	// LowerPercentile and UpperPercentile bracket historical growth rates
	// for percentile-based scenario bounds (16th/84th ≈ ±1σ for normal data)
	LowerPercentile = 0.16
	UpperPercentile = 0.84

	// DefaultGrowthRate is the fallback year-over-year growth rate when a
	// series is too short or degenerate to estimate one
	DefaultGrowthRate = 0.05

	// DefaultProjectionYears is the number of chained projection years
	DefaultProjectionYears = 2

	// DefaultForecastCoverage is the z-value used for ensemble model bounds
	// (1.96 ≈ 95% coverage)
	DefaultForecastCoverage = 1.96
)

// Currency constants
const (
	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultHistoricalFile is the default historical dataset file name
	DefaultHistoricalFile = "datasets/pad_historis.csv"

	// DefaultPKBInputsFile is the default PKB structural inputs file name
	DefaultPKBInputsFile = "datasets/pkb_inputs.csv"

	// DefaultBBNKBInputsFile is the default BBNKB structural inputs file name
	DefaultBBNKBInputsFile = "datasets/bbnkb_inputs.csv"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodyBytes is the default maximum request body size (256 KB)
	DefaultMaxBodyBytes int64 = 256 * 1024
)

// Default model ensemble weights
const (
	DefaultOLSWeight          = 0.50
	DefaultARIMAWeight        = 0.25
	DefaultExpSmoothingWeight = 0.25
)

// Default model validation thresholds
const (
	DefaultMinR2   = 0.5
	DefaultMaxMAPE = 15.0
	DefaultMaxRMSE = 500e9

	// DefaultBacktestYears is the number of trailing years the backtest
	// validation method holds out
	DefaultBacktestYears = 2
)
