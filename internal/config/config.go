// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"strings"

	"github.com/bapenda-labs/pad-forecast/pkg/constants"
	"github.com/bapenda-labs/pad-forecast/pkg/decomposition"
	"github.com/bapenda-labs/pad-forecast/pkg/scenario"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for pad-forecast.
type Configuration struct {
	Logging    LoggingConfig    `yaml:"logging,omitempty"`
	Output     OutputConfig     `yaml:"output,omitempty"`
	Server     ServerConfig     `yaml:"server,omitempty"`
	Datasets   DatasetsConfig   `yaml:"datasets,omitempty"`
	Projection ProjectionConfig `yaml:"projection,omitempty"`
	Targets    []TargetConfig   `yaml:"targets,omitempty"`
	Scenario   ScenarioConfig   `yaml:"scenario,omitempty"`
	Weights    WeightsConfig    `yaml:"weights,omitempty"`
	Validation ValidationConfig `yaml:"validation,omitempty"`
	Audit      AuditConfig      `yaml:"audit,omitempty"`
}

// LoggingConfig holds logging configuration options.
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options.
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// ServerConfig holds the HTTP API listener options.
type ServerConfig struct {
	Address      string `yaml:"address,omitempty"`
	MaxBodyBytes int64  `yaml:"maxBodyBytes,omitempty"`
}

// DatasetsConfig points at the CSV inputs.
type DatasetsConfig struct {
	Historical  string `yaml:"historical,omitempty"`
	PKBInputs   string `yaml:"pkbInputs,omitempty"`
	BBNKBInputs string `yaml:"bbnkbInputs,omitempty"`
}

// ProjectionConfig controls the projection horizon and the sensitivity
// perturbation size.
type ProjectionConfig struct {
	StartYear int     `yaml:"startYear,omitempty"` // 0 means the year after the last historical one
	Years     int     `yaml:"years,omitempty"`
	Variation float64 `yaml:"variation,omitempty"` // fraction, e.g. 0.10
}

// TargetConfig is one officially adopted revenue target.
type TargetConfig struct {
	Stream string  `yaml:"stream"`
	Year   int     `yaml:"year"`
	Amount float64 `yaml:"amount"`
}

// ScenarioConfig selects the bound combination mode and its parameters.
type ScenarioConfig struct {
	Mode            string  `yaml:"mode,omitempty"` // average, conservative, aggressive
	NumStdDev       float64 `yaml:"numStdDev,omitempty"`
	Alpha           float64 `yaml:"alpha,omitempty"`
	LowerPercentile float64 `yaml:"lowerPercentile,omitempty"`
	UpperPercentile float64 `yaml:"upperPercentile,omitempty"`
}

// WeightsConfig assigns ensemble model weights.
type WeightsConfig struct {
	OLS          float64 `yaml:"ols,omitempty"`
	ARIMA        float64 `yaml:"arima,omitempty"`
	ExpSmoothing float64 `yaml:"expSmoothing,omitempty"`
}

// ValidationConfig sets the model-quality thresholds that trigger warnings.
type ValidationConfig struct {
	MinR2   float64 `yaml:"minR2,omitempty"`
	MaxMAPE float64 `yaml:"maxMape,omitempty"`
	MaxRMSE float64 `yaml:"maxRmse,omitempty"`
}

// AuditConfig controls the JSON-lines audit trail.
type AuditConfig struct {
	Path  string `yaml:"path,omitempty"`
	Actor string `yaml:"actor,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Defaults are applied for anything left unset.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()

	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.ApplyDefaults()
	return &configuration, nil
}

// ApplyDefaults fills every unset option with its default value.
func (c *Configuration) ApplyDefaults() {
	if c.Output.Format == "" {
		c.Output.Format = constants.OutputFormatPretty
	}
	if c.Server.Address == "" {
		c.Server.Address = constants.DefaultServerAddress
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = constants.DefaultMaxBodyBytes
	}
	if c.Datasets.Historical == "" {
		c.Datasets.Historical = constants.DefaultHistoricalFile
	}
	if c.Datasets.PKBInputs == "" {
		c.Datasets.PKBInputs = constants.DefaultPKBInputsFile
	}
	if c.Datasets.BBNKBInputs == "" {
		c.Datasets.BBNKBInputs = constants.DefaultBBNKBInputsFile
	}
	if c.Projection.Years == 0 {
		c.Projection.Years = constants.DefaultProjectionYears
	}
	if c.Projection.Variation == 0 {
		c.Projection.Variation = constants.DefaultVariationFraction
	}
	if c.Scenario.Mode == "" {
		c.Scenario.Mode = string(scenario.ModeAverage)
	}
	if c.Scenario.NumStdDev == 0 {
		c.Scenario.NumStdDev = constants.DefaultNumStdDev
	}
	if c.Scenario.Alpha == 0 {
		c.Scenario.Alpha = constants.DefaultSignificanceLevel
	}
	if c.Scenario.LowerPercentile == 0 {
		c.Scenario.LowerPercentile = constants.LowerPercentile
	}
	if c.Scenario.UpperPercentile == 0 {
		c.Scenario.UpperPercentile = constants.UpperPercentile
	}
	if c.Weights.OLS == 0 && c.Weights.ARIMA == 0 && c.Weights.ExpSmoothing == 0 {
		c.Weights.OLS = constants.DefaultOLSWeight
		c.Weights.ARIMA = constants.DefaultARIMAWeight
		c.Weights.ExpSmoothing = constants.DefaultExpSmoothingWeight
	}
	if c.Validation.MinR2 == 0 {
		c.Validation.MinR2 = constants.DefaultMinR2
	}
	if c.Validation.MaxMAPE == 0 {
		c.Validation.MaxMAPE = constants.DefaultMaxMAPE
	}
	if c.Validation.MaxRMSE == 0 {
		c.Validation.MaxRMSE = constants.DefaultMaxRMSE
	}
	if c.Audit.Actor == "" {
		c.Audit.Actor = "system"
	}
}

// ScenarioParams maps the scenario section onto the bound method parameters.
func (c *Configuration) ScenarioParams() scenario.Params {
	return scenario.Params{
		NumStdDev:       c.Scenario.NumStdDev,
		Alpha:           c.Scenario.Alpha,
		LowerPercentile: c.Scenario.LowerPercentile,
		UpperPercentile: c.Scenario.UpperPercentile,
	}
}

// Target returns the configured target amount for a stream and year, or zero
// when none is configured.
func (c *Configuration) Target(stream string, year int) (float64, bool) {
	for _, t := range c.Targets {
		if strings.EqualFold(t.Stream, stream) && t.Year == year {
			return t.Amount, true
		}
	}
	return 0, false
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	switch c.Output.Format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV:
	default:
		warnings = append(warnings, fmt.Sprintf("unknown output format %q, expected %q or %q",
			c.Output.Format, constants.OutputFormatPretty, constants.OutputFormatCSV))
	}

	switch scenario.Mode(c.Scenario.Mode) {
	case scenario.ModeAverage, scenario.ModeConservative, scenario.ModeAggressive:
	default:
		warnings = append(warnings, fmt.Sprintf("unknown scenario mode %q", c.Scenario.Mode))
	}
	if c.Scenario.Alpha <= 0 || c.Scenario.Alpha >= 1 {
		warnings = append(warnings, fmt.Sprintf("scenario alpha %v outside (0, 1)", c.Scenario.Alpha))
	}
	if c.Scenario.LowerPercentile >= c.Scenario.UpperPercentile {
		warnings = append(warnings, fmt.Sprintf("lower percentile %v not below upper percentile %v",
			c.Scenario.LowerPercentile, c.Scenario.UpperPercentile))
	}
	if c.Scenario.NumStdDev <= 0 {
		warnings = append(warnings, fmt.Sprintf("scenario numStdDev %v must be positive", c.Scenario.NumStdDev))
	}

	if c.Projection.Years <= 0 {
		warnings = append(warnings, fmt.Sprintf("projection years %d must be positive", c.Projection.Years))
	}
	if c.Projection.Variation <= 0 || c.Projection.Variation >= 1 {
		warnings = append(warnings, fmt.Sprintf("sensitivity variation %v outside (0, 1)", c.Projection.Variation))
	}

	if c.Weights.OLS < 0 || c.Weights.ARIMA < 0 || c.Weights.ExpSmoothing < 0 {
		warnings = append(warnings, "ensemble weights must not be negative")
	}
	if c.Weights.OLS+c.Weights.ARIMA+c.Weights.ExpSmoothing <= 0 {
		warnings = append(warnings, "ensemble weights sum to zero")
	}

	seen := make(map[string]bool)
	for _, t := range c.Targets {
		stream := strings.ToUpper(t.Stream)
		if stream != decomposition.StreamPKB && stream != decomposition.StreamBBNKB {
			warnings = append(warnings, fmt.Sprintf("target references unknown stream %q", t.Stream))
		}
		if t.Year <= 0 {
			warnings = append(warnings, fmt.Sprintf("target for %q has invalid year %d", t.Stream, t.Year))
		}
		if t.Amount <= 0 {
			warnings = append(warnings, fmt.Sprintf("target for %q year %d has non-positive amount %v",
				t.Stream, t.Year, t.Amount))
		}
		key := fmt.Sprintf("%s:%d", stream, t.Year)
		if seen[key] {
			warnings = append(warnings, fmt.Sprintf("duplicate target for %q year %d", t.Stream, t.Year))
		}
		seen[key] = true
	}

	return warnings
}
