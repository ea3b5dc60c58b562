// Package ensemble produces multi-model revenue forecasts: OLS on a
// predictor path, Holt exponential smoothing, and an autoregression on first
// differences, combined by configurable weights. A model that cannot be
// fitted on the available history is reported as failed rather than silently
// dropped.
package ensemble

import (
	"fmt"
	"sort"

	"github.com/bapenda-labs/pad-forecast/pkg/constants"
	"github.com/bapenda-labs/pad-forecast/pkg/dataset"
	"github.com/bapenda-labs/pad-forecast/pkg/mathutil"
	"github.com/bapenda-labs/pad-forecast/pkg/trend"
	"go.uber.org/zap"
)

// Model names as reported in results and configuration.
const (
	ModelOLS          = "ols"
	ModelARIMA        = "arima"
	ModelExpSmoothing = "exp_smoothing"
	ModelEnsemble     = "ensemble"
)

// Forecast is one model's point forecasts with lower/upper bounds, one entry
// per step ahead.
type Forecast struct {
	Model  string    `json:"model"`
	Values []float64 `json:"values"`
	Lower  []float64 `json:"lower"`
	Upper  []float64 `json:"upper"`
}

// Weights assigns relative importance to each model when combining. Weights
// are renormalized over the models that actually succeeded.
type Weights struct {
	OLS          float64
	ARIMA        float64
	ExpSmoothing float64
}

// Result carries every attempted model's forecast or failure, plus the
// weighted ensemble over the successes.
type Result struct {
	Forecasts []Forecast        `json:"forecasts"`
	Failures  map[string]string `json:"failures,omitempty"`
	Ensemble  Forecast          `json:"ensemble"`
}

// OLSForecast fits response ~ predictor and evaluates the fitted line at each
// value of the predictor path, with confidence bounds at the given alpha.
func OLSForecast(series *dataset.HistoricalSeries, response, predictor string, predictorPath []float64, alpha float64) (Forecast, error) {
	model, err := trend.FitResponse(series, response, predictor)
	if err != nil {
		return Forecast{}, err
	}

	f := Forecast{
		Model:  ModelOLS,
		Values: make([]float64, 0, len(predictorPath)),
		Lower:  make([]float64, 0, len(predictorPath)),
		Upper:  make([]float64, 0, len(predictorPath)),
	}
	for _, x := range predictorPath {
		lower, upper := model.ConfidenceInterval(x, alpha)
		f.Values = append(f.Values, model.Predict(x))
		f.Lower = append(f.Lower, lower)
		f.Upper = append(f.Upper, upper)
	}
	return f, nil
}

// MedianGrowthPath projects a predictor forward by applying its median
// historical year-over-year growth compound-wise from the last observed
// value. Degenerate histories fall back to the default growth rate.
func MedianGrowthPath(series *dataset.HistoricalSeries, variable string, steps int) ([]float64, error) {
	values, err := series.Column(variable)
	if err != nil {
		return nil, err
	}

	growth := constants.DefaultGrowthRate
	if changes := mathutil.PercentChanges(values); len(changes) > 0 {
		growth = median(changes)
	}

	last := values[len(values)-1]
	path := make([]float64, 0, steps)
	value := last
	for i := 0; i < steps; i++ {
		value *= 1 + growth
		path = append(path, value)
	}
	return path, nil
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// Run attempts all three models and combines the successes by weight. The
// predictor path length sets the number of forecast steps.
func Run(logger *zap.Logger, series *dataset.HistoricalSeries, response, predictor string, predictorPath []float64, weights Weights) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	steps := len(predictorPath)
	if steps == 0 {
		return nil, fmt.Errorf("predictor path is empty")
	}

	result := &Result{Failures: make(map[string]string)}
	weightByModel := make(map[string]float64)

	if f, err := OLSForecast(series, response, predictor, predictorPath, 0.05); err != nil {
		logger.Warn("OLS forecast failed",
			zap.String("op", "ensemble.Run"),
			zap.String("response", response),
			zap.Error(err),
		)
		result.Failures[ModelOLS] = err.Error()
	} else {
		result.Forecasts = append(result.Forecasts, f)
		weightByModel[ModelOLS] = weights.OLS
	}

	if f, err := ARForecast(series, response, steps); err != nil {
		logger.Warn("autoregressive forecast failed",
			zap.String("op", "ensemble.Run"),
			zap.String("response", response),
			zap.Error(err),
		)
		result.Failures[ModelARIMA] = err.Error()
	} else {
		result.Forecasts = append(result.Forecasts, f)
		weightByModel[ModelARIMA] = weights.ARIMA
	}

	if f, err := HoltForecast(series, response, steps); err != nil {
		logger.Warn("exponential smoothing forecast failed",
			zap.String("op", "ensemble.Run"),
			zap.String("response", response),
			zap.Error(err),
		)
		result.Failures[ModelExpSmoothing] = err.Error()
	} else {
		result.Forecasts = append(result.Forecasts, f)
		weightByModel[ModelExpSmoothing] = weights.ExpSmoothing
	}

	if len(result.Forecasts) == 0 {
		return nil, fmt.Errorf("no forecast model could be fitted on %q", response)
	}

	var totalWeight float64
	for _, f := range result.Forecasts {
		totalWeight += weightByModel[f.Model]
	}

	ensemble := Forecast{
		Model:  ModelEnsemble,
		Values: make([]float64, steps),
		Lower:  make([]float64, steps),
		Upper:  make([]float64, steps),
	}
	for _, f := range result.Forecasts {
		// Equal weights when the configured weights sum to zero across
		// the surviving models.
		w := mathutil.SafeDiv(weightByModel[f.Model], totalWeight)
		if totalWeight == 0 {
			w = 1.0 / float64(len(result.Forecasts))
		}
		for i := 0; i < steps; i++ {
			ensemble.Values[i] += w * f.Values[i]
			ensemble.Lower[i] += w * f.Lower[i]
			ensemble.Upper[i] += w * f.Upper[i]
		}
	}
	result.Ensemble = ensemble

	return result, nil
}
