// Package modelcheck provides model validation utilities: error metrics,
// leave-one-out cross validation, and acceptance thresholds.
package modelcheck

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Metrics is the standard set of fit-quality measures.
type Metrics struct {
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
	MAPE float64 `json:"mape"`
	R2   float64 `json:"r2"`
}

// RMSE returns the root mean squared error between actual and predicted.
func RMSE(actual, predicted []float64) float64 {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return 0
	}
	var sum float64
	for i := range actual {
		diff := actual[i] - predicted[i]
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(actual)))
}

// MAE returns the mean absolute error between actual and predicted.
func MAE(actual, predicted []float64) float64 {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return 0
	}
	var sum float64
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(len(actual))
}

// MAPE returns the mean absolute percentage error. Observations with a zero
// actual value are masked out of the mean; all-zero actuals yield 0.
func MAPE(actual, predicted []float64) float64 {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return 0
	}
	var sum float64
	var n int
	for i := range actual {
		if actual[i] == 0 {
			continue
		}
		sum += math.Abs((actual[i] - predicted[i]) / actual[i])
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n) * 100
}

// R2 returns the coefficient of determination of predicted against actual.
func R2(actual, predicted []float64) float64 {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return 0
	}
	return stat.RSquaredFrom(predicted, actual, nil)
}

// AllMetrics computes every metric in one pass over the pair of series.
func AllMetrics(actual, predicted []float64) Metrics {
	return Metrics{
		RMSE: RMSE(actual, predicted),
		MAE:  MAE(actual, predicted),
		MAPE: MAPE(actual, predicted),
		R2:   R2(actual, predicted),
	}
}

// Thresholds holds acceptance limits for model quality.
type Thresholds struct {
	MinR2   float64
	MaxMAPE float64
	MaxRMSE float64
}

// Evaluate compares the metrics against the thresholds and returns one
// warning per violated limit. An empty slice means the model passes.
func (m Metrics) Evaluate(t Thresholds) []string {
	var warnings []string
	if m.R2 < t.MinR2 {
		warnings = append(warnings, fmt.Sprintf("R2 %.3f below minimum %.3f", m.R2, t.MinR2))
	}
	if m.MAPE > t.MaxMAPE {
		warnings = append(warnings, fmt.Sprintf("MAPE %.1f%% above maximum %.1f%%", m.MAPE, t.MaxMAPE))
	}
	if m.RMSE > t.MaxRMSE {
		warnings = append(warnings, fmt.Sprintf("RMSE %.0f above maximum %.0f", m.RMSE, t.MaxRMSE))
	}
	return warnings
}
