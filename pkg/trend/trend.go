// Package trend fits simple regressions over the historical series: a
// variable against the year index for extrapolation, and a revenue stream
// against a macro predictor for elasticity estimation.
package trend

import (
	"fmt"

	"github.com/bapenda-labs/pad-forecast/pkg/dataset"
	"github.com/bapenda-labs/pad-forecast/pkg/regress"
)

// Fit regresses the named variable against the year index.
func Fit(series *dataset.HistoricalSeries, variable string) (*regress.Model, error) {
	values, err := series.Column(variable)
	if err != nil {
		return nil, err
	}
	model, err := regress.Fit(series.YearsFloat(), values)
	if err != nil {
		return nil, fmt.Errorf("trend fit for %q: %w", variable, err)
	}
	return model, nil
}

// PredictAtYear extrapolates the named variable to the target year via the
// fitted line equation. The target year may lie outside the historical range.
// With the canonical 7-year dataset the fit has only 5 residual degrees of
// freedom; the point estimate is always solvable but statistically weak.
func PredictAtYear(series *dataset.HistoricalSeries, variable string, year int) (float64, error) {
	model, err := Fit(series, variable)
	if err != nil {
		return 0, err
	}
	return model.Predict(float64(year)), nil
}

// FitResponse regresses a response column against a single predictor column.
func FitResponse(series *dataset.HistoricalSeries, response, predictor string) (*regress.Model, error) {
	y, err := series.Column(response)
	if err != nil {
		return nil, err
	}
	x, err := series.Column(predictor)
	if err != nil {
		return nil, err
	}
	model, err := regress.Fit(x, y)
	if err != nil {
		return nil, fmt.Errorf("fit of %q on %q: %w", response, predictor, err)
	}
	return model, nil
}

// Elasticity returns the slope coefficient of response regressed on
// predictor: rupiah of response per unit of predictor.
func Elasticity(series *dataset.HistoricalSeries, response, predictor string) (float64, error) {
	model, err := FitResponse(series, response, predictor)
	if err != nil {
		return 0, err
	}
	return model.Slope, nil
}
