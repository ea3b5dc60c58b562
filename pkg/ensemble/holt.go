package ensemble

import (
	"fmt"
	"math"

	"github.com/bapenda-labs/pad-forecast/pkg/constants"
	"github.com/bapenda-labs/pad-forecast/pkg/dataset"
)

// HoltForecast fits additive-trend (Holt) exponential smoothing to the
// series, grid-searching the smoothing parameters for the lowest one-step
// squared error. Bounds are the point forecast plus/minus the coverage
// multiple of the in-sample residual standard deviation.
func HoltForecast(series *dataset.HistoricalSeries, response string, steps int) (Forecast, error) {
	y, err := series.Column(response)
	if err != nil {
		return Forecast{}, err
	}
	if len(y) < 3 {
		return Forecast{}, fmt.Errorf("exponential smoothing needs at least 3 observations, got %d: %w", len(y), dataset.ErrInsufficientData)
	}

	best := holtFit(y, 0.1, 0.1)
	for alpha := 0.1; alpha <= 0.91; alpha += 0.1 {
		for beta := 0.1; beta <= 0.91; beta += 0.1 {
			if fit := holtFit(y, alpha, beta); fit.sse < best.sse {
				best = fit
			}
		}
	}

	residStd := math.Sqrt(best.sse / float64(len(y)-1))
	f := Forecast{
		Model:  ModelExpSmoothing,
		Values: make([]float64, 0, steps),
		Lower:  make([]float64, 0, steps),
		Upper:  make([]float64, 0, steps),
	}
	for h := 1; h <= steps; h++ {
		value := best.level + float64(h)*best.trend
		margin := constants.DefaultForecastCoverage * residStd
		f.Values = append(f.Values, value)
		f.Lower = append(f.Lower, value-margin)
		f.Upper = append(f.Upper, value+margin)
	}
	return f, nil
}

type holtState struct {
	level float64
	trend float64
	sse   float64
}

// holtFit runs the Holt recursions with level initialized to the first
// observation and trend to the first difference, accumulating one-step
// forecast errors from the second observation on.
func holtFit(y []float64, alpha, beta float64) holtState {
	level := y[0]
	trend := y[1] - y[0]
	var sse float64
	for t := 1; t < len(y); t++ {
		residual := y[t] - (level + trend)
		sse += residual * residual
		next := alpha*y[t] + (1-alpha)*(level+trend)
		trend = beta*(next-level) + (1-beta)*trend
		level = next
	}
	return holtState{level: level, trend: trend, sse: sse}
}
