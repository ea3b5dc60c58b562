package ensemble

import (
	"fmt"
	"math"

	"github.com/bapenda-labs/pad-forecast/pkg/constants"
	"github.com/bapenda-labs/pad-forecast/pkg/dataset"
	"github.com/bapenda-labs/pad-forecast/pkg/regress"
)

// ARForecast fits a first-order autoregression on the first differences of
// the series and forecasts by iterating the fitted recursion from the last
// observation. Bounds widen with the horizon as the coverage multiple of the
// residual standard error times sqrt(h).
func ARForecast(series *dataset.HistoricalSeries, response string, steps int) (Forecast, error) {
	y, err := series.Column(response)
	if err != nil {
		return Forecast{}, err
	}
	if len(y) < 4 {
		return Forecast{}, fmt.Errorf("autoregression needs at least 4 observations, got %d: %w", len(y), dataset.ErrInsufficientData)
	}

	diffs := make([]float64, len(y)-1)
	for i := 1; i < len(y); i++ {
		diffs[i-1] = y[i] - y[i-1]
	}

	lagged := diffs[:len(diffs)-1]
	current := diffs[1:]
	model, err := regress.Fit(lagged, current)
	if err != nil {
		return Forecast{}, fmt.Errorf("fitting difference autoregression for %q: %w", response, err)
	}

	f := Forecast{
		Model:  ModelARIMA,
		Values: make([]float64, 0, steps),
		Lower:  make([]float64, 0, steps),
		Upper:  make([]float64, 0, steps),
	}
	level := y[len(y)-1]
	diff := diffs[len(diffs)-1]
	for h := 1; h <= steps; h++ {
		diff = model.Predict(diff)
		level += diff
		margin := constants.DefaultForecastCoverage * model.ResidualStdErr * math.Sqrt(float64(h))
		f.Values = append(f.Values, level)
		f.Lower = append(f.Lower, level-margin)
		f.Upper = append(f.Upper, level+margin)
	}
	return f, nil
}
