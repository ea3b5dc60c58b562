package ensemble

import (
	"errors"
	"math"
	"testing"

	"github.com/bapenda-labs/pad-forecast/pkg/dataset"
)

// linearSeries has PKB exactly linear in PDRB (PKB = 2*PDRB + 50) and PDRB
// growing by a constant 10 per year, so every step in PKB is 20.
func linearSeries(t *testing.T) *dataset.HistoricalSeries {
	t.Helper()
	years := []int{2018, 2019, 2020, 2021, 2022, 2023, 2024}
	series, err := dataset.NewHistoricalSeries(years, map[string][]float64{
		"PDRB":            {100, 110, 120, 130, 140, 150, 160},
		dataset.ColumnPKB: {250, 270, 290, 310, 330, 350, 370},
	})
	if err != nil {
		t.Fatalf("NewHistoricalSeries() error = %v", err)
	}
	return series
}

func TestOLSForecastExactFit(t *testing.T) {
	series := linearSeries(t)

	f, err := OLSForecast(series, dataset.ColumnPKB, "PDRB", []float64{170, 180}, 0.05)
	if err != nil {
		t.Fatalf("OLSForecast() error = %v", err)
	}

	want := []float64{390, 410}
	for i, w := range want {
		if math.Abs(f.Values[i]-w) > 1e-6 {
			t.Errorf("Values[%d] = %v, expected %v", i, f.Values[i], w)
		}
		// A perfect fit has zero residual error; the interval collapses.
		if f.Lower[i] != f.Values[i] || f.Upper[i] != f.Values[i] {
			t.Errorf("bounds at step %d = (%v, %v), expected both %v",
				i, f.Lower[i], f.Upper[i], f.Values[i])
		}
	}
}

func TestHoltForecastLinearData(t *testing.T) {
	series := linearSeries(t)

	f, err := HoltForecast(series, dataset.ColumnPKB, 3)
	if err != nil {
		t.Fatalf("HoltForecast() error = %v", err)
	}

	// Level starts on the line and the trend starts at the true step, so
	// every one-step residual is zero and the recursion stays on the line.
	want := []float64{390, 410, 430}
	for i, w := range want {
		if math.Abs(f.Values[i]-w) > 1e-6 {
			t.Errorf("Values[%d] = %v, expected %v", i, f.Values[i], w)
		}
		if math.Abs(f.Upper[i]-f.Lower[i]) > 1e-6 {
			t.Errorf("bounds at step %d = (%v, %v), expected collapsed",
				i, f.Lower[i], f.Upper[i])
		}
	}
}

func TestARForecastConstantDifferences(t *testing.T) {
	// Constant first differences leave the lagged difference without
	// variation, so the autoregression cannot be fitted.
	series := linearSeries(t)

	_, err := ARForecast(series, dataset.ColumnPKB, 2)
	if !errors.Is(err, dataset.ErrInsufficientData) {
		t.Fatalf("ARForecast() error = %v, expected ErrInsufficientData", err)
	}
}

func TestARForecastCurvedSeries(t *testing.T) {
	years := []int{2018, 2019, 2020, 2021, 2022, 2023, 2024}
	series, err := dataset.NewHistoricalSeries(years, map[string][]float64{
		dataset.ColumnPKB: {100, 110, 130, 145, 170, 190, 220},
	})
	if err != nil {
		t.Fatalf("NewHistoricalSeries() error = %v", err)
	}

	f, err := ARForecast(series, dataset.ColumnPKB, 3)
	if err != nil {
		t.Fatalf("ARForecast() error = %v", err)
	}

	prev := 220.0
	for i, v := range f.Values {
		if v <= prev {
			t.Errorf("Values[%d] = %v, expected growth off a rising series", i, v)
		}
		prev = v
		if f.Lower[i] >= f.Upper[i] {
			t.Errorf("bounds at step %d = (%v, %v), expected lower < upper",
				i, f.Lower[i], f.Upper[i])
		}
	}
	// Bounds widen with the horizon.
	if f.Upper[2]-f.Lower[2] <= f.Upper[0]-f.Lower[0] {
		t.Errorf("interval at step 3 (%v) not wider than step 1 (%v)",
			f.Upper[2]-f.Lower[2], f.Upper[0]-f.Lower[0])
	}
}

func TestRunRenormalizesWeights(t *testing.T) {
	series := linearSeries(t)
	weights := Weights{OLS: 0.50, ARIMA: 0.25, ExpSmoothing: 0.25}

	result, err := Run(nil, series, dataset.ColumnPKB, "PDRB", []float64{170, 180}, weights)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Forecasts) != 2 {
		t.Fatalf("len(Forecasts) = %d, expected 2 (OLS and exponential smoothing)", len(result.Forecasts))
	}
	if _, ok := result.Failures[ModelARIMA]; !ok {
		t.Errorf("Failures = %v, expected the autoregression to be reported", result.Failures)
	}

	// Both surviving models forecast 390 and 410 exactly on this series,
	// so any renormalization of the weights must reproduce them.
	want := []float64{390, 410}
	for i, w := range want {
		if math.Abs(result.Ensemble.Values[i]-w) > 1e-6 {
			t.Errorf("Ensemble.Values[%d] = %v, expected %v", i, result.Ensemble.Values[i], w)
		}
	}
	if result.Ensemble.Model != ModelEnsemble {
		t.Errorf("Ensemble.Model = %q, expected %q", result.Ensemble.Model, ModelEnsemble)
	}
}

func TestRunAllModelsFail(t *testing.T) {
	series, err := dataset.NewHistoricalSeries([]int{2023, 2024}, map[string][]float64{
		"PDRB":            {100, 100},
		dataset.ColumnPKB: {250, 250},
	})
	if err != nil {
		t.Fatalf("NewHistoricalSeries() error = %v", err)
	}

	if _, err := Run(nil, series, dataset.ColumnPKB, "PDRB", []float64{100}, Weights{OLS: 1}); err == nil {
		t.Fatal("Run() error = nil, expected failure when no model can be fitted")
	}
}

func TestMedianGrowthPath(t *testing.T) {
	series, err := dataset.NewHistoricalSeries([]int{2022, 2023, 2024}, map[string][]float64{
		"PDRB": {100, 110, 121},
	})
	if err != nil {
		t.Fatalf("NewHistoricalSeries() error = %v", err)
	}

	path, err := MedianGrowthPath(series, "PDRB", 2)
	if err != nil {
		t.Fatalf("MedianGrowthPath() error = %v", err)
	}

	want := []float64{133.1, 146.41}
	for i, w := range want {
		if math.Abs(path[i]-w) > 1e-9 {
			t.Errorf("path[%d] = %v, expected %v", i, path[i], w)
		}
	}
}

func TestMedianGrowthPathDefaultFallback(t *testing.T) {
	// A single observation has no growth history; the default rate applies.
	series, err := dataset.NewHistoricalSeries([]int{2024}, map[string][]float64{
		"PDRB": {100},
	})
	if err != nil {
		t.Fatalf("NewHistoricalSeries() error = %v", err)
	}

	path, err := MedianGrowthPath(series, "PDRB", 2)
	if err != nil {
		t.Fatalf("MedianGrowthPath() error = %v", err)
	}

	want := []float64{105, 110.25}
	for i, w := range want {
		if math.Abs(path[i]-w) > 1e-9 {
			t.Errorf("path[%d] = %v, expected %v", i, path[i], w)
		}
	}
}

func TestMedianGrowthPathMissingColumn(t *testing.T) {
	series := linearSeries(t)
	if _, err := MedianGrowthPath(series, "IPM", 2); !errors.Is(err, dataset.ErrMissingColumn) {
		t.Fatalf("MedianGrowthPath() error = %v, expected ErrMissingColumn", err)
	}
}
