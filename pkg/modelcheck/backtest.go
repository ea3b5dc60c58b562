package modelcheck

import (
	"fmt"

	"github.com/bapenda-labs/pad-forecast/pkg/dataset"
	"github.com/bapenda-labs/pad-forecast/pkg/regress"
)

// BacktestResult holds the out-of-sample evaluation of a chronological
// train/test split, together with the parameters of the trained model.
type BacktestResult struct {
	TestYears   []int     `json:"testYears"`
	Actuals     []float64 `json:"actuals"`
	Predictions []float64 `json:"predictions"`
	Intercept   float64   `json:"intercept"`
	Slope       float64   `json:"slope"`
	TrainR2     float64   `json:"trainR2"`
	Metrics     Metrics   `json:"metrics"`
}

// Backtest fits response ~ predictor on all but the last testYears
// observations and scores the held-out tail. The training window must keep at
// least two observations so a line can still be fitted.
func Backtest(series *dataset.HistoricalSeries, response, predictor string, testYears int) (*BacktestResult, error) {
	if testYears < 1 {
		return nil, fmt.Errorf("backtest needs at least 1 held-out year, got %d", testYears)
	}
	y, err := series.Column(response)
	if err != nil {
		return nil, err
	}
	x, err := series.Column(predictor)
	if err != nil {
		return nil, err
	}
	train := len(y) - testYears
	if train < 2 {
		return nil, fmt.Errorf("holding out %d of %d observations leaves %d to train on, need at least 2: %w",
			testYears, len(y), train, dataset.ErrInsufficientData)
	}

	model, err := regress.Fit(x[:train], y[:train])
	if err != nil {
		return nil, err
	}

	result := &BacktestResult{
		TestYears:   series.Years()[train:],
		Actuals:     y[train:],
		Predictions: make([]float64, 0, testYears),
		Intercept:   model.Intercept,
		Slope:       model.Slope,
		TrainR2:     model.R2,
	}
	for _, xi := range x[train:] {
		result.Predictions = append(result.Predictions, model.Predict(xi))
	}
	result.Metrics = AllMetrics(result.Actuals, result.Predictions)
	return result, nil
}
