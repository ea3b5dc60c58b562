package modelcheck

import (
	"fmt"

	"github.com/bapenda-labs/pad-forecast/pkg/dataset"
	"github.com/bapenda-labs/pad-forecast/pkg/regress"
)

// CVResult holds the held-out predictions and their aggregate metrics from a
// leave-one-out cross validation.
type CVResult struct {
	Actuals     []float64 `json:"actuals"`
	Predictions []float64 `json:"predictions"`
	Metrics     Metrics   `json:"metrics"`
}

// LeaveOneOut refits response ~ predictor once per observation with that
// observation held out, predicting it from the remaining rows. Requires at
// least three rows so every training fold still supports a fit.
func LeaveOneOut(series *dataset.HistoricalSeries, response, predictor string) (*CVResult, error) {
	y, err := series.Column(response)
	if err != nil {
		return nil, err
	}
	x, err := series.Column(predictor)
	if err != nil {
		return nil, err
	}
	n := len(y)
	if n < 3 {
		return nil, fmt.Errorf("leave-one-out needs at least 3 observations, got %d: %w",
			n, dataset.ErrInsufficientData)
	}

	result := &CVResult{
		Actuals:     make([]float64, 0, n),
		Predictions: make([]float64, 0, n),
	}
	trainX := make([]float64, 0, n-1)
	trainY := make([]float64, 0, n-1)
	for i := 0; i < n; i++ {
		trainX = trainX[:0]
		trainY = trainY[:0]
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			trainX = append(trainX, x[j])
			trainY = append(trainY, y[j])
		}

		model, err := regress.Fit(trainX, trainY)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", i, err)
		}

		result.Actuals = append(result.Actuals, y[i])
		result.Predictions = append(result.Predictions, model.Predict(x[i]))
	}

	result.Metrics = AllMetrics(result.Actuals, result.Predictions)
	return result, nil
}
