// Package sensitivity perturbs each predictor by a fixed fraction and
// measures the change in the fitted response, producing impact and
// elasticity rankings for tornado-chart rendering.
package sensitivity

import (
	"fmt"
	"math"
	"sort"

	"github.com/bapenda-labs/pad-forecast/pkg/dataset"
	"github.com/bapenda-labs/pad-forecast/pkg/mathutil"
	"github.com/bapenda-labs/pad-forecast/pkg/trend"
)

// Row is the sensitivity result for one predictor.
type Row struct {
	Predictor       string  `json:"predictor"`
	BaseValue       float64 `json:"baseValue"`
	BasePrediction  float64 `json:"basePrediction"`
	LowerValue      float64 `json:"lowerValue"`
	LowerPrediction float64 `json:"lowerPrediction"`
	LowerImpact     float64 `json:"lowerImpact"`
	UpperValue      float64 `json:"upperValue"`
	UpperPrediction float64 `json:"upperPrediction"`
	UpperImpact     float64 `json:"upperImpact"`
	TotalRange      float64 `json:"totalRange"`
	Elasticity      float64 `json:"elasticity"`
	Coefficient     float64 `json:"coefficient"`
}

// AnalyzeSingle measures the response's sensitivity to one predictor: the
// fitted line is evaluated at the base value and at base×(1∓variation), and
// elasticity is the percentage change in the prediction per percentage
// change in the predictor. A zero base prediction yields elasticity 0, not
// NaN. No clamping is applied; elasticity may be negative or exceed 1.
func AnalyzeSingle(series *dataset.HistoricalSeries, response, predictor string, baseValue, variation float64) (Row, error) {
	model, err := trend.FitResponse(series, response, predictor)
	if err != nil {
		return Row{}, err
	}

	basePred := model.Predict(baseValue)
	lowerValue := baseValue * (1 - variation)
	upperValue := baseValue * (1 + variation)
	lowerPred := model.Predict(lowerValue)
	upperPred := model.Predict(upperValue)

	elasticity := mathutil.SafeDiv(mathutil.SafeDiv(upperPred-lowerPred, basePred), 2*variation)

	return Row{
		Predictor:       predictor,
		BaseValue:       baseValue,
		BasePrediction:  basePred,
		LowerValue:      lowerValue,
		LowerPrediction: lowerPred,
		LowerImpact:     lowerPred - basePred,
		UpperValue:      upperValue,
		UpperPrediction: upperPred,
		UpperImpact:     upperPred - basePred,
		TotalRange:      upperPred - lowerPred,
		Elasticity:      elasticity,
		Coefficient:     model.Slope,
	}, nil
}

// Analyze runs AnalyzeSingle over every predictor and ranks the rows by
// absolute total range, descending, the order a tornado chart plots them in.
func Analyze(series *dataset.HistoricalSeries, response string, predictors []string, baseValues map[string]float64, variation float64) ([]Row, error) {
	rows := make([]Row, 0, len(predictors))
	for _, predictor := range predictors {
		baseValue, ok := baseValues[predictor]
		if !ok {
			return nil, fmt.Errorf("base value for %q not supplied", predictor)
		}
		row, err := AnalyzeSingle(series, response, predictor, baseValue, variation)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return math.Abs(rows[i].TotalRange) > math.Abs(rows[j].TotalRange)
	})

	return rows, nil
}
