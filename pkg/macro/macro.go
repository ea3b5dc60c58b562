// Package macro aggregates per-variable trend predictions and elasticities
// into monetary impact on a revenue stream, split into positive and negative
// buckets.
package macro

import (
	"fmt"

	"github.com/bapenda-labs/pad-forecast/pkg/dataset"
	"github.com/bapenda-labs/pad-forecast/pkg/trend"
)

// ImpactRow is the derived impact of one macro variable on the response for
// one target year. Recomputed on every call, never persisted.
type ImpactRow struct {
	Variable  string  `json:"variable"`
	Baseline  float64 `json:"baseline"`
	Predicted float64 `json:"predicted"`
	Delta     float64 `json:"delta"`
	Impact    float64 `json:"impact"`
}

// ImpactResult aggregates the impacts of all macro variables for one target
// year. Predicted carries the per-variable predictions so a caller can chain
// them as the next year's baseline.
type ImpactResult struct {
	Year          int                `json:"year"`
	Rows          []ImpactRow        `json:"rows"`
	TotalPositive float64            `json:"totalPositive"`
	TotalNegative float64            `json:"totalNegative"`
	Predicted     map[string]float64 `json:"predicted"`
}

// ComputeImpact predicts each macro variable at the target year, estimates
// the response's elasticity against it, and converts the predicted move into
// rupiah. Variables are processed in the canonical dataset.MacroColumns
// order; impacts of exactly zero accumulate into the positive bucket.
func ComputeImpact(series *dataset.HistoricalSeries, response string, year int, baseline map[string]float64) (*ImpactResult, error) {
	result := &ImpactResult{
		Year:      year,
		Rows:      make([]ImpactRow, 0, len(dataset.MacroColumns)),
		Predicted: make(map[string]float64, len(dataset.MacroColumns)),
	}

	for _, variable := range dataset.MacroColumns {
		baseValue, ok := baseline[variable]
		if !ok {
			return nil, fmt.Errorf("baseline value for %q not supplied", variable)
		}

		predicted, err := trend.PredictAtYear(series, variable, year)
		if err != nil {
			return nil, err
		}

		elasticity, err := trend.Elasticity(series, response, variable)
		if err != nil {
			return nil, err
		}

		delta := predicted - baseValue
		impact := elasticity * delta
		if impact >= 0 {
			result.TotalPositive += impact
		} else {
			result.TotalNegative += impact
		}

		result.Predicted[variable] = predicted
		result.Rows = append(result.Rows, ImpactRow{
			Variable:  variable,
			Baseline:  baseValue,
			Predicted: predicted,
			Delta:     delta,
			Impact:    impact,
		})
	}

	return result, nil
}
