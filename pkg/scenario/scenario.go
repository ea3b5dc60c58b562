// Package scenario computes optimistic/moderate/pessimistic bounds around a
// point prediction using three independent statistical methods plus an
// ensemble of the three. The moderate bound is always the unadjusted
// prediction; only the outer bounds differ by method.
package scenario

import (
	"fmt"
	"sort"

	"github.com/bapenda-labs/pad-forecast/pkg/constants"
	"github.com/bapenda-labs/pad-forecast/pkg/dataset"
	"github.com/bapenda-labs/pad-forecast/pkg/mathutil"
	"github.com/bapenda-labs/pad-forecast/pkg/regress"
	"gonum.org/v1/gonum/stat"
)

// Method names, in the fixed order they are reported.
const (
	MethodVolatility         = "volatility"
	MethodConfidenceInterval = "confidence_interval"
	MethodPercentile         = "percentile"
	MethodEnsemble           = "ensemble"
)

// Mode selects how the ensemble combines the three methods.
type Mode string

const (
	// ModeAverage takes the arithmetic mean of each bound.
	ModeAverage Mode = "average"

	// ModeConservative takes the widest bound across methods.
	ModeConservative Mode = "conservative"

	// ModeAggressive takes the narrowest bound across methods.
	ModeAggressive Mode = "aggressive"
)

// Bounds is one method's optimistic/moderate/pessimistic triple.
type Bounds struct {
	Optimistic  float64 `json:"optimistic"`
	Moderate    float64 `json:"moderate"`
	Pessimistic float64 `json:"pessimistic"`
}

// RangePct is the half-width of the bounds as a percentage of the moderate
// value; zero when the moderate value is zero.
func (b Bounds) RangePct() float64 {
	return mathutil.SafeDiv(b.Optimistic-b.Pessimistic, 2*b.Moderate) * constants.PercentageMultiplier
}

// Params carries the tunable inputs of the three bound methods.
type Params struct {
	NumStdDev       float64 `json:"numStdDev"`
	Alpha           float64 `json:"alpha"`
	LowerPercentile float64 `json:"lowerPercentile"`
	UpperPercentile float64 `json:"upperPercentile"`
}

// DefaultParams returns the stock parameters: one standard deviation, a 68%
// confidence interval, and the 16th/84th percentiles.
func DefaultParams() Params {
	return Params{
		NumStdDev:       constants.DefaultNumStdDev,
		Alpha:           constants.DefaultSignificanceLevel,
		LowerPercentile: constants.LowerPercentile,
		UpperPercentile: constants.UpperPercentile,
	}
}

// MethodBounds pairs a method name with its bounds for comparison tables.
type MethodBounds struct {
	Method string `json:"method"`
	Bounds Bounds `json:"bounds"`
}

// Comparison carries all methods' bounds together; no method is dropped.
type Comparison struct {
	Mode    Mode           `json:"mode"`
	Methods []MethodBounds `json:"methods"`
}

// VolatilityBounds derives bounds from the standard deviation of historical
// year-over-year percentage changes: prediction × (1 ± numStd·σ). A flat
// series collapses the bounds onto the prediction.
func VolatilityBounds(series *dataset.HistoricalSeries, response string, prediction, numStd float64) (Bounds, error) {
	values, err := series.Column(response)
	if err != nil {
		return Bounds{}, err
	}
	changes := mathutil.PercentChanges(values)
	if len(changes) < 2 {
		return Bounds{}, fmt.Errorf("need at least 3 observations of %q for volatility bounds: %w",
			response, dataset.ErrInsufficientData)
	}
	volatility := stat.StdDev(changes, nil)

	return Bounds{
		Optimistic:  prediction * (1 + numStd*volatility),
		Moderate:    prediction,
		Pessimistic: prediction * (1 - numStd*volatility),
	}, nil
}

// ConfidenceIntervalBounds derives bounds from the fitted regression's
// interval for the mean response at x0; alpha 0.32 corresponds to a 68%
// interval, one standard error equivalent.
func ConfidenceIntervalBounds(model *regress.Model, x0, prediction, alpha float64) Bounds {
	lower, upper := model.ConfidenceInterval(x0, alpha)
	return Bounds{
		Optimistic:  upper,
		Moderate:    prediction,
		Pessimistic: lower,
	}
}

// PercentileBounds derives bounds from empirical percentiles of historical
// year-over-year percentage changes: prediction × (1 + percentile).
func PercentileBounds(series *dataset.HistoricalSeries, response string, prediction, lowerPct, upperPct float64) (Bounds, error) {
	values, err := series.Column(response)
	if err != nil {
		return Bounds{}, err
	}
	changes := mathutil.PercentChanges(values)
	if len(changes) < 2 {
		return Bounds{}, fmt.Errorf("need at least 3 observations of %q for percentile bounds: %w",
			response, dataset.ErrInsufficientData)
	}
	sort.Float64s(changes)
	lower := stat.Quantile(lowerPct, stat.LinInterp, changes, nil)
	upper := stat.Quantile(upperPct, stat.LinInterp, changes, nil)

	return Bounds{
		Optimistic:  prediction * (1 + upper),
		Moderate:    prediction,
		Pessimistic: prediction * (1 + lower),
	}, nil
}

// EnsembleBounds runs all three methods and combines them according to the
// mode. All four triples are returned together so callers can present a
// method comparison table.
func EnsembleBounds(series *dataset.HistoricalSeries, response string, model *regress.Model, x0, prediction float64, mode Mode, params Params) (*Comparison, error) {
	vol, err := VolatilityBounds(series, response, prediction, params.NumStdDev)
	if err != nil {
		return nil, err
	}
	ci := ConfidenceIntervalBounds(model, x0, prediction, params.Alpha)
	pct, err := PercentileBounds(series, response, prediction, params.LowerPercentile, params.UpperPercentile)
	if err != nil {
		return nil, err
	}

	var ensemble Bounds
	switch mode {
	case ModeConservative:
		ensemble = Bounds{
			Optimistic:  mathutil.Max(vol.Optimistic, mathutil.Max(ci.Optimistic, pct.Optimistic)),
			Moderate:    prediction,
			Pessimistic: mathutil.Min(vol.Pessimistic, mathutil.Min(ci.Pessimistic, pct.Pessimistic)),
		}
	case ModeAggressive:
		ensemble = Bounds{
			Optimistic:  mathutil.Min(vol.Optimistic, mathutil.Min(ci.Optimistic, pct.Optimistic)),
			Moderate:    prediction,
			Pessimistic: mathutil.Max(vol.Pessimistic, mathutil.Max(ci.Pessimistic, pct.Pessimistic)),
		}
	case ModeAverage:
		ensemble = Bounds{
			Optimistic:  (vol.Optimistic + ci.Optimistic + pct.Optimistic) / 3,
			Moderate:    prediction,
			Pessimistic: (vol.Pessimistic + ci.Pessimistic + pct.Pessimistic) / 3,
		}
	default:
		return nil, fmt.Errorf("unknown ensemble mode %q", mode)
	}

	return &Comparison{
		Mode: mode,
		Methods: []MethodBounds{
			{Method: MethodVolatility, Bounds: vol},
			{Method: MethodConfidenceInterval, Bounds: ci},
			{Method: MethodPercentile, Bounds: pct},
			{Method: MethodEnsemble, Bounds: ensemble},
		},
	}, nil
}
