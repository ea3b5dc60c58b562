// Package projection orchestrates one full projection run: macro impact
// aggregation, waterfall decomposition per stream, scenario bounds,
// sensitivity ranking, and model-quality warnings.
package projection

import (
	"fmt"

	"github.com/bapenda-labs/pad-forecast/internal/config"
	"github.com/bapenda-labs/pad-forecast/pkg/dataset"
	"github.com/bapenda-labs/pad-forecast/pkg/decomposition"
	"github.com/bapenda-labs/pad-forecast/pkg/macro"
	"github.com/bapenda-labs/pad-forecast/pkg/modelcheck"
	"github.com/bapenda-labs/pad-forecast/pkg/scenario"
	"github.com/bapenda-labs/pad-forecast/pkg/sensitivity"
	"github.com/bapenda-labs/pad-forecast/pkg/trend"
	"go.uber.org/zap"
)

// YearProjection holds one projected year: the macro impact on PKB and the
// decomposition table of each stream.
type YearProjection struct {
	Year  int                  `json:"year"`
	Macro *macro.ImpactResult  `json:"macro"`
	PKB   *decomposition.Table `json:"pkb"`
	BBNKB *decomposition.Table `json:"bbnkb"`
}

// SummaryRow condenses one stream-year to its headline numbers.
type SummaryRow struct {
	Stream    string  `json:"stream"`
	Year      int     `json:"year"`
	Potential float64 `json:"totalPotential"`
	Target    float64 `json:"target"`
	Remaining float64 `json:"remainingPotential"`
}

// Result is the complete output of a projection run.
type Result struct {
	StartYear   int                  `json:"startYear"`
	Years       []YearProjection     `json:"years"`
	Summary     []SummaryRow         `json:"summary"`
	Scenarios   *scenario.Comparison `json:"scenarios,omitempty"`
	Sensitivity []sensitivity.Row    `json:"sensitivity,omitempty"`
	Warnings    []string             `json:"warnings,omitempty"`
}

// The structural inputs may carry an adopted target as a pseudo-component
// when none is configured.
const targetComponent = "Target"

// Run projects every configured year. Scenario bounds, sensitivity, and
// model validation degrade to warnings when the history cannot support them;
// the decomposition itself must always succeed.
func Run(logger *zap.Logger, conf *config.Configuration, hist *dataset.HistoricalSeries, pkbInputs, bbnkbInputs *dataset.StructuralInputs) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	startYear := conf.Projection.StartYear
	if startYear == 0 {
		startYear = hist.LastYear() + 1
	}

	baseline, err := hist.Baseline(dataset.MacroColumns)
	if err != nil {
		return nil, fmt.Errorf("reading macro baseline: %w", err)
	}

	result := &Result{StartYear: startYear}
	for year := startYear; year < startYear+conf.Projection.Years; year++ {
		impact, err := macro.ComputeImpact(hist, dataset.ColumnPKB, year, baseline)
		if err != nil {
			return nil, fmt.Errorf("macro impact for %d: %w", year, err)
		}

		pkbYear := pkbInputs.ForYear(year)
		pkbTarget, fromConfig := conf.Target(decomposition.StreamPKB, year)
		if !fromConfig {
			pkbTarget = pkbYear.Value(targetComponent)
		}
		pkbTable := decomposition.BuildPKBTable(year, pkbYear, impact, pkbTarget)

		bbnkbYear := bbnkbInputs.ForYear(year)
		bbnkbTarget, fromConfig := conf.Target(decomposition.StreamBBNKB, year)
		if !fromConfig {
			bbnkbTarget = bbnkbYear.Value(targetComponent)
		}
		bbnkbTable := decomposition.BuildBBNKBTable(year, startYear, bbnkbYear, bbnkbTarget)

		logger.Debug("projected year",
			zap.String("op", "projection.Run"),
			zap.Int("year", year),
			zap.Float64("pkbPotential", pkbTable.TotalPotential),
			zap.Float64("bbnkbPotential", bbnkbTable.TotalPotential),
		)

		result.Years = append(result.Years, YearProjection{
			Year:  year,
			Macro: impact,
			PKB:   pkbTable,
			BBNKB: bbnkbTable,
		})
		result.Summary = append(result.Summary,
			SummaryRow{
				Stream:    decomposition.StreamPKB,
				Year:      year,
				Potential: pkbTable.TotalPotential,
				Target:    pkbTable.Target,
				Remaining: pkbTable.RemainingPotential,
			},
			SummaryRow{
				Stream:    decomposition.StreamBBNKB,
				Year:      year,
				Potential: bbnkbTable.TotalPotential,
				Target:    bbnkbTable.Target,
				Remaining: bbnkbTable.RemainingPotential,
			},
		)

		// Next year's macro baseline is this year's predicted values.
		baseline = impact.Predicted
	}

	addScenarios(logger, conf, hist, startYear, result)
	addSensitivity(logger, conf, hist, result)
	addValidation(logger, conf, hist, result)

	return result, nil
}

func addScenarios(logger *zap.Logger, conf *config.Configuration, hist *dataset.HistoricalSeries, startYear int, result *Result) {
	model, err := trend.Fit(hist, dataset.ColumnPKB)
	if err != nil {
		warn(logger, result, fmt.Sprintf("scenario bounds skipped: %s", err))
		return
	}
	x0 := float64(startYear)
	comparison, err := scenario.EnsembleBounds(hist, dataset.ColumnPKB, model, x0, model.Predict(x0),
		scenario.Mode(conf.Scenario.Mode), conf.ScenarioParams())
	if err != nil {
		warn(logger, result, fmt.Sprintf("scenario bounds skipped: %s", err))
		return
	}
	result.Scenarios = comparison
}

func addSensitivity(logger *zap.Logger, conf *config.Configuration, hist *dataset.HistoricalSeries, result *Result) {
	baseValues, err := hist.Baseline(dataset.MacroColumns)
	if err != nil {
		warn(logger, result, fmt.Sprintf("sensitivity analysis skipped: %s", err))
		return
	}
	rows, err := sensitivity.Analyze(hist, dataset.ColumnPKB, dataset.MacroColumns, baseValues, conf.Projection.Variation)
	if err != nil {
		warn(logger, result, fmt.Sprintf("sensitivity analysis skipped: %s", err))
		return
	}
	result.Sensitivity = rows
}

// addValidation checks the in-sample fit of each stream's trend model and
// cross-validates PKB against its strongest predictor, folding any quality
// breach into the run warnings.
func addValidation(logger *zap.Logger, conf *config.Configuration, hist *dataset.HistoricalSeries, result *Result) {
	thresholds := modelcheck.Thresholds{
		MinR2:   conf.Validation.MinR2,
		MaxMAPE: conf.Validation.MaxMAPE,
		MaxRMSE: conf.Validation.MaxRMSE,
	}

	for _, stream := range []string{dataset.ColumnPKB, dataset.ColumnBBNKB} {
		if !hist.HasColumn(stream) {
			continue
		}
		model, err := trend.Fit(hist, stream)
		if err != nil {
			warn(logger, result, fmt.Sprintf("trend validation for %s skipped: %s", stream, err))
			continue
		}
		actual, err := hist.Column(stream)
		if err != nil {
			continue
		}
		fitted := make([]float64, len(actual))
		for i, x := range hist.YearsFloat() {
			fitted[i] = model.Predict(x)
		}
		for _, breach := range modelcheck.AllMetrics(actual, fitted).Evaluate(thresholds) {
			warn(logger, result, fmt.Sprintf("%s trend model: %s", stream, breach))
		}
	}

	if hist.HasColumn("PDRB") {
		cv, err := modelcheck.LeaveOneOut(hist, dataset.ColumnPKB, "PDRB")
		if err != nil {
			warn(logger, result, fmt.Sprintf("cross validation skipped: %s", err))
			return
		}
		for _, breach := range cv.Metrics.Evaluate(thresholds) {
			warn(logger, result, fmt.Sprintf("PKB cross validation: %s", breach))
		}
	}
}

func warn(logger *zap.Logger, result *Result, message string) {
	logger.Warn(message, zap.String("op", "projection.Run"))
	result.Warnings = append(result.Warnings, message)
}
