// Package testutil provides common utility functions for testing.
package testutil

import (
	"testing"

	"github.com/bapenda-labs/pad-forecast/internal/projection"
	"github.com/bapenda-labs/pad-forecast/pkg/dataset"
	"github.com/bapenda-labs/pad-forecast/pkg/decomposition"
)

// CanonicalSeries builds a seven-year historical series with every macro
// column populated, shaped like the provincial dataset the projections run
// against.
func CanonicalSeries(t *testing.T) *dataset.HistoricalSeries {
	t.Helper()
	years := []int{2018, 2019, 2020, 2021, 2022, 2023, 2024}
	series, err := dataset.NewHistoricalSeries(years, map[string][]float64{
		dataset.ColumnPKB:   {6.0e12, 6.3e12, 6.1e12, 6.8e12, 7.2e12, 7.6e12, 8.0e12},
		dataset.ColumnBBNKB: {2.4e12, 2.6e12, 2.1e12, 2.5e12, 2.8e12, 3.0e12, 3.2e12},
		"PDRB":              {1500, 1550, 1480, 1620, 1700, 1760, 1830},
		"Rasio Gini":        {0.39, 0.38, 0.40, 0.39, 0.38, 0.37, 0.37},
		"IPM":               {70.1, 70.6, 70.8, 71.2, 71.8, 72.3, 72.9},
		"TPT":               {5.3, 5.1, 7.0, 6.2, 5.6, 5.2, 4.9},
		"Kemiskinan":        {9.8, 9.4, 10.2, 9.9, 9.5, 9.1, 8.8},
		"Inflasi":           {3.2, 2.7, 1.7, 1.9, 5.5, 3.1, 2.6},
		"Suku Bunga":        {6.0, 5.0, 3.75, 3.5, 5.5, 6.0, 6.25},
	})
	if err != nil {
		t.Fatalf("NewHistoricalSeries() error = %v", err)
	}
	return series
}

// PKBInputs builds structural inputs covering every PKB waterfall component
// for the given year.
func PKBInputs(t *testing.T, year int) *dataset.StructuralInputs {
	t.Helper()
	return dataset.MustStructuralInputs([]dataset.StructuralRow{
		{Year: year, Component: decomposition.ComponentOpening, Category: dataset.CategoryAdditive, Value: 7.9e12},
		{Year: year, Component: decomposition.ComponentFourWheel, Category: dataset.CategoryAdditive, Value: 3.1e11},
		{Year: year, Component: decomposition.ComponentTwoWheel, Category: dataset.CategoryAdditive, Value: 2.2e11},
		{Year: year, Component: decomposition.ComponentArrears, Category: dataset.CategoryAdditive, Value: 1.4e11},
		{Year: year, Component: decomposition.ComponentTransferIn, Category: dataset.CategoryAdditive, Value: 6.0e10},
		{Year: year, Component: decomposition.ComponentLapsed, Category: dataset.CategorySubtractive, Value: 1.1e11},
		{Year: year, Component: decomposition.ComponentTransferOut, Category: dataset.CategorySubtractive, Value: 5.0e10},
		{Year: year, Component: decomposition.ComponentExemption, Category: dataset.CategorySubtractive, Value: 3.0e10},
	})
}

// BBNKBInputs builds structural inputs for the BBNKB layout for the given
// year.
func BBNKBInputs(t *testing.T, year int) *dataset.StructuralInputs {
	t.Helper()
	return dataset.MustStructuralInputs([]dataset.StructuralRow{
		{Year: year, Component: decomposition.ComponentFourWheel, Category: dataset.CategoryAdditive, Value: 2.1e12},
		{Year: year, Component: decomposition.ComponentTwoWheel, Category: dataset.CategoryAdditive, Value: 1.3e12},
		{Year: year, Component: decomposition.ComponentTotal, Category: dataset.CategoryAdditive, Value: 3.4e12},
		{Year: year, Component: decomposition.ComponentWithheld, Category: dataset.CategorySubtractive, Value: 2.0e11},
	})
}

// FindSummary returns the summary row for a stream and year, or nil when the
// result has none.
func FindSummary(rows []projection.SummaryRow, stream string, year int) *projection.SummaryRow {
	for i := range rows {
		if rows[i].Stream == stream && rows[i].Year == year {
			return &rows[i]
		}
	}
	return nil
}

// FindRow returns the first decomposition row with the given label, or nil.
func FindRow(table *decomposition.Table, label string) *decomposition.Row {
	for i := range table.Rows {
		if table.Rows[i].Label == label {
			return &table.Rows[i]
		}
	}
	return nil
}
