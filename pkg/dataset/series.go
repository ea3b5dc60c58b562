// Package dataset defines the in-memory tabular structures the projection
// pipeline computes over: the yearly historical series of revenue and
// macroeconomic indicators, and the per-stream structural line-item inputs.
// All structures are immutable snapshots; computations never mutate them.
package dataset

import "fmt"

// Revenue stream column names.
const (
	ColumnYear  = "Tahun"
	ColumnPKB   = "PKB"
	ColumnBBNKB = "BBNKB"
)

// MacroColumns is the fixed set of macroeconomic indicator columns, in the
// canonical order every aggregation iterates in.
var MacroColumns = []string{
	"PDRB",
	"Rasio Gini",
	"IPM",
	"TPT",
	"Kemiskinan",
	"Inflasi",
	"Suku Bunga",
}

// HistoricalSeries is an ordered collection of yearly records with named
// numeric columns. Years are strictly increasing with no duplicates.
type HistoricalSeries struct {
	years   []int
	columns map[string][]float64
}

// NewHistoricalSeries validates and constructs a series from parallel slices.
// Column slices must match the length of years.
func NewHistoricalSeries(years []int, columns map[string][]float64) (*HistoricalSeries, error) {
	if len(years) == 0 {
		return nil, fmt.Errorf("historical series requires at least one year: %w", ErrInsufficientData)
	}
	for i := 1; i < len(years); i++ {
		if years[i] <= years[i-1] {
			return nil, fmt.Errorf("years must be strictly increasing, got %d after %d", years[i], years[i-1])
		}
	}
	copied := make(map[string][]float64, len(columns))
	for name, values := range columns {
		if len(values) != len(years) {
			return nil, fmt.Errorf("column %q has %d values for %d years", name, len(values), len(years))
		}
		vals := make([]float64, len(values))
		copy(vals, values)
		copied[name] = vals
	}
	yrs := make([]int, len(years))
	copy(yrs, years)
	return &HistoricalSeries{years: yrs, columns: copied}, nil
}

// Len returns the number of yearly records.
func (s *HistoricalSeries) Len() int {
	return len(s.years)
}

// Years returns the year values as integers.
func (s *HistoricalSeries) Years() []int {
	yrs := make([]int, len(s.years))
	copy(yrs, s.years)
	return yrs
}

// YearsFloat returns the year values as float64, the form regressions consume.
func (s *HistoricalSeries) YearsFloat() []float64 {
	yrs := make([]float64, len(s.years))
	for i, y := range s.years {
		yrs[i] = float64(y)
	}
	return yrs
}

// LastYear returns the final (most recent) year in the series.
func (s *HistoricalSeries) LastYear() int {
	return s.years[len(s.years)-1]
}

// HasColumn reports whether the named column exists.
func (s *HistoricalSeries) HasColumn(name string) bool {
	_, ok := s.columns[name]
	return ok
}

// Columns returns the column names present in the series. Order is not
// specified.
func (s *HistoricalSeries) Columns() []string {
	names := make([]string, 0, len(s.columns))
	for name := range s.columns {
		names = append(names, name)
	}
	return names
}

// Column returns a copy of the named column's values.
func (s *HistoricalSeries) Column(name string) ([]float64, error) {
	values, ok := s.columns[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrMissingColumn)
	}
	vals := make([]float64, len(values))
	copy(vals, values)
	return vals, nil
}

// LastValue returns the most recent observation of the named column.
func (s *HistoricalSeries) LastValue(name string) (float64, error) {
	values, ok := s.columns[name]
	if !ok {
		return 0, fmt.Errorf("%q: %w", name, ErrMissingColumn)
	}
	return values[len(values)-1], nil
}

// Baseline returns the last observed value of each named column, keyed by
// column name. This is the baseline for the first projected year.
func (s *HistoricalSeries) Baseline(names []string) (map[string]float64, error) {
	baseline := make(map[string]float64, len(names))
	for _, name := range names {
		value, err := s.LastValue(name)
		if err != nil {
			return nil, err
		}
		baseline[name] = value
	}
	return baseline, nil
}
