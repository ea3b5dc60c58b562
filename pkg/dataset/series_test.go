package dataset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testColumns(n int) map[string][]float64 {
	pkb := make([]float64, n)
	pdrb := make([]float64, n)
	for i := range pkb {
		pkb[i] = 6.0e12 + float64(i)*0.3e12
		pdrb[i] = 1500 + float64(i)*50
	}
	return map[string][]float64{ColumnPKB: pkb, "PDRB": pdrb}
}

func TestNewHistoricalSeries(t *testing.T) {
	tests := []struct {
		name    string
		years   []int
		columns map[string][]float64
		wantErr bool
	}{
		{
			name:    "Valid seven year series",
			years:   []int{2018, 2019, 2020, 2021, 2022, 2023, 2024},
			columns: testColumns(7),
		},
		{
			name:    "Duplicate year rejected",
			years:   []int{2018, 2019, 2019},
			columns: testColumns(3),
			wantErr: true,
		},
		{
			name:    "Decreasing year rejected",
			years:   []int{2018, 2020, 2019},
			columns: testColumns(3),
			wantErr: true,
		},
		{
			name:    "Empty series rejected",
			years:   nil,
			columns: nil,
			wantErr: true,
		},
		{
			name:    "Column length mismatch rejected",
			years:   []int{2018, 2019},
			columns: map[string][]float64{ColumnPKB: {1, 2, 3}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series, err := NewHistoricalSeries(tt.years, tt.columns)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.years), series.Len())
			assert.Equal(t, tt.years[len(tt.years)-1], series.LastYear())
		})
	}
}

func TestHistoricalSeriesColumn(t *testing.T) {
	series, err := NewHistoricalSeries([]int{2018, 2019, 2020}, testColumns(3))
	require.NoError(t, err)

	values, err := series.Column(ColumnPKB)
	require.NoError(t, err)
	assert.Len(t, values, 3)

	_, err = series.Column("Ekspor")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn), "expected ErrMissingColumn, got %v", err)
}

func TestHistoricalSeriesImmutability(t *testing.T) {
	columns := testColumns(3)
	series, err := NewHistoricalSeries([]int{2018, 2019, 2020}, columns)
	require.NoError(t, err)

	// Mutating the source or a returned copy must not affect the snapshot.
	columns[ColumnPKB][0] = -1
	got, err := series.Column(ColumnPKB)
	require.NoError(t, err)
	assert.NotEqual(t, -1.0, got[0])

	got[1] = -2
	again, err := series.Column(ColumnPKB)
	require.NoError(t, err)
	assert.NotEqual(t, -2.0, again[1])
}

func TestBaseline(t *testing.T) {
	series, err := NewHistoricalSeries([]int{2023, 2024}, map[string][]float64{
		"PDRB":      {1500, 1550},
		"Inflasi":   {3.2, 2.8},
		ColumnPKB:   {7.1e12, 7.4e12},
		ColumnBBNKB: {2.0e12, 2.1e12},
	})
	require.NoError(t, err)

	baseline, err := series.Baseline([]string{"PDRB", "Inflasi"})
	require.NoError(t, err)
	assert.Equal(t, 1550.0, baseline["PDRB"])
	assert.Equal(t, 2.8, baseline["Inflasi"])

	_, err = series.Baseline([]string{"PDRB", "Ekspor"})
	assert.True(t, errors.Is(err, ErrMissingColumn))
}

func TestStructuralInputs(t *testing.T) {
	inputs, err := NewStructuralInputs([]StructuralRow{
		{Year: 2025, Component: "R4", Category: CategoryAdditive, Value: 60},
		{Year: 2025, Component: "R2", Category: CategoryAdditive, Value: 40},
		{Year: 2025, Component: "TDR", Category: CategorySubtractive, Value: 30},
		{Year: 2026, Component: "R4", Category: CategoryAdditive, Value: 65},
	})
	require.NoError(t, err, "one row per component per year is well formed")

	year := inputs.ForYear(2025)
	assert.Equal(t, 100.0, year.TotalAdditive())
	assert.Equal(t, 30.0, year.TotalSubtractive())
	assert.Equal(t, 60.0, year.Value("R4"))
	assert.Equal(t, 0.0, year.Value("Pembebasan"), "missing component defaults to zero")

	assert.Empty(t, inputs.ForYear(2030).Rows())
}

func TestStructuralInputsRejectDuplicateComponent(t *testing.T) {
	// A duplicated component would split its value between Value (first
	// match) and the totals (every match), so construction refuses it.
	_, err := NewStructuralInputs([]StructuralRow{
		{Year: 2025, Component: "R4", Category: CategoryAdditive, Value: 100},
		{Year: 2025, Component: "R4", Category: CategoryAdditive, Value: 100},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateComponent))
	assert.Contains(t, err.Error(), "R4")

	assert.Panics(t, func() {
		MustStructuralInputs([]StructuralRow{
			{Year: 2025, Component: "R4", Category: CategoryAdditive, Value: 100},
			{Year: 2025, Component: "R4", Category: CategorySubtractive, Value: 50},
		})
	})
}
