package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// columnRenames maps legacy dataset headers to their canonical column names.
var columnRenames = map[string]string{
	"Rasio_Gini": "Rasio Gini",
	"BI7DRR":     "Suku Bunga",
}

// LoadHistoricalCSV reads the yearly historical dataset. The file must carry a
// header row with a Tahun column; remaining columns are treated as numeric
// series. Legacy header spellings are normalized.
func LoadHistoricalCSV(path string) (*HistoricalSeries, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("historical dataset %s has no data rows: %w", path, ErrInsufficientData)
	}

	header := records[0]
	yearIdx := -1
	for i, name := range header {
		name = strings.TrimSpace(name)
		if renamed, ok := columnRenames[name]; ok {
			name = renamed
		}
		header[i] = name
		if name == ColumnYear {
			yearIdx = i
		}
	}
	if yearIdx < 0 {
		return nil, fmt.Errorf("historical dataset %s: %q: %w", path, ColumnYear, ErrMissingColumn)
	}

	var years []int
	columns := make(map[string][]float64)
	for rowNum, record := range records[1:] {
		if len(record) != len(header) {
			return nil, fmt.Errorf("historical dataset %s row %d has %d fields, expected %d", path, rowNum+2, len(record), len(header))
		}
		year, err := strconv.Atoi(strings.TrimSpace(record[yearIdx]))
		if err != nil {
			return nil, fmt.Errorf("historical dataset %s row %d: invalid year %q", path, rowNum+2, record[yearIdx])
		}
		years = append(years, year)
		for i, field := range record {
			if i == yearIdx {
				continue
			}
			value, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("historical dataset %s row %d column %q: invalid value %q", path, rowNum+2, header[i], field)
			}
			columns[header[i]] = append(columns[header[i]], value)
		}
	}

	series, err := NewHistoricalSeries(years, columns)
	if err != nil {
		return nil, fmt.Errorf("historical dataset %s: %w", path, err)
	}
	return series, nil
}

// LoadStructuralCSV reads a structural line-item file with columns
// tahun, komponen, kategori, nilai. Unparseable nilai values coerce to 0,
// matching the permissive handling of hand-maintained input sheets.
func LoadStructuralCSV(path string) (*StructuralInputs, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return NewStructuralInputs(nil)
	}

	header := records[0]
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"tahun", "komponen", "kategori", "nilai"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("structural dataset %s is missing column %q", path, required)
		}
	}

	var rows []StructuralRow
	for rowNum, record := range records[1:] {
		if len(record) != len(header) {
			return nil, fmt.Errorf("structural dataset %s row %d has %d fields, expected %d", path, rowNum+2, len(record), len(header))
		}
		year, err := strconv.Atoi(strings.TrimSpace(record[idx["tahun"]]))
		if err != nil {
			return nil, fmt.Errorf("structural dataset %s row %d: invalid year %q", path, rowNum+2, record[idx["tahun"]])
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(record[idx["nilai"]]), 64)
		if err != nil {
			value = 0
		}
		rows = append(rows, StructuralRow{
			Year:      year,
			Component: strings.TrimSpace(record[idx["komponen"]]),
			Category:  Category(strings.ToLower(strings.TrimSpace(record[idx["kategori"]]))),
			Value:     value,
		})
	}

	inputs, err := NewStructuralInputs(rows)
	if err != nil {
		return nil, fmt.Errorf("structural dataset %s: %w", path, err)
	}
	return inputs, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error reading dataset file, %s", err)
	}
	defer func() {
		_ = file.Close()
	}()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error parsing dataset file %s, %s", path, err)
	}
	return records, nil
}
