package dataset

import "fmt"

// Category distinguishes additive from subtractive structural line items.
type Category string

const (
	// CategoryAdditive marks line items that add to potential ("penambah").
	CategoryAdditive Category = "penambah"

	// CategorySubtractive marks line items that reduce potential ("pengurang").
	CategorySubtractive Category = "pengurang"

	// CategoryTarget marks the adopted target pseudo-row, which joins
	// neither structural total.
	CategoryTarget Category = "target"
)

// StructuralRow is one manually-entered structural line item for a revenue
// stream: new-registration inflows, lapses, transfers, exemptions, arrears.
type StructuralRow struct {
	Year      int
	Component string
	Category  Category
	Value     float64
}

// StructuralInputs holds the structural line items for one revenue stream.
type StructuralInputs struct {
	rows []StructuralRow
}

// NewStructuralInputs constructs inputs from a row slice. A component may
// appear at most once per year: Value reads a single row while the totals sum
// every match, so duplicates would make the two disagree.
func NewStructuralInputs(rows []StructuralRow) (*StructuralInputs, error) {
	copied := make([]StructuralRow, len(rows))
	copy(copied, rows)
	seen := make(map[structuralKey]bool, len(copied))
	for _, row := range copied {
		key := structuralKey{year: row.Year, component: row.Component}
		if seen[key] {
			return nil, fmt.Errorf("component %q appears more than once for year %d: %w",
				row.Component, row.Year, ErrDuplicateComponent)
		}
		seen[key] = true
	}
	return &StructuralInputs{rows: copied}, nil
}

type structuralKey struct {
	year      int
	component string
}

// MustStructuralInputs is NewStructuralInputs for fixtures known to be well
// formed; it panics on a duplicate component.
func MustStructuralInputs(rows []StructuralRow) *StructuralInputs {
	inputs, err := NewStructuralInputs(rows)
	if err != nil {
		panic(err)
	}
	return inputs
}

// Rows returns a copy of the underlying rows.
func (in *StructuralInputs) Rows() []StructuralRow {
	rows := make([]StructuralRow, len(in.rows))
	copy(rows, in.rows)
	return rows
}

// ForYear returns the subset of rows for one year.
func (in *StructuralInputs) ForYear(year int) *StructuralInputs {
	var subset []StructuralRow
	for _, row := range in.rows {
		if row.Year == year {
			subset = append(subset, row)
		}
	}
	return &StructuralInputs{rows: subset}
}

// Value returns the value of the named component, defaulting to 0 when the
// component is absent. The permissive default is intentional; missing
// structural keys are not errors.
func (in *StructuralInputs) Value(component string) float64 {
	for _, row := range in.rows {
		if row.Component == component {
			return row.Value
		}
	}
	return 0
}

// TotalAdditive sums every row tagged as additive.
func (in *StructuralInputs) TotalAdditive() float64 {
	var total float64
	for _, row := range in.rows {
		if row.Category == CategoryAdditive {
			total += row.Value
		}
	}
	return total
}

// TotalSubtractive sums every row tagged as subtractive.
func (in *StructuralInputs) TotalSubtractive() float64 {
	var total float64
	for _, row := range in.rows {
		if row.Category == CategorySubtractive {
			total += row.Value
		}
	}
	return total
}
