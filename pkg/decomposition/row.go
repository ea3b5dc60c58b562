// Package decomposition builds the ordered waterfall tables that explain how
// a revenue stream's total potential is composed from structural line items
// and aggregated macro impact.
package decomposition

// RowKind tells a renderer how to draw a waterfall row. The producer sets
// it explicitly; consumers never infer the kind from label text.
type RowKind int

const (
	// LineItem rows are added cumulatively (relative bars).
	LineItem RowKind = iota

	// Subtotal rows are intermediate running totals (absolute bars).
	Subtotal

	// Total rows are grand totals, targets, and remainders (absolute bars).
	Total
)

// String returns the renderer-facing name of the row kind.
func (k RowKind) String() string {
	switch k {
	case LineItem:
		return "line_item"
	case Subtotal:
		return "subtotal"
	case Total:
		return "total"
	}
	return "unknown"
}

// Row is one labeled, signed entry of a waterfall table.
type Row struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
	Kind   RowKind `json:"kind"`
}

// Table is an ordered waterfall decomposition for one (stream, year).
// RemainingPotential is always recomputed as TotalPotential - Target and
// never stored independently.
type Table struct {
	Stream             string  `json:"stream"`
	Year               int     `json:"year"`
	Rows               []Row   `json:"rows"`
	TotalPotential     float64 `json:"totalPotential"`
	Target             float64 `json:"target"`
	RemainingPotential float64 `json:"remainingPotential"`
}
