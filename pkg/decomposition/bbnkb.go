package decomposition

import (
	"fmt"

	"github.com/bapenda-labs/pad-forecast/pkg/dataset"
)

// Named BBNKB structural components.
const (
	ComponentTotal    = "Total"
	ComponentWithheld = "Pengurang"
)

// BuildBBNKBTable assembles the BBNKB table for one year. The layout is not
// a generalization of the PKB waterfall: the first projection year carries
// only new-vehicle line items and a precomputed total, while subsequent
// years subtract a withheld/not-collected component from the new-vehicle
// total.
func BuildBBNKBTable(year, firstYear int, inputs *dataset.StructuralInputs, target float64) *Table {
	if year == firstYear {
		total := inputs.Value(ComponentTotal)
		rows := []Row{
			{Label: "RODA 4 (Jan–Des)", Amount: inputs.Value(ComponentFourWheel), Kind: LineItem},
			{Label: "RODA 2 (Jan–Des)", Amount: inputs.Value(ComponentTwoWheel), Kind: LineItem},
			{Label: fmt.Sprintf("TOTAL POTENSI BBN I TAHUN %d", year), Amount: total, Kind: Subtotal},
			{Label: fmt.Sprintf("TOTAL POTENSI BBNKB TAHUN %d", year), Amount: total, Kind: Total},
			{Label: fmt.Sprintf("TARGET R-APBD %d", year), Amount: target, Kind: Total},
			{Label: "SISA POTENSI", Amount: total - target, Kind: Total},
		}
		return &Table{
			Stream:             StreamBBNKB,
			Year:               year,
			Rows:               rows,
			TotalPotential:     total,
			Target:             target,
			RemainingPotential: total - target,
		}
	}

	total := inputs.Value(ComponentTotal)
	withheld := inputs.Value(ComponentWithheld)
	net := total - withheld
	rows := []Row{
		{Label: fmt.Sprintf("Roda 4 (Jan–Des %d)", year), Amount: inputs.Value(ComponentFourWheel), Kind: LineItem},
		{Label: fmt.Sprintf("Roda 2 (Jan–Des %d)", year), Amount: inputs.Value(ComponentTwoWheel), Kind: LineItem},
		{Label: fmt.Sprintf("Total Potensi Kendaraan Baru Tahun %d", year), Amount: total, Kind: Subtotal},
		{Label: "Potensi BBN II Tidak Dipungut", Amount: withheld, Kind: LineItem},
		{Label: "Total Pengurang", Amount: withheld, Kind: Subtotal},
		{Label: fmt.Sprintf("Total Potensi BBNKB Tahun %d", year), Amount: net, Kind: Total},
		{Label: fmt.Sprintf("Target BBNKB pada R-APBD %d", year), Amount: target, Kind: Total},
		{Label: "Sisa Potensi", Amount: net - target, Kind: Total},
	}
	return &Table{
		Stream:             StreamBBNKB,
		Year:               year,
		Rows:               rows,
		TotalPotential:     net,
		Target:             target,
		RemainingPotential: net - target,
	}
}
