package decomposition

import (
	"fmt"

	"github.com/bapenda-labs/pad-forecast/pkg/dataset"
	"github.com/bapenda-labs/pad-forecast/pkg/macro"
)

// Named PKB structural components. Lookups that miss default to zero.
const (
	ComponentOpening     = "Potensi Awal"
	ComponentFourWheel   = "R4"
	ComponentTwoWheel    = "R2"
	ComponentArrears     = "Tunggakan"
	ComponentTransferIn  = "Mutasi Masuk"
	ComponentLapsed      = "TDR"
	ComponentTransferOut = "Mutasi Keluar"
	ComponentExemption   = "Pembebasan"
)

// StreamPKB and StreamBBNKB name the two modeled revenue streams.
const (
	StreamPKB   = "PKB"
	StreamBBNKB = "BBNKB"
)

// BuildPKBTable assembles the PKB waterfall for one year: structural
// additive and subtractive line items, their subtotals, both macro impact
// buckets, the grand total, the external target, and the recomputed
// remainder.
//
//	total potential = total additive - total subtractive
//	                + macro positive impact + macro negative impact
func BuildPKBTable(year int, inputs *dataset.StructuralInputs, impact *macro.ImpactResult, target float64) *Table {
	totalAdditive := inputs.TotalAdditive()
	totalSubtractive := inputs.TotalSubtractive()
	totalPotential := totalAdditive - totalSubtractive + impact.TotalPositive + impact.TotalNegative

	rows := []Row{
		{Label: "Potensi Awal Tahun", Amount: inputs.Value(ComponentOpening), Kind: LineItem},
		{Label: "RODA 4 (Jan–Des)", Amount: inputs.Value(ComponentFourWheel), Kind: LineItem},
		{Label: "RODA 2 (Jan–Des)", Amount: inputs.Value(ComponentTwoWheel), Kind: LineItem},
		{Label: "Prediksi Pencairan Tunggakan", Amount: inputs.Value(ComponentArrears), Kind: LineItem},
		{Label: "Prediksi Mutasi Masuk (Jan–Des)", Amount: inputs.Value(ComponentTransferIn), Kind: LineItem},
		{Label: "TOTAL PENAMBAH", Amount: totalAdditive, Kind: Subtotal},
		{Label: "Proyeksi tidak daftar ulang (Jan–Des)", Amount: -inputs.Value(ComponentLapsed), Kind: LineItem},
		{Label: "Proyeksi Mutasi Keluar (Jan–Des)", Amount: -inputs.Value(ComponentTransferOut), Kind: LineItem},
		{Label: "Potensi Pembebasan Pajak Daerah", Amount: -inputs.Value(ComponentExemption), Kind: LineItem},
		{Label: "TOTAL PENGURANG", Amount: -totalSubtractive, Kind: Subtotal},
		{Label: "Dampak Makro (+)", Amount: impact.TotalPositive, Kind: LineItem},
		{Label: "Dampak Makro (-)", Amount: impact.TotalNegative, Kind: LineItem},
		{Label: fmt.Sprintf("TOTAL POTENSI PKB TAHUN %d", year), Amount: totalPotential, Kind: Total},
		{Label: fmt.Sprintf("TARGET R-APBD %d", year), Amount: target, Kind: Total},
		{Label: "SISA POTENSI", Amount: totalPotential - target, Kind: Total},
	}

	return &Table{
		Stream:             StreamPKB,
		Year:               year,
		Rows:               rows,
		TotalPotential:     totalPotential,
		Target:             target,
		RemainingPotential: totalPotential - target,
	}
}
