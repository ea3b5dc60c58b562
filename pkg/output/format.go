// Package output provides utilities for formatting and displaying projection results.
package output

import (
	"fmt"
	"strings"

	"github.com/bapenda-labs/pad-forecast/internal/projection"
	"github.com/bapenda-labs/pad-forecast/pkg/decomposition"
	"github.com/bapenda-labs/pad-forecast/pkg/format"
	"github.com/bapenda-labs/pad-forecast/pkg/macro"
	"github.com/bapenda-labs/pad-forecast/pkg/scenario"
	"github.com/bapenda-labs/pad-forecast/pkg/sensitivity"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// RenderDecomposition renders one stream's waterfall table. Subtotal and
// total rows are prefixed so they stand out in plain text.
func RenderDecomposition(table *decomposition.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- %s %d ---\n", table.Stream, table.Year)
	fmt.Fprintf(&b, "Uraian | Nilai\n")
	fmt.Fprintf(&b, "______ | _____\n")
	for _, row := range table.Rows {
		marker := "  "
		switch row.Kind {
		case decomposition.Subtotal:
			marker = " ="
		case decomposition.Total:
			marker = "=="
		}
		fmt.Fprintf(&b, "%s %s | %s\n", marker, row.Label, format.Rupiah(row.Amount))
	}
	return b.String()
}

// RenderMacro renders the per-variable macro impact table for one year.
func RenderMacro(impact *macro.ImpactResult) string {
	p := message.NewPrinter(language.Indonesian)
	var b strings.Builder
	fmt.Fprintf(&b, "--- Dampak Makro %d ---\n", impact.Year)
	fmt.Fprintf(&b, "Variabel | Baseline | Prediksi | Delta | Dampak\n")
	fmt.Fprintf(&b, "________ | ________ | ________ | _____ | ______\n")
	for _, row := range impact.Rows {
		_, _ = p.Fprintf(&b, "%s | %.2f | %.2f | %+.2f | ", row.Variable, row.Baseline, row.Predicted, row.Delta)
		fmt.Fprintf(&b, "%s\n", format.Rupiah(row.Impact))
	}
	fmt.Fprintf(&b, "Total (+): %s\n", format.Rupiah(impact.TotalPositive))
	fmt.Fprintf(&b, "Total (-): %s\n", format.Rupiah(impact.TotalNegative))
	return b.String()
}

// RenderSummary renders the stream-year headline table.
func RenderSummary(rows []projection.SummaryRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- Ringkasan ---\n")
	fmt.Fprintf(&b, "Jenis | Tahun | Potensi | Target | Sisa\n")
	fmt.Fprintf(&b, "_____ | _____ | _______ | ______ | ____\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "%s | %d | %s | %s | %s\n",
			row.Stream, row.Year,
			format.RupiahTrillion(row.Potential),
			format.RupiahTrillion(row.Target),
			format.RupiahTrillion(row.Remaining))
	}
	return b.String()
}

// RenderScenarios renders the per-method bound comparison.
func RenderScenarios(comparison *scenario.Comparison) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- Skenario (%s) ---\n", comparison.Mode)
	fmt.Fprintf(&b, "Metode | Pesimis | Moderat | Optimis | Range\n")
	fmt.Fprintf(&b, "______ | _______ | _______ | _______ | _____\n")
	for _, mb := range comparison.Methods {
		fmt.Fprintf(&b, "%s | %s | %s | %s | ±%.1f%%\n",
			mb.Method,
			format.RupiahTrillion(mb.Bounds.Pessimistic),
			format.RupiahTrillion(mb.Bounds.Moderate),
			format.RupiahTrillion(mb.Bounds.Optimistic),
			mb.Bounds.RangePct())
	}
	return b.String()
}

// RenderSensitivity renders the tornado rows, widest range first.
func RenderSensitivity(rows []sensitivity.Row) string {
	p := message.NewPrinter(language.Indonesian)
	var b strings.Builder
	fmt.Fprintf(&b, "--- Sensitivitas ---\n")
	fmt.Fprintf(&b, "Variabel | Nilai Dasar | Range | Elastisitas\n")
	fmt.Fprintf(&b, "________ | ___________ | _____ | ___________\n")
	for _, row := range rows {
		_, _ = p.Fprintf(&b, "%s | %.2f | ", row.Predictor, row.BaseValue)
		fmt.Fprintf(&b, "%s | %.4f\n", format.RupiahTrillion(row.TotalRange), row.Elasticity)
	}
	return b.String()
}

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(result *projection.Result) {
	for _, year := range result.Years {
		fmt.Print(RenderMacro(year.Macro))
		fmt.Printf("\n")
		fmt.Print(RenderDecomposition(year.PKB))
		fmt.Printf("\n")
		fmt.Print(RenderDecomposition(year.BBNKB))
		fmt.Printf("\n")
	}
	fmt.Print(RenderSummary(result.Summary))
	if result.Scenarios != nil {
		fmt.Printf("\n")
		fmt.Print(RenderScenarios(result.Scenarios))
	}
	if len(result.Sensitivity) > 0 {
		fmt.Printf("\n")
		fmt.Print(RenderSensitivity(result.Sensitivity))
	}
	for _, warning := range result.Warnings {
		fmt.Printf("WARNING: %s\n", warning)
	}
}

// CsvString renders every decomposition row across years and streams as one
// CSV table.
func CsvString(result *projection.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, `"stream","year","label","kind","amount"`)
	fmt.Fprintf(&b, "\n")
	for _, year := range result.Years {
		for _, table := range []*decomposition.Table{year.PKB, year.BBNKB} {
			for _, row := range table.Rows {
				fmt.Fprintf(&b, `"%s","%d","%s","%s","%.2f"`,
					table.Stream, table.Year, row.Label, row.Kind, row.Amount)
				fmt.Fprintf(&b, "\n")
			}
		}
	}
	return b.String()
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(result *projection.Result) {
	fmt.Print(CsvString(result))
}
