package format

import (
	"fmt"
	"math"
	"strings"
)

// Rupiah returns a whole-rupiah currency string with dot thousands
// separators (e.g., "-Rp1.234.567"). Amounts are rounded to the nearest
// rupiah; sub-rupiah precision is not displayed.
func Rupiah(amount float64) string {
	formatted := groupThousands(math.Abs(amount))
	if amount < 0 {
		return "-Rp" + formatted
	}
	return "Rp" + formatted
}

// NumericRupiah returns a rupiah amount without the currency prefix but with
// separators (e.g., "-1.234.567").
func NumericRupiah(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
	}
	return sign + groupThousands(math.Abs(amount))
}

// RupiahTrillion renders an amount in trillions of rupiah with two decimal
// places (e.g., "Rp8,25 T"), using the Indonesian decimal comma.
func RupiahTrillion(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
	}
	trillions := math.Abs(amount) / 1e12
	formatted := strings.Replace(fmt.Sprintf("%.2f", trillions), ".", ",", 1)
	return sign + "Rp" + formatted + " T"
}

func groupThousands(value float64) string {
	intPart := fmt.Sprintf("%.0f", value)
	if len(intPart) <= 3 {
		return intPart
	}
	var builder strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			builder.WriteByte('.')
		}
		builder.WriteRune(digit)
	}
	return builder.String()
}
