// Package ui holds the presentation state shared by the desktop dashboard and
// the JSON API: selector filtering, metric labels and chart projection.
package ui

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatUSD renders v as "$1,234.56".
func FormatUSD(v float64) string {
	if v < 0 {
		return "-" + printer.Sprintf("$%.2f", math.Abs(v))
	}
	return printer.Sprintf("$%.2f", v)
}

// FormatPercent renders a signed percentage such as "+1.23%".
func FormatPercent(v float64) string {
	if v >= 0 {
		return fmt.Sprintf("+%.2f%%", v)
	}
	return fmt.Sprintf("%.2f%%", v)
}
