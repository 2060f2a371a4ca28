package exporter

import (
	"fmt"
)

// formatPercent formats a percent with exactly 2 decimal places
func formatPercent(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatSigned formats a difference with an explicit sign so that
// increases and decreases read the same way in every sink
func formatSigned(f float64) string {
	if f == 0 {
		return "0.00"
	}
	return fmt.Sprintf("%+.2f", f)
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
