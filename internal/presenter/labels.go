package presenter

import (
	"fmt"
	"strings"
)

// FormatYearLabel splits a school year label after its dash so narrow axes
// can print it on two lines: "2023-24" becomes "2023-\n24". Labels without
// a dash are returned unchanged.
func FormatYearLabel(year string) string {
	i := strings.Index(year, "-")
	if i < 0 || i == len(year)-1 {
		return year
	}
	return year[:i+1] + "\n" + year[i+1:]
}

// FormatPercent renders a percent value for display
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// FormatPoints renders a difference in percentage points with its sign
func FormatPoints(v float64) string {
	if v == 0 {
		return "0.00 pp"
	}
	return fmt.Sprintf("%+.2f pp", v)
}

// joinList joins items as "a", "a and b" or "a, b and c"
func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}
