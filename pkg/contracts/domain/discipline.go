package domain

// BaselineGroup is the student group every other group is compared against.
const BaselineGroup = "All Students"

// Row is one parsed observation from the discipline statistics file.
// Year and StudentGroup are opaque matching keys and are never normalized.
type Row struct {
	Year               string  `json:"year"`
	StudentGroup       string  `json:"student_group"`
	PercentDisciplined float64 `json:"percent_disciplined"`
}

// RankedGroup is a group's discipline percent for a single school year.
type RankedGroup struct {
	Group   string  `json:"group"`
	Percent float64 `json:"percent"`
}

// TrendPoint holds the percent of every requested group for one school year.
// A group without a matching row has no key in Values.
type TrendPoint struct {
	Year   string             `json:"year"`
	Values map[string]float64 `json:"values"`
}

// Value returns the percent recorded for group and whether it was present.
func (p TrendPoint) Value(group string) (float64, bool) {
	v, ok := p.Values[group]
	return v, ok
}

// DisparityEntry is a group's percent and its signed distance from the baseline.
type DisparityEntry struct {
	Group     string  `json:"group"`
	Percent   float64 `json:"percent"`
	Disparity float64 `json:"disparity"`
}
