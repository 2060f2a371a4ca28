package presenter

import (
	"fmt"
	"sort"

	"disciplinedash/internal/dataprocessing"
	"disciplinedash/pkg/contracts/domain"
)

// SummaryOptions selects the years and groups a summary talks about
type SummaryOptions struct {
	// Year is the year of the disparity and ranking statements; empty means
	// the latest year in the rows.
	Year string
	// TrendYears bounds the change statements: first entry to last entry.
	// Empty means every year in the rows.
	TrendYears []string
	// TrendGroups limits the change statements; empty means every group.
	TrendGroups []string
}

// GroupChange is a group's percent at the start and end of the trend window
type GroupChange struct {
	Group  string  `json:"group"`
	From   float64 `json:"from"`
	To     float64 `json:"to"`
	Change float64 `json:"change"`
}

// RateRatio compares a group with a reference rate
type RateRatio struct {
	Group     string  `json:"group"`
	Percent   float64 `json:"percent"`
	Reference string  `json:"reference"`
	Against   float64 `json:"against"`
	Ratio     float64 `json:"ratio"`
}

// Summary is the narrative computed from the rows. Every field is optional
// and appears only when the data supports it.
type Summary struct {
	Year     string `json:"year"`
	FromYear string `json:"from_year,omitempty"`
	ToYear   string `json:"to_year,omitempty"`

	BaselineChange *GroupChange            `json:"baseline_change,omitempty"`
	AllDecreased   bool                    `json:"all_decreased"`
	Improvements   []GroupChange           `json:"improvements"`
	TopDisparities []domain.DisparityEntry `json:"top_disparities"`
	HighestVsBase  *RateRatio              `json:"highest_vs_baseline,omitempty"`
	Lowest         *domain.RankedGroup     `json:"lowest,omitempty"`
	GenderGap      *RateRatio              `json:"gender_gap,omitempty"`
	Statements     []string                `json:"statements"`
}

// BuildSummary derives the dashboard narrative from rows
func BuildSummary(rows []domain.Row, cfg Config, opts SummaryOptions) Summary {
	year := opts.Year
	if year == "" {
		year = dataprocessing.LatestYear(rows)
	}

	summary := Summary{
		Year:           year,
		Improvements:   make([]GroupChange, 0),
		TopDisparities: make([]domain.DisparityEntry, 0),
		Statements:     make([]string, 0),
	}
	limit := cfg.highlightCount()

	trendYears := opts.TrendYears
	if len(trendYears) == 0 {
		trendYears = dataprocessing.Years(rows)
	}
	if len(trendYears) >= 2 {
		summary.FromYear = trendYears[0]
		summary.ToYear = trendYears[len(trendYears)-1]
		summarizeChanges(&summary, rows, opts.TrendGroups, limit)
	}

	summarizeYear(&summary, rows, limit)
	summarizeGender(&summary, rows, cfg.GenderGroups)

	return summary
}

func summarizeChanges(s *Summary, rows []domain.Row, groups []string, limit int) {
	if len(groups) == 0 {
		groups = dataprocessing.Groups(rows)
	}
	points := dataprocessing.TrendTable(rows, []string{s.FromYear, s.ToYear}, groups)
	from, to := points[0], points[1]

	changes := make([]GroupChange, 0, len(groups))
	for _, group := range groups {
		start, ok1 := from.Value(group)
		end, ok2 := to.Value(group)
		if !ok1 || !ok2 {
			continue
		}
		change := GroupChange{Group: group, From: start, To: end, Change: end - start}
		if group == domain.BaselineGroup {
			c := change
			s.BaselineChange = &c
			continue
		}
		changes = append(changes, change)
	}

	if len(changes) > 0 {
		s.AllDecreased = true
		for _, c := range changes {
			if c.Change >= 0 {
				s.AllDecreased = false
				break
			}
		}
	}
	if s.AllDecreased && (s.BaselineChange == nil || s.BaselineChange.Change < 0) {
		s.Statements = append(s.Statements, fmt.Sprintf(
			"Discipline rates decreased across all tracked student groups from %s to %s", s.FromYear, s.ToYear))
	}

	if c := s.BaselineChange; c != nil {
		s.Statements = append(s.Statements, fmt.Sprintf(
			"Overall rate for %s %s from %s to %s (%s)",
			domain.BaselineGroup, direction(c.Change), FormatPercent(c.From), FormatPercent(c.To), FormatPoints(c.Change)))
	}

	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].Change < changes[j].Change
	})
	for _, c := range changes {
		if c.Change >= 0 || len(s.Improvements) == limit {
			break
		}
		s.Improvements = append(s.Improvements, c)
	}
	if len(s.Improvements) > 0 {
		parts := make([]string, 0, len(s.Improvements))
		for _, c := range s.Improvements {
			parts = append(parts, fmt.Sprintf("%s (%s)", c.Group, FormatPoints(c.Change)))
		}
		s.Statements = append(s.Statements, "The largest improvements were seen in "+joinList(parts))
	}
}

func summarizeYear(s *Summary, rows []domain.Row, limit int) {
	view := dataprocessing.Disparities(rows, s.Year)

	for _, entry := range view.Entries {
		if entry.Disparity <= 0 || len(s.TopDisparities) == limit {
			break
		}
		s.TopDisparities = append(s.TopDisparities, entry)
	}
	if len(s.TopDisparities) > 0 {
		parts := make([]string, 0, len(s.TopDisparities))
		for _, e := range s.TopDisparities {
			parts = append(parts, fmt.Sprintf("%s (%s)", e.Group, FormatPoints(e.Disparity)))
		}
		s.Statements = append(s.Statements, fmt.Sprintf(
			"Groups with the highest disparities in %s: %s", s.Year, joinList(parts)))
	}

	if view.BaselinePresent && view.Baseline > 0 && len(view.Entries) > 0 && view.Entries[0].Disparity > 0 {
		top := view.Entries[0]
		s.HighestVsBase = &RateRatio{
			Group:     top.Group,
			Percent:   top.Percent,
			Reference: domain.BaselineGroup,
			Against:   view.Baseline,
			Ratio:     top.Percent / view.Baseline,
		}
		s.Statements = append(s.Statements, fmt.Sprintf(
			"%s are disciplined at %.1fx the rate of %s (%s vs %s)",
			top.Group, s.HighestVsBase.Ratio, domain.BaselineGroup, FormatPercent(top.Percent), FormatPercent(view.Baseline)))
	}

	ranking := dataprocessing.LatestYearRanking(rows, s.Year)
	if len(ranking) > 1 {
		lowest := ranking[len(ranking)-1]
		s.Lowest = &lowest
		s.Statements = append(s.Statements, fmt.Sprintf(
			"%s have the lowest discipline rate in %s at %s", lowest.Group, s.Year, FormatPercent(lowest.Percent)))
	}
}

func summarizeGender(s *Summary, rows []domain.Row, genders []string) {
	if len(genders) != 2 {
		return
	}
	point := dataprocessing.TrendTable(rows, []string{s.Year}, genders)[0]
	a, okA := point.Value(genders[0])
	b, okB := point.Value(genders[1])
	if !okA || !okB {
		return
	}

	high, low, highName, lowName := a, b, genders[0], genders[1]
	if b > a {
		high, low, highName, lowName = b, a, genders[1], genders[0]
	}
	if high == low {
		s.Statements = append(s.Statements, fmt.Sprintf(
			"%s and %s students are disciplined at the same rate (%s in %s)", highName, lowName, FormatPercent(high), s.Year))
		return
	}

	gap := &RateRatio{Group: highName, Percent: high, Reference: lowName, Against: low}
	msg := fmt.Sprintf("%s students are disciplined at higher rates than %s students (%s vs %s in %s)",
		highName, lowName, FormatPercent(high), FormatPercent(low), s.Year)
	if low > 0 {
		gap.Ratio = high / low
		msg += fmt.Sprintf(", a %.1f:1 ratio", gap.Ratio)
	}
	s.GenderGap = gap
	s.Statements = append(s.Statements, msg)
}

func direction(change float64) string {
	switch {
	case change < 0:
		return "dropped"
	case change > 0:
		return "rose"
	}
	return "held steady"
}
