package dataprocessing

import (
	"sort"

	"disciplinedash/pkg/contracts/domain"
)

// LatestYearRanking returns every group's percent for targetYear sorted from
// highest to lowest. Equal percents keep their file order.
func LatestYearRanking(rows []domain.Row, targetYear string) []domain.RankedGroup {
	ranked := make([]domain.RankedGroup, 0)
	seen := make(map[string]struct{})

	for _, row := range rows {
		if row.Year != targetYear {
			continue
		}
		if _, dup := seen[row.StudentGroup]; dup {
			continue
		}
		seen[row.StudentGroup] = struct{}{}
		ranked = append(ranked, domain.RankedGroup{
			Group:   row.StudentGroup,
			Percent: row.PercentDisciplined,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Percent > ranked[j].Percent
	})

	return ranked
}

// TrendTable builds one point per requested year, in the order given. Each
// point carries the groups from the allow-list that have a row for that year.
func TrendTable(rows []domain.Row, years []string, groups []string) []domain.TrendPoint {
	index := indexRows(rows)
	points := make([]domain.TrendPoint, 0, len(years))

	for _, year := range years {
		point := domain.TrendPoint{
			Year:   year,
			Values: make(map[string]float64, len(groups)),
		}
		for _, group := range groups {
			if percent, ok := index[rowKey{year: year, group: group}]; ok {
				point.Values[group] = percent
			}
		}
		points = append(points, point)
	}

	return points
}

// Baseline returns the BaselineGroup percent for year. The boolean is false
// and the value 0 when the year has no baseline row.
func Baseline(rows []domain.Row, year string) (float64, bool) {
	for _, row := range rows {
		if row.Year == year && row.StudentGroup == domain.BaselineGroup {
			return row.PercentDisciplined, true
		}
	}
	return 0, false
}

// DisparityTable compares every group of targetYear with the baseline group
// and sorts the result from largest to smallest disparity.
func DisparityTable(rows []domain.Row, targetYear string) []domain.DisparityEntry {
	baseline, _ := Baseline(rows, targetYear)

	entries := make([]domain.DisparityEntry, 0)
	for _, ranked := range LatestYearRanking(rows, targetYear) {
		if ranked.Group == domain.BaselineGroup {
			continue
		}
		entries = append(entries, domain.DisparityEntry{
			Group:     ranked.Group,
			Percent:   ranked.Percent,
			Disparity: ranked.Percent - baseline,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Disparity > entries[j].Disparity
	})

	return entries
}

// Disparities returns the disparity table with its baseline attached
func Disparities(rows []domain.Row, targetYear string) domain.DisparityView {
	baseline, present := Baseline(rows, targetYear)
	return domain.DisparityView{
		Year:            targetYear,
		Baseline:        baseline,
		BaselinePresent: present,
		Entries:         DisparityTable(rows, targetYear),
	}
}

// Years lists the distinct school years in ascending label order
func Years(rows []domain.Row) []string {
	seen := make(map[string]struct{})
	years := make([]string, 0)
	for _, row := range rows {
		if _, ok := seen[row.Year]; ok {
			continue
		}
		seen[row.Year] = struct{}{}
		years = append(years, row.Year)
	}
	sort.Strings(years)
	return years
}

// Groups lists the distinct student groups in the order they first appear
func Groups(rows []domain.Row) []string {
	seen := make(map[string]struct{})
	groups := make([]string, 0)
	for _, row := range rows {
		if _, ok := seen[row.StudentGroup]; ok {
			continue
		}
		seen[row.StudentGroup] = struct{}{}
		groups = append(groups, row.StudentGroup)
	}
	return groups
}

// LatestYear returns the greatest year label, or "" for an empty dataset.
// Labels of the form "2023-24" order correctly as strings.
func LatestYear(rows []domain.Row) string {
	years := Years(rows)
	if len(years) == 0 {
		return ""
	}
	return years[len(years)-1]
}

// Describe summarizes a row slice
func Describe(rows []domain.Row) domain.DatasetInfo {
	return domain.DatasetInfo{
		Rows:   len(rows),
		Years:  Years(rows),
		Groups: Groups(rows),
	}
}

// indexRows maps each (year, group) pair to the percent of its first row
func indexRows(rows []domain.Row) map[rowKey]float64 {
	index := make(map[rowKey]float64, len(rows))
	for _, row := range rows {
		key := rowKey{year: row.Year, group: row.StudentGroup}
		if _, ok := index[key]; ok {
			continue
		}
		index[key] = row.PercentDisciplined
	}
	return index
}
