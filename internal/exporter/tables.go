package exporter

import (
	"fmt"

	"disciplinedash/pkg/contracts/domain"
)

// Table is a view flattened into a header row and string records
type Table struct {
	// Name identifies the view; it becomes the sheet name in a workbook.
	Name    string
	Headers []string
	Records [][]string

	// values keeps the numeric cells so spreadsheet sinks can store numbers
	// instead of text. nil marks an absent value.
	values [][]interface{}
}

// Values returns the typed cells of every record
func (t Table) Values() [][]interface{} {
	if t.values != nil {
		return t.values
	}
	values := make([][]interface{}, len(t.Records))
	for i, record := range t.Records {
		row := make([]interface{}, len(record))
		for j, cell := range record {
			row[j] = cell
		}
		values[i] = row
	}
	return values
}

// RankingTable flattens a ranking view. Rank numbers start at 1.
func RankingTable(view domain.RankingView) Table {
	table := Table{
		Name:    "Ranking",
		Headers: []string{"Rank", "Student Group", "Percent Disciplined"},
		Records: make([][]string, 0, len(view.Entries)),
		values:  make([][]interface{}, 0, len(view.Entries)),
	}
	for i, entry := range view.Entries {
		table.Records = append(table.Records, []string{
			fmt.Sprintf("%d", i+1),
			entry.Group,
			formatPercent(entry.Percent),
		})
		table.values = append(table.values, []interface{}{i + 1, entry.Group, entry.Percent})
	}
	return table
}

// TrendTable flattens a trend view into one record per year with a column
// per group. A group without data for a year leaves its cell empty.
func TrendTable(view domain.TrendView) Table {
	headers := make([]string, 0, len(view.Groups)+1)
	headers = append(headers, "Year")
	headers = append(headers, view.Groups...)

	table := Table{
		Name:    "Trends",
		Headers: headers,
		Records: make([][]string, 0, len(view.Points)),
		values:  make([][]interface{}, 0, len(view.Points)),
	}
	for _, point := range view.Points {
		record := []string{point.Year}
		values := []interface{}{point.Year}
		for _, group := range view.Groups {
			if percent, ok := point.Value(group); ok {
				record = append(record, formatPercent(percent))
				values = append(values, percent)
			} else {
				record = append(record, "")
				values = append(values, nil)
			}
		}
		table.Records = append(table.Records, record)
		table.values = append(table.values, values)
	}
	return table
}

// DisparityTable flattens a disparity view. The baseline column repeats
// the baseline percent so each record stands on its own.
func DisparityTable(view domain.DisparityView) Table {
	table := Table{
		Name:    "Disparities",
		Headers: []string{"Student Group", "Percent Disciplined", "Baseline", "Disparity"},
		Records: make([][]string, 0, len(view.Entries)),
		values:  make([][]interface{}, 0, len(view.Entries)),
	}
	for _, entry := range view.Entries {
		table.Records = append(table.Records, []string{
			entry.Group,
			formatPercent(entry.Percent),
			formatPercent(view.Baseline),
			formatSigned(entry.Disparity),
		})
		table.values = append(table.values, []interface{}{entry.Group, entry.Percent, view.Baseline, entry.Disparity})
	}
	return table
}

// StatusTable flattens the dataset status into key/value records
func StatusTable(status domain.DatasetStatus) Table {
	loadedAt := ""
	if status.LoadedAt != nil {
		loadedAt = status.LoadedAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	records := [][]string{
		{"state", string(status.State)},
		{"source", status.Source},
		{"loaded_at", loadedAt},
		{"rows", fmt.Sprintf("%d", status.Rows)},
		{"years", fmt.Sprintf("%d", len(status.Years))},
		{"groups", fmt.Sprintf("%d", len(status.Groups))},
		{"has_error", formatBool(status.LastError != "")},
	}
	return Table{
		Name:    "Dataset",
		Headers: []string{"Field", "Value"},
		Records: records,
	}
}
