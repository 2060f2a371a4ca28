package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"disciplinedash/pkg/contracts/domain"
)

// SampleHeader is the header row of the published discipline export
var SampleHeader = []string{"Year", "Student Group", " Percent of Students Disciplined"}

// SampleRows returns a three-year dataset with a baseline row per year
func SampleRows() []domain.Row {
	return []domain.Row{
		{Year: "2021-22", StudentGroup: domain.BaselineGroup, PercentDisciplined: 4.21},
		{Year: "2021-22", StudentGroup: "Afr. Amer./Black", PercentDisciplined: 6.65},
		{Year: "2021-22", StudentGroup: "Asian", PercentDisciplined: 1.02},
		{Year: "2021-22", StudentGroup: "White", PercentDisciplined: 3.12},
		{Year: "2022-23", StudentGroup: domain.BaselineGroup, PercentDisciplined: 3.92},
		{Year: "2022-23", StudentGroup: "Afr. Amer./Black", PercentDisciplined: 5.88},
		{Year: "2022-23", StudentGroup: "Asian", PercentDisciplined: 0.91},
		{Year: "2022-23", StudentGroup: "White", PercentDisciplined: 2.97},
		{Year: "2023-24", StudentGroup: domain.BaselineGroup, PercentDisciplined: 3.45},
		{Year: "2023-24", StudentGroup: "Afr. Amer./Black", PercentDisciplined: 5.14},
		{Year: "2023-24", StudentGroup: "Asian", PercentDisciplined: 0.85},
		{Year: "2023-24", StudentGroup: "White", PercentDisciplined: 2.61},
		{Year: "2023-24", StudentGroup: "Male", PercentDisciplined: 4.44},
		{Year: "2023-24", StudentGroup: "Female", PercentDisciplined: 2.43},
	}
}

// WriteRowsCSV writes rows in the export format to dir/name and returns the path
func WriteRowsCSV(t *testing.T, dir, name string, rows []domain.Row) string {
	t.Helper()

	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(SampleHeader); err != nil {
		t.Fatalf("write fixture header: %v", err)
	}
	for _, row := range rows {
		record := []string{row.Year, row.StudentGroup, strconv.FormatFloat(row.PercentDisciplined, 'f', -1, 64)}
		if err := w.Write(record); err != nil {
			t.Fatalf("write fixture row: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("flush fixture: %v", err)
	}
	return path
}

// WriteSampleCSV writes SampleRows to dir/discipline.csv
func WriteSampleCSV(t *testing.T, dir string) string {
	t.Helper()
	return WriteRowsCSV(t, dir, "discipline.csv", SampleRows())
}
