package exporter

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"disciplinedash/internal/files"
	"disciplinedash/internal/shared/testutil"
)

func TestWorkbookWriter_Write(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	writer := NewWorkbookWriter(nil, logger)

	var buf bytes.Buffer
	require.NoError(t, writer.Write(&buf,
		RankingTable(sampleRanking()),
		TrendTable(sampleTrends()),
		DisparityTable(sampleDisparities()),
	))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Ranking", "Trends", "Disparities"}, f.GetSheetList())

	rows, err := f.GetRows("Ranking")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Rank", "Student Group", "Percent Disciplined"}, rows[0])
	assert.Equal(t, "Afr. Amer./Black", rows[1][1])

	raw, err := f.GetCellValue("Ranking", "C2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "5.14", raw)

	trendRows, err := f.GetRows("Trends")
	require.NoError(t, err)
	require.Len(t, trendRows, 3)
	assert.Equal(t, "2022-23", trendRows[1][0])

	empty, err := f.GetCellValue("Trends", "C2")
	require.NoError(t, err)
	assert.Empty(t, empty, "absent group leaves the cell empty")
}

func TestWorkbookWriter_Save(t *testing.T) {
	dir := t.TempDir()
	logger, logHandler := testutil.NewTestLogger(t)
	writer := NewWorkbookWriter(files.NewManager(dir, logger), logger)

	path, err := writer.Save("discipline.xlsx", RankingTable(sampleRanking()))
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)
	assert.True(t, logHandler.ContainsMessage("Exported workbook"))
}

func TestWorkbookWriter_NoTables(t *testing.T) {
	writer := NewWorkbookWriter(nil, nil)

	var buf bytes.Buffer
	err := writer.Write(&buf)
	require.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Sheet3", sheetName("", 2))
	assert.Equal(t, "Ranking", sheetName("Ranking", 0))
	assert.Len(t, sheetName("Percent of Students Disciplined by Year", 0), 31)
}
