package exporter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"disciplinedash/internal/files"
	"disciplinedash/internal/shared/testutil"
)

func newTestCSVWriter(t *testing.T) (*CSVWriter, string) {
	t.Helper()
	dir := t.TempDir()
	logger, _ := testutil.NewTestLogger(t)
	return NewCSVWriter(files.NewManager(dir, logger), logger), dir
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	tests := []struct {
		name     string
		options  WriteOptions
		expected string
	}{
		{
			name: "headers and records",
			options: WriteOptions{
				Headers: []string{"Student Group", "Percent Disciplined"},
				Records: [][]string{{"Asian", "0.85"}},
			},
			expected: "Student Group,Percent Disciplined\nAsian,0.85\n",
		},
		{
			name: "fields with delimiters are quoted",
			options: WriteOptions{
				Records: [][]string{{"Hispanic, Latino", "3.98"}},
			},
			expected: "\"Hispanic, Latino\",3.98\n",
		},
		{
			name: "BOM prefix",
			options: WriteOptions{
				Headers:   []string{"Year"},
				BOMPrefix: true,
			},
			expected: "\ufeffYear\n",
		},
		{
			name:     "nothing to write",
			options:  WriteOptions{},
			expected: "",
		},
	}

	writer, _ := newTestCSVWriter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, writer.WriteCSV(&buf, tt.options))
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestCSVWriter_Save(t *testing.T) {
	writer, dir := newTestCSVWriter(t)

	path, err := writer.Save("views/ranking_2023-24.csv", RankingTable(sampleRanking()))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "views", "ranking_2023-24.csv"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(content, utf8BOM))

	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, utf8BOM))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"Rank", "Student Group", "Percent Disciplined"}, records[0])
	assert.Equal(t, []string{"3", "Asian", "0.85"}, records[3])
}

func TestCSVWriter_SaveWithoutManager(t *testing.T) {
	writer := NewCSVWriter(nil, nil)

	_, err := writer.Save("ranking.csv", RankingTable(sampleRanking()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no output directory")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestCSVWriter_WriteFailure(t *testing.T) {
	writer, _ := newTestCSVWriter(t)

	err := writer.Write(failingWriter{}, RankingTable(sampleRanking()))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "disk full"))
}
