package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"disciplinedash/internal/shared/testutil"
)

func runReport(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "defaults", args: nil},
		{name: "single view", args: []string{"-view", "ranking", "-format", "csv"}},
		{name: "unknown view", args: []string{"-view", "heatmap"}, wantErr: `unknown view "heatmap"`},
		{name: "unknown format", args: []string{"-format", "pdf"}, wantErr: `unknown format "pdf"`},
		{name: "binary format needs out", args: []string{"-format", "xlsx"}, wantErr: "-format xlsx needs -out"},
		{name: "summary as csv", args: []string{"-view", "summary", "-format", "csv"}, wantErr: "only available as table or json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseFlags(tt.args, &bytes.Buffer{})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, opts.view)
		})
	}
}

func TestRun_Table(t *testing.T) {
	source := testutil.WriteSampleCSV(t, t.TempDir())

	code, stdout, _ := runReport(t, "-in", source)

	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "== Ranking ==")
	assert.Contains(t, stdout, "== Trends ==")
	assert.Contains(t, stdout, "== Summary ==")
	assert.Contains(t, stdout, "Afr. Amer./Black")
	assert.Contains(t, stdout, "5.14")
}

func TestRun_JSONYear(t *testing.T) {
	source := testutil.WriteSampleCSV(t, t.TempDir())

	code, stdout, _ := runReport(t, "-in", source, "-view", "ranking", "-format", "json", "-year", "2021-22")
	require.Equal(t, 0, code)

	var result map[string]struct {
		Year    string `json:"year"`
		Entries []struct {
			Group string `json:"group"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	require.Contains(t, result, "ranking")
	assert.Equal(t, "2021-22", result["ranking"].Year)
	assert.Len(t, result["ranking"].Entries, 4)
}

func TestRun_CSVToDirectory(t *testing.T) {
	source := testutil.WriteSampleCSV(t, t.TempDir())
	out := t.TempDir()

	code, stdout, _ := runReport(t, "-in", source, "-format", "csv", "-out", out)
	require.Equal(t, 0, code)

	for _, name := range []string{"ranking.csv", "trends.csv", "disparities.csv"} {
		data, err := os.ReadFile(filepath.Join(out, name))
		require.NoError(t, err, name)
		assert.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}), name)
		assert.Contains(t, stdout, name)
	}
}

func TestRun_Workbook(t *testing.T) {
	source := testutil.WriteSampleCSV(t, t.TempDir())
	target := filepath.Join(t.TempDir(), "report.xlsx")

	code, _, _ := runReport(t, "-in", source, "-format", "xlsx", "-out", target)
	require.Equal(t, 0, code)

	f, err := excelize.OpenFile(target)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Ranking", "Trends", "Disparities"}, f.GetSheetList())
}

func TestRun_Charts(t *testing.T) {
	source := testutil.WriteSampleCSV(t, t.TempDir())
	out := t.TempDir()

	code, _, _ := runReport(t, "-in", source, "-view", "disparities", "-format", "svg", "-out", out)
	require.Equal(t, 0, code)

	data, err := os.ReadFile(filepath.Join(out, "disparities.svg"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "<svg"))
}

func TestRun_LoadFailure(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "broken.csv")
	require.NoError(t, os.WriteFile(source,
		[]byte(strings.Join(testutil.SampleHeader, ",")+"\n2023-24,All Students,lots\n"), 0o644))

	code, stdout, stderr := runReport(t, "-in", source)

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Failed to load dataset")
	assert.Contains(t, stderr, "line 2")
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := runReport(t, "-version")

	assert.Equal(t, 0, code)
	assert.NotEmpty(t, strings.TrimSpace(stdout))
}

func TestRun_BadFlags(t *testing.T) {
	code, _, stderr := runReport(t, "-format", "pdf")

	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "unknown format")
}
