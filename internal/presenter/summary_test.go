package presenter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"disciplinedash/internal/shared/testutil"
	"disciplinedash/pkg/contracts/domain"
)

func TestBuildSummary_SampleData(t *testing.T) {
	s := BuildSummary(testutil.SampleRows(), DefaultConfig(), SummaryOptions{})

	assert.Equal(t, "2023-24", s.Year)
	assert.Equal(t, "2021-22", s.FromYear)
	assert.Equal(t, "2023-24", s.ToYear)

	require.NotNil(t, s.BaselineChange)
	assert.InDelta(t, -0.76, s.BaselineChange.Change, 1e-9)
	assert.True(t, s.AllDecreased)

	require.Len(t, s.Improvements, 3)
	assert.Equal(t, "Afr. Amer./Black", s.Improvements[0].Group)
	assert.InDelta(t, -1.51, s.Improvements[0].Change, 1e-9)
	assert.Equal(t, "White", s.Improvements[1].Group)
	assert.Equal(t, "Asian", s.Improvements[2].Group)

	require.Len(t, s.TopDisparities, 2, "only groups above the baseline are highlighted")
	assert.Equal(t, "Afr. Amer./Black", s.TopDisparities[0].Group)
	assert.Equal(t, "Male", s.TopDisparities[1].Group)

	require.NotNil(t, s.HighestVsBase)
	assert.InDelta(t, 5.14/3.45, s.HighestVsBase.Ratio, 1e-9)

	require.NotNil(t, s.Lowest)
	assert.Equal(t, "Asian", s.Lowest.Group)

	require.NotNil(t, s.GenderGap)
	assert.Equal(t, "Male", s.GenderGap.Group)
	assert.Equal(t, "Female", s.GenderGap.Reference)

	assert.Contains(t, s.Statements, "Discipline rates decreased across all tracked student groups from 2021-22 to 2023-24")
	assert.Contains(t, s.Statements, "Overall rate for All Students dropped from 4.21% to 3.45% (-0.76 pp)")
	assert.Contains(t, s.Statements, "Asian have the lowest discipline rate in 2023-24 at 0.85%")
	assert.Contains(t, s.Statements, "Male students are disciplined at higher rates than Female students (4.44% vs 2.43% in 2023-24), a 1.8:1 ratio")
}

func TestBuildSummary_HighlightCount(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HighlightCount = 1

	s := BuildSummary(testutil.SampleRows(), cfg, SummaryOptions{})
	assert.Len(t, s.Improvements, 1)
	assert.Len(t, s.TopDisparities, 1)
}

func TestBuildSummary_RestrictedWindow(t *testing.T) {
	s := BuildSummary(testutil.SampleRows(), DefaultConfig(), SummaryOptions{
		Year:        "2022-23",
		TrendYears:  []string{"2022-23", "2023-24"},
		TrendGroups: []string{domain.BaselineGroup, "White"},
	})

	assert.Equal(t, "2022-23", s.Year)
	require.Len(t, s.Improvements, 1)
	assert.Equal(t, "White", s.Improvements[0].Group)
	assert.Nil(t, s.GenderGap, "no gender rows in 2022-23")
}

func TestBuildSummary_RisingRates(t *testing.T) {
	rows := []domain.Row{
		{Year: "2022-23", StudentGroup: domain.BaselineGroup, PercentDisciplined: 3},
		{Year: "2022-23", StudentGroup: "Asian", PercentDisciplined: 1},
		{Year: "2023-24", StudentGroup: domain.BaselineGroup, PercentDisciplined: 4},
		{Year: "2023-24", StudentGroup: "Asian", PercentDisciplined: 2},
	}

	s := BuildSummary(rows, DefaultConfig(), SummaryOptions{})

	assert.False(t, s.AllDecreased)
	assert.Empty(t, s.Improvements)
	assert.Contains(t, s.Statements, "Overall rate for All Students rose from 3.00% to 4.00% (+1.00 pp)")
	assert.Nil(t, s.HighestVsBase)
}

func TestBuildSummary_EmptyRows(t *testing.T) {
	s := BuildSummary(nil, DefaultConfig(), SummaryOptions{})

	assert.Equal(t, "", s.Year)
	assert.NotNil(t, s.Statements)
	assert.Empty(t, s.Statements)
	assert.Nil(t, s.BaselineChange)
	assert.Nil(t, s.Lowest)
}

func TestConfigFrom(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 1024, cfg.Width)
	assert.Equal(t, 3, cfg.HighlightCount)
	assert.Equal(t, []string{"Male", "Female"}, cfg.GenderGroups)
	assert.Equal(t, parseColor(cfg.TrendColors[0]), cfg.trendColor(len(cfg.TrendColors)))
}
