package presenter

import (
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"disciplinedash/internal/config"
)

// Config controls chart rendering and the narrative summary
type Config struct {
	Width  int
	Height int

	BarColor      string
	PositiveColor string
	NegativeColor string
	TrendColors   []string

	// HighlightCount caps how many groups a summary statement lists.
	HighlightCount int
	TrendTitle     string

	// GenderGroups are compared in the summary when both have data.
	GenderGroups []string
}

// DefaultConfig returns the presenter settings of the default configuration
func DefaultConfig() Config {
	def := config.Default()
	return ConfigFrom(def.Presenter, def.Analysis)
}

// ConfigFrom builds a presenter config from the application configuration
func ConfigFrom(p config.PresenterConfig, a config.AnalysisConfig) Config {
	return Config{
		Width:          p.ChartWidth,
		Height:         p.ChartHeight,
		BarColor:       p.BarColor,
		PositiveColor:  p.PositiveColor,
		NegativeColor:  p.NegativeColor,
		TrendColors:    append([]string(nil), p.TrendColors...),
		HighlightCount: p.HighlightCount,
		TrendTitle:     p.TrendTitle,
		GenderGroups:   append([]string(nil), a.GenderGroups...),
	}
}

func (c Config) highlightCount() int {
	if c.HighlightCount <= 0 {
		return 3
	}
	return c.HighlightCount
}

// trendColor cycles through the palette so any number of groups gets a color
func (c Config) trendColor(i int) drawing.Color {
	if len(c.TrendColors) == 0 {
		return parseColor(c.BarColor)
	}
	return parseColor(c.TrendColors[i%len(c.TrendColors)])
}

func parseColor(hex string) drawing.Color {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 3 && len(hex) != 6 {
		return drawing.ColorBlack
	}
	return drawing.ColorFromHex(hex)
}
