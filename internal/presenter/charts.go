package presenter

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"

	"disciplinedash/pkg/contracts/domain"
)

// ErrNoData is returned when a view has nothing to draw
var ErrNoData = errors.New("no data to chart")

// Format is an image encoding supported by the renderer
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ParseFormat validates an image format name
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatPNG, FormatSVG:
		return Format(s), nil
	}
	return "", fmt.Errorf("unsupported chart format %q", s)
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

func (f Format) provider() chart.RendererProvider {
	if f == FormatSVG {
		return chart.SVG
	}
	return chart.PNG
}

// Renderer draws the derived views as charts
type Renderer struct {
	cfg    Config
	logger *slog.Logger
}

// NewRenderer creates a chart renderer
func NewRenderer(cfg Config, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{cfg: cfg, logger: logger.With("component", "presenter")}
}

// Config returns the renderer settings
func (r *Renderer) Config() Config {
	return r.cfg
}

// RankingChart draws one bar per group, highest first
func (r *Renderer) RankingChart(view domain.RankingView, format Format) ([]byte, error) {
	if len(view.Entries) == 0 {
		return nil, ErrNoData
	}

	bars := make([]chart.Value, 0, len(view.Entries))
	values := make([]float64, 0, len(view.Entries))
	color := parseColor(r.cfg.BarColor)
	for _, entry := range view.Entries {
		bars = append(bars, chart.Value{
			Label: entry.Group,
			Value: entry.Percent,
			Style: chart.Style{FillColor: color, StrokeColor: color},
		})
		values = append(values, entry.Percent)
	}

	bc := r.barChart(fmt.Sprintf("Percent of Students Disciplined, %s", view.Year), bars, values)
	return r.render(format, "ranking", len(bars), func(buf *bytes.Buffer) error {
		return bc.Render(format.provider(), buf)
	})
}

// DisparityChart draws each group's distance from the baseline. Bars above
// the baseline use the positive color, bars below it the negative color.
func (r *Renderer) DisparityChart(view domain.DisparityView, format Format) ([]byte, error) {
	if len(view.Entries) == 0 {
		return nil, ErrNoData
	}

	positive := parseColor(r.cfg.PositiveColor)
	negative := parseColor(r.cfg.NegativeColor)

	bars := make([]chart.Value, 0, len(view.Entries))
	values := make([]float64, 0, len(view.Entries))
	for _, entry := range view.Entries {
		color := negative
		if entry.Disparity > 0 {
			color = positive
		}
		bars = append(bars, chart.Value{
			Label: entry.Group,
			Value: entry.Disparity,
			Style: chart.Style{FillColor: color, StrokeColor: color},
		})
		values = append(values, entry.Disparity)
	}

	title := fmt.Sprintf("Difference from %s (%s), %s", domain.BaselineGroup, FormatPercent(view.Baseline), view.Year)
	bc := r.barChart(title, bars, values)
	bc.YAxis.ValueFormatter = func(v interface{}) string {
		if f, ok := v.(float64); ok {
			return fmt.Sprintf("%+.1f", f)
		}
		return ""
	}
	return r.render(format, "disparities", len(bars), func(buf *bytes.Buffer) error {
		return bc.Render(format.provider(), buf)
	})
}

// trendPadding is the x-axis margin, in years, around the first and last
// year of a trend chart
const trendPadding = 0.5

// TrendChart draws one line per group across the years of the view. A year
// without data for a group breaks that group's line instead of dropping to 0.
func (r *Renderer) TrendChart(view domain.TrendView, format Format) ([]byte, error) {
	if len(view.Points) == 0 || len(view.Groups) == 0 {
		return nil, ErrNoData
	}

	// go-chart takes the x range from the ticks, so unlabeled edge ticks
	// pad it. A single year would otherwise be a zero-width range.
	ticks := make([]chart.Tick, 0, len(view.Points)+2)
	ticks = append(ticks, chart.Tick{Value: -trendPadding})
	for i, point := range view.Points {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: FormatYearLabel(point.Year)})
	}
	ticks = append(ticks, chart.Tick{Value: float64(len(view.Points)-1) + trendPadding})

	series := make([]chart.Series, 0, len(view.Groups))
	all := make([]float64, 0, len(view.Points)*len(view.Groups))
	for gi, group := range view.Groups {
		color := r.trendStyle(gi, group)
		for si, segment := range trendSegments(view.Points, group) {
			name := group
			if si > 0 {
				name = ""
			}
			series = append(series, chart.ContinuousSeries{
				Name:    name,
				Style:   color,
				XValues: segment.x,
				YValues: segment.y,
			})
			all = append(all, segment.y...)
		}
	}
	if len(series) == 0 {
		return nil, ErrNoData
	}

	low, high := valueRange(all)
	title := r.cfg.TrendTitle
	if title == "" {
		title = "Percent of Students Disciplined by Year"
	}

	ch := chart.Chart{
		Title:      title,
		Width:      r.cfg.Width,
		Height:     r.cfg.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:           "% disciplined",
			Range:          &chart.ContinuousRange{Min: math.Min(0, low), Max: high},
			ValueFormatter: percentTick,
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	return r.render(format, "trends", len(series), func(buf *bytes.Buffer) error {
		return ch.Render(format.provider(), buf)
	})
}

func (r *Renderer) barChart(title string, bars []chart.Value, values []float64) chart.BarChart {
	low, high := valueRange(values)
	return chart.BarChart{
		Title:        title,
		Width:        r.cfg.Width,
		Height:       r.cfg.Height,
		Background:   chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		BarWidth:     barWidth(r.cfg.Width, len(bars)),
		UseBaseValue: true,
		BaseValue:    0,
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: math.Min(0, low), Max: high},
			ValueFormatter: percentTick,
		},
		Bars: bars,
	}
}

// trendStyle draws the baseline group thicker than the others
func (r *Renderer) trendStyle(i int, group string) chart.Style {
	color := r.cfg.trendColor(i)
	width := 2.0
	if group == domain.BaselineGroup {
		width = 3.5
	}
	return chart.Style{
		StrokeColor: color,
		StrokeWidth: width,
		DotColor:    color,
		DotWidth:    3,
	}
}

func (r *Renderer) render(format Format, view string, series int, draw func(*bytes.Buffer) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := draw(&buf); err != nil {
		r.logger.Error("Chart rendering failed",
			slog.String("view", view),
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to render %s chart: %w", view, err)
	}

	r.logger.Debug("Rendered chart",
		slog.String("view", view),
		slog.String("format", string(format)),
		slog.Int("series", series),
		slog.Int("bytes", buf.Len()))

	return buf.Bytes(), nil
}

type segment struct {
	x []float64
	y []float64
}

// trendSegments splits a group's values into runs of consecutive years
func trendSegments(points []domain.TrendPoint, group string) []segment {
	var (
		segments []segment
		current  segment
	)
	for i, point := range points {
		v, ok := point.Value(group)
		if !ok {
			if len(current.x) > 0 {
				segments = append(segments, current)
				current = segment{}
			}
			continue
		}
		current.x = append(current.x, float64(i))
		current.y = append(current.y, v)
	}
	if len(current.x) > 0 {
		segments = append(segments, current)
	}
	return segments
}

// valueRange pads the data range so a single value or equal values still
// produce a drawable axis
func valueRange(values []float64) (float64, float64) {
	low, high := 0.0, 0.0
	for _, v := range values {
		low = math.Min(low, v)
		high = math.Max(high, v)
	}
	span := high - low
	if span == 0 {
		return low, low + 1
	}
	if low < 0 {
		low -= span * 0.1
	}
	return low, high + span*0.1
}

func barWidth(width, bars int) int {
	if bars == 0 {
		return 40
	}
	w := width / (bars * 2)
	switch {
	case w < 8:
		return 8
	case w > 60:
		return 60
	}
	return w
}

func percentTick(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.1f", f)
	}
	return ""
}
