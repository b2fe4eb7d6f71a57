package export

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrEmptyChart is returned when there is nothing to plot.
var ErrEmptyChart = errors.New("chart has no data points")

const (
	barHalfWidth = 0.35
	fillAlpha    = 179 // 70% opacity
	gridAlpha    = 26  // 10% opacity
)

// ChartPalette holds hex colours for one theme.
type ChartPalette struct {
	Present    string
	Absent     string
	Late       string
	Text       string
	Grid       string
	Background string
}

// AttendanceBars is one bar per date, each value counted in half-day sessions.
type AttendanceBars struct {
	Title   string
	Labels  []string
	Present []float64
	Absent  []float64
	Late    []float64
	Max     float64
	Ticks   []string
	Palette ChartPalette
}

// ChartExporter renders attendance bars into a PNG image.
type ChartExporter struct {
	width  int
	height int
}

// NewChartExporter constructs a chart exporter with the given canvas size.
func NewChartExporter(width, height int) *ChartExporter {
	if width <= 0 {
		width = 900
	}
	if height <= 0 {
		height = 420
	}
	return &ChartExporter{width: width, height: height}
}

// Render draws the bars stacked present, absent, late from the baseline up.
func (e *ChartExporter) Render(bars AttendanceBars) ([]byte, error) {
	n := len(bars.Labels)
	if n == 0 {
		return nil, ErrEmptyChart
	}
	if len(bars.Present) != n || len(bars.Absent) != n || len(bars.Late) != n {
		return nil, fmt.Errorf("chart series length mismatch")
	}
	maxY := bars.Max
	if maxY <= 0 {
		maxY = 2
	}

	text := hexColor(bars.Palette.Text)
	grid := hexColor(bars.Palette.Grid).WithAlpha(gridAlpha)

	presentTop := make([]float64, n)
	absentTop := make([]float64, n)
	lateTop := make([]float64, n)
	for i := 0; i < n; i++ {
		presentTop[i] = bars.Present[i]
		absentTop[i] = presentTop[i] + bars.Absent[i]
		lateTop[i] = absentTop[i] + bars.Late[i]
	}

	// Taller layers are drawn first so the lower segments paint over them.
	series := []chart.Series{
		barSeries("Late", lateTop, bars.Palette.Late),
		barSeries("Absent", absentTop, bars.Palette.Absent),
		barSeries("Present", presentTop, bars.Palette.Present),
	}

	xTicks := make([]chart.Tick, 0, n)
	for i, label := range bars.Labels {
		xTicks = append(xTicks, chart.Tick{Value: float64(i), Label: label})
	}

	yTicks := make([]chart.Tick, 0, len(bars.Ticks))
	gridLines := make([]chart.GridLine, 0, len(bars.Ticks))
	for i, label := range bars.Ticks {
		yTicks = append(yTicks, chart.Tick{Value: float64(i), Label: label})
		if i > 0 {
			gridLines = append(gridLines, chart.GridLine{Value: float64(i)})
		}
	}

	ch := chart.Chart{
		Title:      bars.Title,
		TitleStyle: chart.Style{FontColor: text},
		Width:      e.width,
		Height:     e.height,
		Background: chart.Style{
			FillColor: hexColor(bars.Palette.Background),
			Padding:   chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 72},
		},
		Canvas: chart.Style{FillColor: hexColor(bars.Palette.Background)},
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(n) - 0.5},
			Ticks: xTicks,
			Style: chart.Style{FontColor: text, StrokeColor: grid, TextRotationDegrees: 45},
		},
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: 0, Max: maxY},
			Ticks:          yTicks,
			Style:          chart.Style{FontColor: text, StrokeColor: grid},
			GridMajorStyle: chart.Style{StrokeColor: grid, StrokeWidth: 1},
			GridLines:      gridLines,
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch, chart.Style{FontColor: text, FillColor: hexColor(bars.Palette.Background)})}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}

// barSeries outlines a rectangle per date so the area fill reads as a bar.
func barSeries(name string, tops []float64, colour string) chart.ContinuousSeries {
	xs := make([]float64, 0, len(tops)*4)
	ys := make([]float64, 0, len(tops)*4)
	for i, top := range tops {
		x := float64(i)
		xs = append(xs, x-barHalfWidth, x-barHalfWidth, x+barHalfWidth, x+barHalfWidth)
		ys = append(ys, 0, top, top, 0)
	}
	stroke := hexColor(colour)
	return chart.ContinuousSeries{
		Name:    name,
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			StrokeColor: stroke,
			StrokeWidth: 1,
			FillColor:   stroke.WithAlpha(fillAlpha),
		},
	}
}

func hexColor(value string) drawing.Color {
	value = strings.TrimPrefix(strings.TrimSpace(value), "#")
	if value == "" {
		return drawing.ColorTransparent
	}
	return drawing.ColorFromHex(value)
}
