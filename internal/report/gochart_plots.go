package report

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const pixelsPerInch = 100

// GoChartRenderer draws charts with go-chart. It only encodes png and svg.
type GoChartRenderer struct {
	Width  int
	Height int
}

func NewGoChartRenderer(size Size) *GoChartRenderer {
	return &GoChartRenderer{
		Width:  int(size.WidthIn * pixelsPerInch),
		Height: int(size.HeightIn * pixelsPerInch),
	}
}

func (r *GoChartRenderer) Formats() []string {
	return []string{"png", "svg"}
}

func toDrawingColor(c color.Color) drawing.Color {
	if c == nil {
		return chart.ColorBlue
	}
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	return drawing.Color{R: rgba.R, G: rgba.G, B: rgba.B, A: rgba.A}
}

// seriesStyle returns a line style, or a points-only style for markers.
// go-chart fills and strokes dots with DotColor only, so markers are solid.
func seriesStyle(s Series) chart.Style {
	col := toDrawingColor(s.Color)
	if s.Kind == SeriesMarkers {
		return chart.Style{
			StrokeWidth: chart.Disabled,
			StrokeColor: col,
			DotWidth:    3,
			DotColor:    col,
		}
	}
	return chart.Style{
		StrokeWidth: 1.5,
		StrokeColor: col,
	}
}

// Render draws c and encodes it as png or svg.
func (r *GoChartRenderer) Render(c Chart, format string) ([]byte, error) {
	var provider chart.RendererProvider
	switch strings.ToLower(format) {
	case "png":
		provider = chart.PNG
	case "svg":
		provider = chart.SVG
	default:
		return nil, fmt.Errorf("%w: %q for gochart renderer", ErrUnsupportedFormat, format)
	}

	var series, labelled []chart.Series
	for _, s := range c.Series {
		segs, err := s.segments()
		if err != nil {
			return nil, fmt.Errorf("chart %s: %w", c.Name, err)
		}
		for i, seg := range segs {
			cs := chart.ContinuousSeries{
				XValues: seg.X,
				YValues: seg.Y,
				Style:   seriesStyle(s),
			}
			series = append(series, cs)
			if i == 0 && s.Label != "" {
				cs.Name = s.Label
				cs.Style.StrokeWidth = 1.5 // legend swatch
				labelled = append(labelled, cs)
			}
		}
	}

	ch := chart.Chart{
		Title:      c.Title,
		Width:      r.Width,
		Height:     r.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 12}},
		XAxis:      chart.XAxis{Name: c.XLabel},
		YAxis:      chart.YAxis{Name: c.YLabel},
		Series:     series,
	}
	if c.XRange != nil {
		ch.XAxis.Range = &chart.ContinuousRange{Min: c.XRange.Min, Max: c.XRange.Max}
	}
	if c.YRange != nil {
		ch.YAxis.Range = &chart.ContinuousRange{Min: c.YRange.Min, Max: c.YRange.Max}
	}
	// The legend lists each series once, not once per segment.
	legend := chart.Chart{Series: labelled}
	ch.Elements = []chart.Renderable{chart.Legend(&legend)}

	var buf bytes.Buffer
	if err := ch.Render(provider, &buf); err != nil {
		return nil, fmt.Errorf("failed to render chart %s: %v", c.Name, err)
	}
	return buf.Bytes(), nil
}
