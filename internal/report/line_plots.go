package report

import (
	"bytes"
	"fmt"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// GonumRenderer draws charts with gonum/plot.
type GonumRenderer struct {
	Width  vg.Length
	Height vg.Length
}

func NewGonumRenderer(size Size) *GonumRenderer {
	return &GonumRenderer{
		Width:  vg.Length(size.WidthIn) * vg.Inch,
		Height: vg.Length(size.HeightIn) * vg.Inch,
	}
}

// Formats lists the encodings accepted by plot.WriterTo.
func (r *GonumRenderer) Formats() []string {
	return []string{"png", "svg", "pdf", "jpg", "jpeg", "eps", "tif", "tiff"}
}

// Render draws c on a fresh plot and encodes it as format.
func (r *GonumRenderer) Render(c Chart, format string) ([]byte, error) {
	format = strings.ToLower(format)
	if !Supports(r, format) {
		return nil, fmt.Errorf("%w: %q for gonum renderer", ErrUnsupportedFormat, format)
	}

	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.Add(plotter.NewGrid())

	for _, s := range c.Series {
		segs, err := s.segments()
		if err != nil {
			return nil, fmt.Errorf("chart %s: %w", c.Name, err)
		}
		for i, seg := range segs {
			pts := make(plotter.XYs, len(seg.Y))
			for j := range seg.Y {
				pts[j].X = seg.X[j]
				pts[j].Y = seg.Y[j]
			}
			pl, err := gonumPlotter(s, pts)
			if err != nil {
				return nil, err
			}
			p.Add(pl)
			if i == 0 && s.Label != "" {
				p.Legend.Add(s.Label, pl)
			}
		}
	}

	// Limits go in after the plotters, p.Add widens the axes to the data.
	if c.XRange != nil {
		p.X.Min = c.XRange.Min
		p.X.Max = c.XRange.Max
	}
	if c.YRange != nil {
		p.Y.Min = c.YRange.Min
		p.Y.Max = c.YRange.Max
	}

	p.Legend.Top = true
	p.Legend.XOffs = -vg.Points(10)

	writer, err := p.WriterTo(r.Width, r.Height, format)
	if err != nil {
		return nil, fmt.Errorf("failed to create plot writer: %v", err)
	}
	buf := new(bytes.Buffer)
	if _, err := writer.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("failed to write plot to buffer: %v", err)
	}
	return buf.Bytes(), nil
}

// gonumPlotter builds the plotter for one segment of s.
func gonumPlotter(s Series, pts plotter.XYs) (interface {
	plot.Plotter
	plot.Thumbnailer
}, error) {
	if s.Kind == SeriesMarkers {
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("failed to create markers for %s: %v", s.Label, err)
		}
		sc.GlyphStyle.Shape = draw.RingGlyph{}
		sc.GlyphStyle.Radius = vg.Points(3)
		if s.Color != nil {
			sc.GlyphStyle.Color = s.Color
		}
		return sc, nil
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("failed to create line for %s: %v", s.Label, err)
	}
	line.LineStyle.Width = vg.Points(1.5)
	if s.Color != nil {
		line.Color = s.Color
	}
	return line, nil
}
