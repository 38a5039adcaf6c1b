package report

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/user/fluxplot_go/internal/analysis"
	"github.com/user/fluxplot_go/internal/parser"
)

// ErrLengthMismatch is returned when a series has a different number of x and y values.
var ErrLengthMismatch = errors.New("x and y must have the same length")

var (
	primaryColor = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 255} // Blue
	averageColor = color.RGBA{R: 255, G: 165, B: 0, A: 255}      // Orange
)

// SeriesKind selects how a series is drawn.
type SeriesKind int

const (
	SeriesLine SeriesKind = iota
	SeriesMarkers // open circles, no connecting line
)

// Series is one curve of a chart. A nil X plots Y against its index.
type Series struct {
	Label string
	X     []float64
	Y     []float64
	Kind  SeriesKind
	Color color.Color
}

// Range is an explicit axis limit.
type Range struct {
	Min, Max float64
}

// Chart is everything needed to draw and name one output image.
type Chart struct {
	Name   string // output file stem, e.g. "k_eff"
	Title  string
	XLabel string
	YLabel string
	Series []Series
	XRange *Range
	YRange *Range
}

// ChartOptions carries the tunable limits of the chart set.
type ChartOptions struct {
	KYMin float64
	KYMax float64
}

// DefaultChartOptions pins the k axis to 0..2.
func DefaultChartOptions() ChartOptions {
	return ChartOptions{KYMin: 0, KYMax: 2}
}

// segment is a run of plottable points.
type segment struct {
	X, Y []float64
}

// segments returns the plottable points of s. A line is broken at every
// non-finite pair so it shows a gap there; markers come back as one segment
// without the non-finite pairs. The series itself is never resampled.
func (s Series) segments() ([]segment, error) {
	if s.X != nil && len(s.X) != len(s.Y) {
		return nil, fmt.Errorf("%w: series %q has %d x and %d y values", ErrLengthMismatch, s.Label, len(s.X), len(s.Y))
	}
	var (
		segs []segment
		cur  segment
	)
	flush := func() {
		if len(cur.Y) > 0 {
			segs = append(segs, cur)
		}
		cur = segment{}
	}
	for i, y := range s.Y {
		x := float64(i)
		if s.X != nil {
			x = s.X[i]
		}
		if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
			if s.Kind == SeriesLine {
				flush()
			}
			continue
		}
		cur.X = append(cur.X, x)
		cur.Y = append(cur.Y, y)
	}
	flush()
	return segs, nil
}

// fluxChartName gives the file stem and title for energy group g.
func fluxChartName(g, groups int) (string, string) {
	if groups == 2 {
		names := [...]string{"fast_flux", "thermal_flux"}
		titles := [...]string{"Fast Flux", "Thermal Flux"}
		return names[g], titles[g]
	}
	return fmt.Sprintf("group_%d_flux", g+1), fmt.Sprintf("Group %d Flux", g+1)
}

// BuildCharts lays out the fixed chart sequence for a set of results:
// the multiplication factor, one flux chart per energy group, then the fission density.
func BuildCharts(results *parser.Results, axis []float64, opts ChartOptions) ([]Chart, error) {
	if results == nil || results.KEff == nil || results.Interface == nil {
		return nil, fmt.Errorf("no results to chart")
	}
	length := results.Vars.Length

	kChart := Chart{
		Name:   "k_eff",
		Title:  "Multiplication Factor",
		XLabel: "Generation",
		YLabel: "k",
		Series: []Series{{
			Label: "multiplication factor",
			Y:     results.KEff.K,
			Kind:  SeriesMarkers,
			Color: primaryColor,
		}},
		XRange: &Range{Min: 0, Max: float64(results.Vars.Generations)},
		YRange: &Range{Min: opts.KYMin, Max: opts.KYMax},
	}
	if results.KEff.HasFundamental() {
		kChart.Series = append(kChart.Series, Series{
			Label: "fundamental mode",
			Y:     results.KEff.Fundamental,
			Kind:  SeriesLine,
			Color: averageColor,
		})
	}
	charts := []Chart{kChart}

	in := results.Interface
	for g, flux := range in.Flux {
		name, title := fluxChartName(g, in.Groups())
		c := Chart{
			Name:   name,
			Title:  title,
			XLabel: "Position",
			YLabel: "Flux",
			Series: []Series{{
				Label: analysis.ProfileName(g, in.Groups()),
				X:     axis,
				Y:     flux,
				Color: primaryColor,
			}},
			XRange: &Range{Min: 0, Max: length},
		}
		if g < len(in.Average) {
			c.Series = append(c.Series, Series{
				Label: "running average",
				X:     axis,
				Y:     in.Average[g],
				Color: averageColor,
			})
		}
		charts = append(charts, c)
	}

	charts = append(charts, Chart{
		Name:   "fission",
		Title:  "Fission Density",
		XLabel: "Position",
		YLabel: "Fission density",
		Series: []Series{{
			Label: "fission",
			X:     axis,
			Y:     in.Fission,
			Color: primaryColor,
		}},
		XRange: &Range{Min: 0, Max: length},
	})
	return charts, nil
}

// FileName returns the output file name of c for the given format.
func (c Chart) FileName(format string) string {
	return c.Name + "." + strings.ToLower(format)
}
