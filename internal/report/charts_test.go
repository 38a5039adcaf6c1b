package report

import (
	"math"
	"testing"

	"github.com/user/fluxplot_go/internal/analysis"
	"github.com/user/fluxplot_go/internal/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func sampleResults() *parser.Results {
	return &parser.Results{
		Vars: parser.Vars{Length: 4, Meshes: 5, Generations: 6},
		KEff: &parser.KEff{
			K:           []float64{1, 1.08, 0.97, 1.02, 0.99, 1.01},
			Fundamental: []float64{1, 1.04, 1.02, 1.02, 1.01, 1.01},
		},
		Interface: &parser.Interface{
			Flux:    [][]float64{{0.1, 0.8, 1.2, 0.7, 0.2}, {0.3, 0.6, 0.9, 0.5, 0.2}},
			Average: [][]float64{{0.2, 0.7, 1.1, 0.7, 0.3}, {0.3, 0.5, 0.8, 0.5, 0.3}},
			Fission: []float64{0, 0.5, 1.5, 0.4, 0.1},
			Layout:  parser.Layout{Groups: 2, Averaged: true},
		},
	}
}

func chartNames(charts []Chart) []string {
	names := make([]string, len(charts))
	for i, c := range charts {
		names[i] = c.Name
	}
	return names
}

func buildSample(t *testing.T, res *parser.Results) []Chart {
	t.Helper()
	charts, err := BuildCharts(res, analysis.Axis(res.Vars), DefaultChartOptions())
	require.NoError(t, err)
	return charts
}

func TestBuildChartsTwoGroups(t *testing.T) {
	charts := buildSample(t, sampleResults())
	assert.Equal(t, []string{"k_eff", "fast_flux", "thermal_flux", "fission"}, chartNames(charts))

	k := charts[0]
	assert.Equal(t, "Multiplication Factor", k.Title)
	assert.Equal(t, &Range{Min: 0, Max: 6}, k.XRange)
	assert.Equal(t, &Range{Min: 0, Max: 2}, k.YRange)
	require.Len(t, k.Series, 2)
	assert.Equal(t, SeriesMarkers, k.Series[0].Kind)
	assert.Nil(t, k.Series[0].X)
	assert.Equal(t, SeriesLine, k.Series[1].Kind)
	assert.Equal(t, averageColor, k.Series[1].Color)

	fast := charts[1]
	assert.Equal(t, "Fast Flux", fast.Title)
	assert.Equal(t, &Range{Min: 0, Max: 4}, fast.XRange)
	assert.Nil(t, fast.YRange)
	require.Len(t, fast.Series, 2)
	assert.Equal(t, "fast flux", fast.Series[0].Label)

	assert.Equal(t, "Thermal Flux", charts[2].Title)
	assert.Equal(t, "Fission Density", charts[3].Title)
	assert.Len(t, charts[3].Series, 1)
}

func TestBuildChartsWithoutFundamental(t *testing.T) {
	withFund := buildSample(t, sampleResults())

	res := sampleResults()
	res.KEff.Fundamental = nil
	charts := buildSample(t, res)

	require.Len(t, charts[0].Series, 1)
	assert.Equal(t, withFund[0].Series[0], charts[0].Series[0])
	assert.Len(t, charts, len(withFund))
}

func TestBuildChartsPassesLengthsThrough(t *testing.T) {
	res := sampleResults()
	res.Interface.Flux[0] = []float64{1, 2, 3}
	charts := buildSample(t, res)

	fast := charts[1].Series[0]
	assert.Len(t, fast.Y, 3)
	assert.Len(t, fast.X, 5)
	assert.Len(t, charts[2].Series[0].Y, 5)
}

func TestBuildChartsGroupNames(t *testing.T) {
	res := sampleResults()
	flux := res.Interface.Flux[0]
	res.Interface.Flux = [][]float64{flux, flux, flux, flux}
	res.Interface.Average = nil
	res.Interface.Layout = parser.Layout{Groups: 4}

	charts := buildSample(t, res)
	assert.Equal(t, []string{"k_eff", "group_1_flux", "group_2_flux", "group_3_flux", "group_4_flux", "fission"}, chartNames(charts))
	assert.Equal(t, "Group 3 Flux", charts[3].Title)
	assert.Len(t, charts[1].Series, 1)
}

func TestBuildChartsCustomKLimits(t *testing.T) {
	res := sampleResults()
	charts, err := BuildCharts(res, analysis.Axis(res.Vars), ChartOptions{KYMin: 0.9, KYMax: 1.1})
	require.NoError(t, err)
	assert.Equal(t, &Range{Min: 0.9, Max: 1.1}, charts[0].YRange)
}

func TestBuildChartsNil(t *testing.T) {
	_, err := BuildCharts(nil, nil, DefaultChartOptions())
	assert.Error(t, err)
}

func TestSegmentsBreakLinesAtNonFinite(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name   string
		series Series
		want   []segment
	}{
		{
			name:   "line gap",
			series: Series{Y: []float64{1, nan, 3, 4}},
			want:   []segment{{X: []float64{0}, Y: []float64{1}}, {X: []float64{2, 3}, Y: []float64{3, 4}}},
		},
		{
			name:   "line non-finite x",
			series: Series{X: []float64{0, math.Inf(1), 2}, Y: []float64{1, 2, 3}},
			want:   []segment{{X: []float64{0}, Y: []float64{1}}, {X: []float64{2}, Y: []float64{3}}},
		},
		{
			name:   "leading and trailing gaps",
			series: Series{Y: []float64{nan, 2, 3, nan}},
			want:   []segment{{X: []float64{1, 2}, Y: []float64{2, 3}}},
		},
		{
			name:   "markers drop points",
			series: Series{Y: []float64{1, nan, 3}, Kind: SeriesMarkers},
			want:   []segment{{X: []float64{0, 2}, Y: []float64{1, 3}}},
		},
		{
			name:   "all non-finite",
			series: Series{Y: []float64{nan, nan}},
			want:   nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.series.segments()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Series{X: []float64{0, 1}, Y: []float64{1, 2, 3}}.segments()
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestChartFileName(t *testing.T) {
	assert.Equal(t, "k_eff.svg", Chart{Name: "k_eff"}.FileName("SVG"))
}
