package runner

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/user/fluxplot_go/internal/config"
	"github.com/user/fluxplot_go/internal/parser"
	"github.com/user/fluxplot_go/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// writeFixture writes a two-group averaged run with five mesh points.
func writeFixture(t *testing.T, withFundamental bool) string {
	t.Helper()
	dir := t.TempDir()
	k := "1,1.05,0.98,1.01,0.99,1.0\n"
	if withFundamental {
		k += "1,1.03,1.01,1.01,1.0,1.0\n"
	}
	files := map[string]string{
		parser.VarsFile: "20.0\n5\n6\n",
		parser.KEffFile: k,
		parser.InterfaceFile: "0.1,0.8,1.2,0.7,0.2\n" +
			"0.3,0.6,0.9,0.5,0.2\n" +
			"0.2,0.7,1.1,0.7,0.3\n" +
			"0.3,0.5,0.8,0.5,0.3\n" +
			"0,0.5,1.5,0.4,0.1\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func testConfig(t *testing.T, input string) *config.Config {
	cfg := config.Default()
	cfg.InputDir = input
	cfg.OutputDir = t.TempDir()
	return cfg
}

func TestRunWritesEveryChart(t *testing.T) {
	for _, format := range []string{"png", "svg"} {
		t.Run(format, func(t *testing.T) {
			cfg := testConfig(t, writeFixture(t, true))
			cfg.Format = format
			var messages []string
			r := New(cfg, zaptest.NewLogger(t))
			r.Status = func(msg string) { messages = append(messages, msg) }

			outcome, err := r.Run(context.Background())
			require.NoError(t, err)
			require.Len(t, outcome.Written, 4)
			for _, name := range []string{"k_eff", "fast_flux", "thermal_flux", "fission"} {
				_, err := os.Stat(filepath.Join(cfg.OutputDir, name+"."+format))
				assert.NoError(t, err, name)
			}
			assert.Empty(t, outcome.PDFPath)
			assert.NotEmpty(t, messages)
		})
	}
}

func TestRunWithoutFundamental(t *testing.T) {
	cfg := testConfig(t, writeFixture(t, false))
	outcome, err := New(cfg, nil).Run(context.Background())
	require.NoError(t, err)
	assert.False(t, outcome.Results.KEff.HasFundamental())
	assert.Len(t, outcome.Written, 4)
}

func TestRunWithPDF(t *testing.T) {
	cfg := testConfig(t, writeFixture(t, true))
	cfg.Format = "svg"
	cfg.Backend = report.BackendGoChart
	cfg.PDF = "report.pdf"
	cfg.Jobs = 2

	outcome, err := New(cfg, zaptest.NewLogger(t)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "report.pdf"), outcome.PDFPath)
	info, err := os.Stat(outcome.PDFPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

// countingRenderer records the formats every chart was rendered in.
type countingRenderer struct {
	report.Renderer

	mu    sync.Mutex
	calls map[string][]string
}

func (c *countingRenderer) Render(ch report.Chart, format string) ([]byte, error) {
	c.mu.Lock()
	if c.calls == nil {
		c.calls = make(map[string][]string)
	}
	c.calls[ch.Name] = append(c.calls[ch.Name], format)
	c.mu.Unlock()
	return c.Renderer.Render(ch, format)
}

func TestRunWithPDFRendersEachChartOnce(t *testing.T) {
	tests := []struct {
		format string
		want   []string
	}{
		{format: "png", want: []string{"png"}},
		{format: "svg", want: []string{"svg", "png"}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			cfg := testConfig(t, writeFixture(t, true))
			cfg.Format = tt.format
			cfg.PDF = "report.pdf"
			counter := &countingRenderer{Renderer: report.NewGonumRenderer(report.DefaultSize())}

			r := New(cfg, zaptest.NewLogger(t))
			r.Renderer = counter
			outcome, err := r.Run(context.Background())
			require.NoError(t, err)
			require.NotEmpty(t, outcome.PDFPath)

			assert.Len(t, counter.calls, 4)
			for name, formats := range counter.calls {
				assert.Equal(t, tt.want, formats, name)
			}
		})
	}
}

func TestRunMissingInput(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	_, err := New(cfg, nil).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	entries, err := os.ReadDir(cfg.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunRejectsBadConfig(t *testing.T) {
	cfg := testConfig(t, writeFixture(t, true))
	cfg.Backend = report.BackendGoChart
	cfg.Format = "eps"
	_, err := New(cfg, nil).Run(context.Background())
	assert.ErrorIs(t, err, report.ErrUnsupportedFormat)

	cfg.Jobs = 0
	_, err = New(cfg, nil).Run(context.Background())
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestRunReportsChartFailures(t *testing.T) {
	dir := writeFixture(t, true)
	// fission row shorter than the mesh axis
	content := "0.1,0.8,1.2,0.7,0.2\n0.3,0.6,0.9,0.5,0.2\n0.2,0.7,1.1,0.7,0.3\n0.3,0.5,0.8,0.5,0.3\n0,0.5\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, parser.InterfaceFile), []byte(content), 0o644))

	cfg := testConfig(t, dir)
	outcome, err := New(cfg, nil).Run(context.Background())
	assert.ErrorIs(t, err, report.ErrLengthMismatch)
	require.NotNil(t, outcome)
	assert.Len(t, outcome.Written, 3)
	assert.NotEmpty(t, outcome.Summary.Warnings)
}
