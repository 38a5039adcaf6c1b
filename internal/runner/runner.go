// Package runner ties parsing, analysis and chart output into a single run.
package runner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/user/fluxplot_go/internal/analysis"
	"github.com/user/fluxplot_go/internal/config"
	"github.com/user/fluxplot_go/internal/parser"
	"github.com/user/fluxplot_go/internal/report"

	"go.uber.org/zap"
)

// Runner renders the charts for one simulation output directory.
type Runner struct {
	Config *config.Config
	Logger *zap.Logger
	// Renderer overrides the backend named in the config.
	Renderer report.Renderer
	// Status, when set, receives human readable progress messages.
	Status func(string)
}

// Outcome is what a run produced.
type Outcome struct {
	Results *parser.Results
	Summary *analysis.Summary
	Written []report.Written
	PDFPath string
}

func New(cfg *config.Config, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{Config: cfg, Logger: logger}
}

func (r *Runner) status(msg string, fields ...zap.Field) {
	r.Logger.Info(msg, fields...)
	if r.Status != nil {
		r.Status(msg)
	}
}

// Run parses the input files, writes every chart and, if configured, the PDF report.
// Input errors abort the run. Chart failures are returned after the remaining charts
// (and the report) have been written.
func (r *Runner) Run(ctx context.Context) (*Outcome, error) {
	cfg := r.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	renderer := r.Renderer
	if renderer == nil {
		var err error
		renderer, err = report.NewRenderer(cfg.Backend, report.Size{WidthIn: cfg.Chart.WidthIn, HeightIn: cfg.Chart.HeightIn})
		if err != nil {
			return nil, err
		}
	}
	if !report.Supports(renderer, cfg.Format) {
		return nil, fmt.Errorf("%w: %q with backend %s", report.ErrUnsupportedFormat, cfg.Format, cfg.Backend)
	}

	r.status(fmt.Sprintf("Parsing: %s", cfg.InputDir), zap.String("dir", cfg.InputDir))
	results, err := parser.Load(cfg.InputDir, parser.Layout{Groups: cfg.Layout.Groups, Averaged: cfg.Layout.Averaged})
	if err != nil {
		return nil, fmt.Errorf("error parsing results: %w", err)
	}
	r.Logger.Debug("Parsed results",
		zap.Float64("length", results.Vars.Length),
		zap.Int("meshes", results.Vars.Meshes),
		zap.Int("generations", results.Vars.Generations),
		zap.Bool("fundamental", results.KEff.HasFundamental()),
		zap.Stringer("layout", results.Interface.Layout))

	summary, err := analysis.Summarize(results, cfg.SkipGenerations)
	if err != nil {
		return nil, fmt.Errorf("error analyzing results: %w", err)
	}
	for _, w := range summary.Warnings {
		r.Logger.Warn(w)
		if r.Status != nil {
			r.Status("- " + w)
		}
	}

	opts := report.DefaultChartOptions()
	opts.KYMin, opts.KYMax = cfg.Chart.KYMin, cfg.Chart.KYMax
	charts, err := report.BuildCharts(results, analysis.Axis(results.Vars), opts)
	if err != nil {
		return nil, err
	}

	r.status(fmt.Sprintf("Generating %d charts...", len(charts)), zap.String("backend", cfg.Backend), zap.String("format", cfg.Format))
	// The report embeds png; when the charts already are png their bytes are reused.
	reuse := cfg.PDF != "" && isPNG(cfg.Format)
	written, chartErr := report.WriteCharts(ctx, renderer, charts, report.WriteOptions{
		OutputDir:  cfg.OutputDir,
		Format:     cfg.Format,
		Jobs:       cfg.Jobs,
		Logger:     r.Logger,
		KeepImages: reuse,
	})
	for _, w := range written {
		r.status(fmt.Sprintf("Wrote %s", w.Path), zap.String("chart", w.Chart))
	}

	outcome := &Outcome{Results: results, Summary: summary, Written: written}
	if cfg.PDF == "" {
		return outcome, chartErr
	}

	pdfPath := cfg.PDF
	if !filepath.IsAbs(pdfPath) && filepath.Dir(pdfPath) == "." {
		pdfPath = filepath.Join(cfg.OutputDir, pdfPath)
	}
	r.status(fmt.Sprintf("Generating PDF: %s...", pdfPath))
	var images map[string][]byte
	if reuse {
		images = make(map[string][]byte, len(written))
		for _, w := range written {
			images[w.Chart] = w.Data
		}
	} else {
		var imgErr error
		images, imgErr = report.RenderImages(ctx, renderer, charts, "png", cfg.Jobs)
		if imgErr != nil {
			r.Logger.Debug("Some charts are missing from the report", zap.Error(imgErr))
		}
	}
	if err := report.BuildPDFReport(pdfPath, summary, charts, images); err != nil {
		return outcome, errors.Join(chartErr, fmt.Errorf("error generating PDF report: %w", err))
	}
	outcome.PDFPath = pdfPath
	r.status(fmt.Sprintf("PDF report successfully generated: %s", pdfPath))
	return outcome, chartErr
}

func isPNG(format string) bool {
	return strings.EqualFold(format, "png")
}
