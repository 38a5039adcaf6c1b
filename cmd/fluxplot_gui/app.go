package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/user/fluxplot_go/internal/config"
	"github.com/user/fluxplot_go/internal/runner"
	"github.com/wailsapp/wails/v2/pkg/runtime"
	"go.uber.org/zap"
)

// App struct
type App struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
	// emit sends an event to the frontend; replaced in tests.
	emit func(ctx context.Context, name string, data ...interface{})

	mu      sync.Mutex
	running bool
}

// Settings is what the frontend needs to prefill its form.
type Settings struct {
	InputDir  string `json:"inputDir"`
	OutputDir string `json:"outputDir"`
	Format    string `json:"format"`
	Backend   string `json:"backend"`
}

// NewApp creates a new App application struct
func NewApp(logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{logger: logger, emit: runtime.EventsEmit}
}

// Startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) Startup(ctx context.Context) {
	a.ctx, a.cancel = context.WithCancel(ctx)
	runtime.WindowSetTitle(a.ctx, "Flux Plotter")
}

// Shutdown stops any generation still in flight.
func (a *App) Shutdown(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}
}

func (a *App) sendStatus(message string) {
	if a.ctx != nil {
		a.emit(a.ctx, "statusUpdate", message)
	}
	a.logger.Info(message)
}

func (a *App) finish(ok bool, message string) {
	if a.ctx != nil {
		a.emit(a.ctx, "generationComplete", ok, message)
	}
	a.mu.Lock()
	a.running = false
	a.mu.Unlock()
}

// DefaultSettings returns the configured defaults (config file and FLUXPLOT_* environment).
func (a *App) DefaultSettings() (Settings, error) {
	cfg, err := config.Load("")
	if err != nil {
		return Settings{}, err
	}
	return Settings{InputDir: cfg.InputDir, OutputDir: cfg.OutputDir, Format: cfg.Format, Backend: cfg.Backend}, nil
}

// buildConfig merges the form values over the defaults.
func buildConfig(inputDir, outputDir, format string, pdf bool) (*config.Config, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, err
	}
	if inputDir == "" {
		return nil, fmt.Errorf("an input directory is required")
	}
	cfg.InputDir = inputDir
	if outputDir != "" {
		cfg.OutputDir = outputDir
	} else {
		cfg.OutputDir = inputDir
	}
	if format != "" {
		cfg.Format = format
	}
	if pdf {
		cfg.PDF = filepath.Join(cfg.OutputDir, "report.pdf")
	}
	return cfg, cfg.Validate()
}

// HandleGenerateCharts is called from the frontend to start chart generation.
// The work runs in the background; progress is reported through events.
func (a *App) HandleGenerateCharts(inputDir string, outputDir string, format string, pdf bool) (string, error) {
	cfg, err := buildConfig(inputDir, outputDir, format, pdf)
	if err != nil {
		return "", err
	}

	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return "", fmt.Errorf("a generation is already running")
	}
	a.running = true
	a.mu.Unlock()

	go a.generate(cfg) // Run in a goroutine to avoid blocking the UI
	return "Chart generation started in background.", nil
}

// generate performs one run and reports the outcome to the frontend.
func (a *App) generate(cfg *config.Config) {
	defer func() {
		if r := recover(); r != nil {
			errMsg := fmt.Sprintf("PANIC recovered: %v", r)
			a.sendStatus(errMsg)
			a.finish(false, errMsg)
		}
	}()

	ctx := a.ctx
	if ctx == nil {
		ctx = context.Background()
	} else {
		a.emit(ctx, "clearLog")
		a.emit(ctx, "generationStart")
	}
	a.sendStatus(fmt.Sprintf("Request: input=[%s], output=[%s], format=%s", cfg.InputDir, cfg.OutputDir, cfg.Format))

	r := runner.New(cfg, a.logger)
	r.Status = func(msg string) {
		if a.ctx != nil {
			a.emit(a.ctx, "statusUpdate", msg)
		}
	}
	outcome, err := r.Run(ctx)
	if err != nil {
		errMsg := fmt.Sprintf("Error generating charts: %v", err)
		a.sendStatus(errMsg)
		a.finish(false, errMsg)
		return
	}

	successMsg := fmt.Sprintf("%d charts written to %s", len(outcome.Written), cfg.OutputDir)
	if outcome.PDFPath != "" {
		successMsg += fmt.Sprintf(", report: %s", outcome.PDFPath)
	}
	a.sendStatus(successMsg)
	a.finish(true, successMsg)
}
