package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/fluxplot_go/internal/config"
	"github.com/user/fluxplot_go/internal/logging"
	"github.com/user/fluxplot_go/internal/parser"
	"github.com/user/fluxplot_go/internal/runner"
	"github.com/user/fluxplot_go/internal/watch"
)

var (
	// Global flags
	configPath string
	verbose    bool
	inputDir   string
	outputDir  string
	format     string
	backend    string
	pdfPath    string
	jobs       int
	groups     int
	averaged   bool
	skip       int

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fluxplot",
	Short: "Render Monte Carlo reactor results as charts",
	Long: `fluxplot reads vars.csv, k_eff.csv and interface.csv written by the
Monte Carlo transport code and renders the multiplication factor, the flux of
every energy group and the fission density as image files.

Run without a subcommand to render once.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runRender,
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render every chart once",
	RunE:  runRender,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Render, then re-render whenever the result files change",
	Long: `Renders the charts, then watches the input directory and renders again
each time the simulation rewrites vars.csv, k_eff.csv or interface.csv.
Stops on interrupt.`,
	RunE: runWatch,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render every chart and bundle them into a PDF report",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.PDF == "" {
			cfg.PDF = "report.pdf"
		}
		return runRender(cmd, args)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML configuration file")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVarP(&inputDir, "dir", "d", ".", "directory holding the result csv files")
	pf.StringVarP(&outputDir, "out", "o", ".", "directory for the chart images")
	pf.StringVarP(&format, "format", "f", "png", "image format (png, svg; pdf, jpg, eps, tif with gonum)")
	pf.StringVar(&backend, "backend", "gonum", "plotting backend (gonum, gochart)")
	pf.StringVar(&pdfPath, "pdf", "", "also write a PDF report to this path")
	pf.IntVarP(&jobs, "jobs", "j", 1, "charts rendered concurrently")
	pf.IntVar(&groups, "groups", 0, "energy groups in interface.csv (0 infers from the row count)")
	pf.BoolVar(&averaged, "averaged", false, "interface.csv carries running-average rows (with --groups)")
	pf.IntVar(&skip, "skip", 0, "inactive generations left out of the k statistics")

	rootCmd.AddCommand(renderCmd, watchCmd, reportCmd)
}

// setup loads the configuration (file -> environment -> flags) and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Root().PersistentFlags()
	if flags.Changed("dir") {
		cfg.InputDir = inputDir
	}
	if flags.Changed("out") {
		cfg.OutputDir = outputDir
	}
	if flags.Changed("format") {
		cfg.Format = format
	}
	if flags.Changed("backend") {
		cfg.Backend = backend
	}
	if flags.Changed("pdf") {
		cfg.PDF = pdfPath
	}
	if flags.Changed("jobs") {
		cfg.Jobs = jobs
	}
	if flags.Changed("groups") {
		cfg.Layout.Groups = groups
	}
	if flags.Changed("averaged") {
		cfg.Layout.Averaged = averaged
	}
	if flags.Changed("skip") {
		cfg.SkipGenerations = skip
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err = logging.New(cfg.Logging.Level, verbose)
	return err
}

func renderOnce(ctx context.Context) error {
	outcome, err := runner.New(cfg, logger).Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("Render complete",
		zap.Int("charts", len(outcome.Written)),
		zap.Float64("k_mean", outcome.Summary.K.Mean),
		zap.Float64("k_std", outcome.Summary.K.StdDev))
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	return renderOnce(cmd.Context())
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := renderOnce(ctx); err != nil {
		// the simulation may not have written its files yet
		logger.Warn("Initial render failed", zap.Error(err))
	}

	w, err := watch.New(cfg.InputDir, []string{parser.VarsFile, parser.KEffFile, parser.InterfaceFile}, watch.DefaultDebounce, logger)
	if err != nil {
		return err
	}
	return w.Run(ctx, renderOnce)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "fluxplot:", err)
		os.Exit(1)
	}
}
