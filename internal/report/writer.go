package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// WriteOptions controls where and how chart images are written.
type WriteOptions struct {
	OutputDir  string
	Format     string
	Jobs       int // charts rendered at once; values below 1 mean one at a time
	Logger     *zap.Logger
	KeepImages bool // keep the encoded bytes in Written.Data
}

// Written describes one image file produced by WriteCharts.
type Written struct {
	Chart string
	Path  string
	Bytes int
	Data  []byte // set with WriteOptions.KeepImages
}

// forEachChart runs fn for every chart with at most jobs in flight.
// A failing chart does not stop the others; all failures are joined.
func forEachChart(ctx context.Context, charts []Chart, jobs int, fn func(i int, c Chart) error) error {
	if jobs < 1 {
		jobs = 1
	}
	var (
		mu   sync.Mutex
		errs []error
	)
	g := new(errgroup.Group)
	g.SetLimit(jobs)
	for i, c := range charts {
		if err := ctx.Err(); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			break
		}
		g.Go(func() error {
			if err := fn(i, c); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("chart %s: %w", c.Name, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// WriteCharts renders every chart and writes <OutputDir>/<name>.<Format>.
// The returned slice lists the files that were written, in chart order.
func WriteCharts(ctx context.Context, r Renderer, charts []Chart, opts WriteOptions) ([]Written, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if !Supports(r, opts.Format) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, opts.Format)
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	slots := make([]*Written, len(charts))
	err := forEachChart(ctx, charts, opts.Jobs, func(i int, c Chart) error {
		data, err := r.Render(c, opts.Format)
		if err != nil {
			logger.Warn("Chart render failed", zap.String("chart", c.Name), zap.Error(err))
			return err
		}
		path := filepath.Join(opts.OutputDir, c.FileName(opts.Format))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			logger.Warn("Chart write failed", zap.String("path", path), zap.Error(err))
			return err
		}
		logger.Debug("Chart written", zap.String("chart", c.Name), zap.String("path", path), zap.Int("bytes", len(data)))
		w := &Written{Chart: c.Name, Path: path, Bytes: len(data)}
		if opts.KeepImages {
			w.Data = data
		}
		slots[i] = w
		return nil
	})

	written := make([]Written, 0, len(charts))
	for _, w := range slots {
		if w != nil {
			written = append(written, *w)
		}
	}
	return written, err
}

// RenderImages renders every chart in format and returns the encoded images keyed by chart name.
func RenderImages(ctx context.Context, r Renderer, charts []Chart, format string, jobs int) (map[string][]byte, error) {
	var mu sync.Mutex
	images := make(map[string][]byte, len(charts))
	err := forEachChart(ctx, charts, jobs, func(_ int, c Chart) error {
		data, err := r.Render(c, format)
		if err != nil {
			return err
		}
		mu.Lock()
		images[c.Name] = data
		mu.Unlock()
		return nil
	})
	return images, err
}
