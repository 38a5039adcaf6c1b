package report

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned when a renderer cannot produce the requested image format.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrUnknownBackend is returned by NewRenderer for unrecognised backend names.
	ErrUnknownBackend = errors.New("unknown renderer backend")
)

// Backend names accepted by NewRenderer.
const (
	BackendGonum   = "gonum"
	BackendGoChart = "gochart"
)

// Renderer draws a single chart into an encoded image.
type Renderer interface {
	Render(c Chart, format string) ([]byte, error)
	Formats() []string
}

// Size is the output image size in inches; pixel renderers use 100 dpi.
type Size struct {
	WidthIn  float64
	HeightIn float64
}

// DefaultSize is a 6.4x4.8in figure.
func DefaultSize() Size {
	return Size{WidthIn: 6.4, HeightIn: 4.8}
}

// NewRenderer returns the renderer for backend.
func NewRenderer(backend string, size Size) (Renderer, error) {
	switch strings.ToLower(backend) {
	case "", BackendGonum:
		return NewGonumRenderer(size), nil
	case BackendGoChart:
		return NewGoChartRenderer(size), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
}

// Supports reports whether r can produce format.
func Supports(r Renderer, format string) bool {
	format = strings.ToLower(format)
	for _, f := range r.Formats() {
		if f == format {
			return true
		}
	}
	return false
}
