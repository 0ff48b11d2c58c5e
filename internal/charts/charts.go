// Package charts renders indicator series to static PNG charts and an
// interactive HTML dashboard.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/econlab/econpipe/internal/metrics"
	"github.com/econlab/econpipe/internal/timeseries"
)

const (
	defaultWidth  = 900
	defaultHeight = 420
)

// Panel is one titled series on a chart.
type Panel struct {
	Title  string
	Series *timeseries.Series
}

// Renderer writes chart files under a single output directory, which
// is created on demand.
type Renderer struct {
	outputDir string
	width     int
	height    int
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithSize overrides the pixel size of single-panel charts.
func WithSize(width, height int) RendererOption {
	return func(r *Renderer) {
		r.width = width
		r.height = height
	}
}

// NewRenderer creates a renderer targeting outputDir.
func NewRenderer(outputDir string, opts ...RendererOption) *Renderer {
	r := &Renderer{
		outputDir: outputDir,
		width:     defaultWidth,
		height:    defaultHeight,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OutputDir returns the directory chart files are written to.
func (r *Renderer) OutputDir() string {
	return r.outputDir
}

// TimeSeriesPNG renders one series as a line chart and returns the
// written path.
func (r *Renderer) TimeSeriesPNG(title string, s *timeseries.Series) (string, error) {
	graph, err := r.lineChart(title, s)
	if err != nil {
		return "", err
	}
	return r.writePNG(fileName(s.Name, "timeseries"), graph)
}

// DashboardPNG renders every panel as its own plot and stacks them
// into a two-column grid image.
func (r *Renderer) DashboardPNG(panels []Panel) (string, error) {
	if len(panels) == 0 {
		return "", errors.New("no panels to render")
	}

	images := make([][]byte, 0, len(panels))
	for _, p := range panels {
		graph, err := r.lineChart(p.Title, p.Series)
		if err != nil {
			return "", fmt.Errorf("panel %q: %w", p.Title, err)
		}
		buf, err := renderPNGBytes(graph)
		if err != nil {
			return "", fmt.Errorf("panel %q: %w", p.Title, err)
		}
		images = append(images, buf)
	}

	combined, err := compositeGrid(images, 2)
	if err != nil {
		return "", err
	}
	return r.writeFile("multi_indicator_dashboard.png", combined)
}

func (r *Renderer) lineChart(title string, s *timeseries.Series) (*chart.Chart, error) {
	if s == nil || s.Len() < 2 {
		return nil, fmt.Errorf("series %q: need at least 2 points to chart", title)
	}
	return &chart.Chart{
		Title:  title,
		Width:  r.width,
		Height: r.height,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    s.Name,
				XValues: s.Dates,
				YValues: s.Values,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2,
				},
			},
		},
	}, nil
}

func (r *Renderer) writePNG(name string, graph *chart.Chart) (string, error) {
	buf, err := renderPNGBytes(graph)
	if err != nil {
		return "", err
	}
	return r.writeFile(name, buf)
}

func (r *Renderer) writeFile(name string, data []byte) (string, error) {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(r.outputDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write chart: %w", err)
	}
	metrics.ChartsRendered.Add(1)
	return path, nil
}

func renderPNGBytes(graph *chart.Chart) ([]byte, error) {
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}

// fileName builds snake_case chart names like unrate_timeseries.png.
func fileName(name, suffix string) string {
	return fmt.Sprintf("%s_%s.png", snakeCase(name), suffix)
}

func snakeCase(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			lastUnderscore = false
		case !lastUnderscore && b.Len() > 0:
			b.WriteRune('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
