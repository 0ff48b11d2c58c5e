package charts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	echarts "github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/econlab/econpipe/internal/metrics"
)

// InteractiveHTML renders every panel as a zoomable line chart on a
// single HTML page and returns the written path.
func (r *Renderer) InteractiveHTML(panels []Panel) (string, error) {
	if len(panels) == 0 {
		return "", errors.New("no panels to render")
	}

	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)

	for _, p := range panels {
		s := p.Series
		if s == nil || s.Len() == 0 {
			continue
		}

		line := echarts.NewLine()
		line.SetGlobalOptions(
			echarts.WithInitializationOpts(opts.Initialization{
				PageTitle: "Economic Indicators",
				Width:     "1100px",
				Height:    "420px",
			}),
			echarts.WithTitleOpts(opts.Title{Title: p.Title}),
			echarts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
			echarts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
		)

		x := make([]string, s.Len())
		data := make([]opts.LineData, s.Len())
		for i := range s.Values {
			x[i] = s.Dates[i].Format("2006-01-02")
			data[i] = opts.LineData{Value: s.Values[i]}
		}
		line.SetXAxis(x).AddSeries(s.Name, data).SetSeriesOptions(
			echarts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
		)
		page.AddCharts(line)
	}

	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(r.outputDir, "interactive_dashboard.html")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create dashboard page: %w", err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return "", fmt.Errorf("render dashboard page: %w", err)
	}
	metrics.ChartsRendered.Add(1)
	return path, nil
}
