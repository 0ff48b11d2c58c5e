package charts

import (
	"errors"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/econlab/econpipe/internal/forecast"
	"github.com/econlab/econpipe/internal/timeseries"
)

// bandSeries shades the region between two bounds. It participates in
// axis range calculation through GetBoundedValues.
type bandSeries struct {
	Name    string
	Style   chart.Style
	XValues []time.Time
	Upper   []float64
	Lower   []float64
}

func (b bandSeries) GetName() string           { return b.Name }
func (b bandSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (b bandSeries) GetStyle() chart.Style     { return b.Style }
func (b bandSeries) Len() int                  { return len(b.XValues) }

func (b bandSeries) GetBoundedValues(i int) (x, y1, y2 float64) {
	return chart.TimeToFloat64(b.XValues[i]), b.Upper[i], b.Lower[i]
}

func (b bandSeries) Validate() error {
	if len(b.XValues) != len(b.Upper) || len(b.XValues) != len(b.Lower) {
		return errors.New("band series needs equal-length dates and bounds")
	}
	return nil
}

func (b bandSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	style := b.Style.InheritFrom(defaults)
	chart.Draw.BoundedSeries(r, canvasBox, xrange, yrange, style, b)
}

// ForecastPNG renders history, the forecast path, and its shaded
// confidence band on one chart.
func (r *Renderer) ForecastPNG(name string, history *timeseries.Series, fc *forecast.Result) (string, error) {
	if history == nil || history.Len() < 2 {
		return "", fmt.Errorf("series %q: need at least 2 points to chart", name)
	}
	if fc == nil || len(fc.Dates) == 0 {
		return "", errors.New("empty forecast")
	}
	if len(fc.Mean) != len(fc.Dates) || len(fc.Lower) != len(fc.Dates) || len(fc.Upper) != len(fc.Dates) {
		return "", fmt.Errorf("series %q: forecast dates and bounds differ in length", name)
	}

	// Anchor the forecast path to the last observation so the lines
	// join up.
	fcDates := append([]time.Time{history.LastDate()}, fc.Dates...)
	fcMean := append([]float64{history.Last()}, fc.Mean...)

	graph := &chart.Chart{
		Title:  fmt.Sprintf("%s forecast (%s)", name, forecastLabel(fc)),
		Width:  r.width,
		Height: r.height,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
		},
		Series: []chart.Series{
			bandSeries{
				Name: fmt.Sprintf("%.0f%% interval", fc.Level*100),
				Style: chart.Style{
					FillColor:   chart.ColorBlue.WithAlpha(60),
					StrokeColor: chart.ColorTransparent,
				},
				XValues: fc.Dates,
				Upper:   fc.Upper,
				Lower:   fc.Lower,
			},
			chart.TimeSeries{
				Name:    "history",
				XValues: history.Dates,
				YValues: history.Values,
				Style:   chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 2},
			},
			chart.TimeSeries{
				Name:    "forecast",
				XValues: fcDates,
				YValues: fcMean,
				Style: chart.Style{
					StrokeColor:     chart.ColorRed,
					StrokeWidth:     2,
					StrokeDashArray: []float64{5, 3},
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(graph)}

	return r.writePNG(fileName(name, "forecast"), graph)
}

func forecastLabel(fc *forecast.Result) string {
	if fc.Order != nil {
		return fc.Order.String()
	}
	return string(fc.Model)
}
