package charts

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
)

// maxChangeBars caps the change chart at the most recent bars so dense
// daily series stay readable.
const maxChangeBars = 120

// YoYBarPNG renders year-over-year percentage changes as bars, green
// for gains and red for losses.
func (r *Renderer) YoYBarPNG(name string, dates []time.Time, changes []float64) (string, error) {
	if len(dates) != len(changes) {
		return "", errors.New("dates and changes must have the same length")
	}
	if len(changes) == 0 {
		return "", errors.New("no changes to chart")
	}
	if len(changes) > maxChangeBars {
		dates = dates[len(dates)-maxChangeBars:]
		changes = changes[len(changes)-maxChangeBars:]
	}

	labelEvery := max(1, len(changes)/8)
	bars := make([]chart.Value, len(changes))
	for i, v := range changes {
		c := chart.ColorGreen
		if v < 0 {
			c = chart.ColorRed
		}
		label := ""
		if i%labelEvery == 0 {
			label = dates[i].Format("2006-01")
		}
		bars[i] = chart.Value{
			Value: v,
			Label: label,
			Style: chart.Style{FillColor: c, StrokeColor: c},
		}
	}

	width := max(r.width, len(bars)*8)
	graph := chart.BarChart{
		Title:    fmt.Sprintf("%s year-over-year change (%%)", name),
		Width:    width,
		Height:   r.height,
		BarWidth: max(2, (width-100)/len(bars)-2),
		Bars:     bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return "", fmt.Errorf("render chart: %w", err)
	}
	return r.writeFile(fileName(name, "yoy_change"), buf.Bytes())
}
