package charts

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// CorrelationHeatmapPNG renders a labelled correlation matrix on a
// blue-white-red scale with the coefficient printed in each cell.
func (r *Renderer) CorrelationHeatmapPNG(labels []string, matrix [][]float64) (string, error) {
	n := len(labels)
	if n == 0 {
		return "", errors.New("no series to correlate")
	}
	if len(matrix) != n {
		return "", fmt.Errorf("matrix has %d rows for %d labels", len(matrix), n)
	}
	for i, row := range matrix {
		if len(row) != n {
			return "", fmt.Errorf("matrix row %d has %d columns for %d labels", i, len(row), n)
		}
	}

	const (
		cell = 70
		left = 100
		top  = 60
		pad  = 20
	)
	width := left + n*cell + pad
	height := top + n*cell + pad

	rd, err := chart.PNG(width, height)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return "", fmt.Errorf("load font: %w", err)
	}

	rd.SetFillColor(chart.ColorWhite)
	fillRect(rd, 0, 0, width, height)

	rd.SetFont(font)
	rd.SetFontColor(chart.ColorBlack)
	rd.SetFontSize(14)
	rd.Text("Indicator correlations", left, top/2)

	rd.SetFontSize(11)
	for i, label := range labels {
		rd.Text(label, left+i*cell+6, top-8)
		rd.Text(label, 8, top+i*cell+cell/2+4)
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := matrix[i][j]
			rd.SetFillColor(heatColor(v))
			fillRect(rd, left+j*cell, top+i*cell, cell-2, cell-2)

			txt := fmt.Sprintf("%.2f", v)
			tw := rd.MeasureText(txt).Width()
			rd.Text(txt, left+j*cell+(cell-tw)/2, top+i*cell+cell/2+4)
		}
	}

	var buf bytes.Buffer
	if err := rd.Save(&buf); err != nil {
		return "", fmt.Errorf("encode heatmap: %w", err)
	}
	return r.writeFile("correlation_heatmap.png", buf.Bytes())
}

func fillRect(rd chart.Renderer, x, y, w, h int) {
	rd.MoveTo(x, y)
	rd.LineTo(x+w, y)
	rd.LineTo(x+w, y+h)
	rd.LineTo(x, y+h)
	rd.Close()
	rd.Fill()
}

// heatColor maps a correlation in [-1, 1] onto a blue-white-red scale.
func heatColor(v float64) drawing.Color {
	if math.IsNaN(v) {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	if v < -1 {
		v = -1
	}
	if v >= 0 {
		return drawing.Color{R: 255, G: uint8(255 - v*140), B: uint8(255 - v*150), A: 255}
	}
	return drawing.Color{R: uint8(255 + v*150), G: uint8(255 + v*140), B: 255, A: 255}
}
