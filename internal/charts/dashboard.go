package charts

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
)

// compositeGrid decodes rendered panels and lays them out into a
// white-backed grid with the given column count.
func compositeGrid(images [][]byte, cols int) ([]byte, error) {
	if len(images) == 0 {
		return nil, errors.New("no images to composite")
	}
	if cols < 1 {
		cols = 1
	}

	decoded := make([]image.Image, len(images))
	maxW, maxH := 0, 0
	for i, raw := range images {
		img, err := png.Decode(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("decode panel %d: %w", i, err)
		}
		decoded[i] = img
		if w := img.Bounds().Dx(); w > maxW {
			maxW = w
		}
		if h := img.Bounds().Dy(); h > maxH {
			maxH = h
		}
	}

	rows := (len(decoded) + cols - 1) / cols
	canvas := image.NewRGBA(image.Rect(0, 0, cols*maxW, rows*maxH))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	for i, img := range decoded {
		x := (i % cols) * maxW
		y := (i / cols) * maxH
		target := image.Rect(x, y, x+img.Bounds().Dx(), y+img.Bounds().Dy())
		draw.Draw(canvas, target, img, img.Bounds().Min, draw.Over)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode dashboard: %w", err)
	}
	return buf.Bytes(), nil
}
