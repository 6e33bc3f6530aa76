package style

import (
	"fmt"
	"sync"

	"github.com/MeKo-Tech/pointmap/internal/label"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// DefaultFontSize matches the browser default label font (10px sans-serif).
const DefaultFontSize = 10

var (
	fontOnce  sync.Once
	parsedTTF *opentype.Font
	parseErr  error
)

// NewFace creates a label face of the given pixel size from the embedded Go font.
func NewFace(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		parsedTTF, parseErr = opentype.Parse(goregular.TTF)
	})
	if parseErr != nil {
		return nil, fmt.Errorf("failed to parse label font: %w", parseErr)
	}

	face, err := opentype.NewFace(parsedTTF, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create label face: %w", err)
	}
	return face, nil
}

// Measure returns the pixel metrics of s drawn with face.
func Measure(face font.Face, s string) label.Metrics {
	m := face.Metrics()
	return label.Metrics{
		Width:   fixedToFloat(font.MeasureString(face, s)),
		Ascent:  fixedToFloat(m.Ascent),
		Descent: fixedToFloat(m.Descent),
	}
}

// TextBox lays out a feature's label around anchor pixel (ax, ay).
func TextBox(face font.Face, t Text, ax, ay float64) label.Box {
	return label.Layout(t.Placement, ax, ay, Measure(face, t.Text))
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
