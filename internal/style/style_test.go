package style

import (
	"image"
	"image/color"
	"testing"

	"github.com/MeKo-Tech/pointmap/internal/label"
	"github.com/MeKo-Tech/pointmap/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForFeature(t *testing.T) {
	f := types.PointFeature{Name: "Berlin", Lon: 13.405, Lat: 52.52, AnchorSide: types.AnchorRight}
	s := ForFeature(f)

	assert.Equal(t, DefaultIconSrc, s.Icon.Src)
	assert.Equal(t, 0.1, s.Icon.Scale)
	assert.Equal(t, "Berlin", s.Text.Text)
	assert.Equal(t, label.PlacementFor(types.AnchorRight), s.Text.Placement)
	assert.Equal(t, color.NRGBA{A: 255}, s.Text.Fill)
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, s.Text.Stroke)
	assert.Equal(t, 2.0, s.Text.StrokeWidth)
}

func TestNewFunc_CustomIcon(t *testing.T) {
	s := NewFunc("http://localhost/pin.png")(types.PointFeature{Name: "x"})
	assert.Equal(t, "http://localhost/pin.png", s.Icon.Src)
	assert.Equal(t, label.Centered, s.Text.Placement)
}

func TestIconBox(t *testing.T) {
	icon := ForFeature(types.PointFeature{}).Icon

	b := icon.Box(100, 100, image.Point{})
	assert.InDelta(t, 98.4, b.MinX, 1e-9)
	assert.InDelta(t, 97.6, b.MinY, 1e-9)
	assert.InDelta(t, 101.6, b.MaxX, 1e-9)
	assert.InDelta(t, 102.4, b.MaxY, 1e-9)

	b = icon.Box(0, 0, image.Pt(100, 100))
	assert.InDelta(t, -5, b.MinX, 1e-9)
	assert.InDelta(t, 5, b.MaxY, 1e-9)
}

func TestMeasureAndTextBox(t *testing.T) {
	face, err := NewFace(DefaultFontSize)
	require.NoError(t, err)
	defer face.Close()

	short := Measure(face, "Paris")
	long := Measure(face, "Null Island")
	assert.Greater(t, short.Width, 0.0)
	assert.Greater(t, long.Width, short.Width)
	assert.Greater(t, short.Ascent, 0.0)
	assert.GreaterOrEqual(t, short.Descent, 0.0)

	// A left-anchored label ends 15px left of the marker.
	text := ForFeature(types.PointFeature{Name: "Paris", AnchorSide: types.AnchorLeft}).Text
	box := TextBox(face, text, 200, 100)
	assert.InDelta(t, 185, box.MaxX, 1e-9)
	assert.InDelta(t, 185-short.Width, box.MinX, 1e-9)
	assert.True(t, box.MinY < 100 && box.MaxY > 100, "middle baseline straddles the anchor row")
}
