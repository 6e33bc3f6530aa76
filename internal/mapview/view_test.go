package mapview

import (
	"image"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewResolution(t *testing.T) {
	v := NewView(0, 0, 0, image.Pt(256, 256))
	assert.InDelta(t, 156543.03392804097, v.Resolution(), 1e-6)

	v.Zoom = 2
	assert.InDelta(t, 156543.03392804097/4, v.Resolution(), 1e-6)
}

func TestViewCenterPixel(t *testing.T) {
	v := NewView(0, 0, 2, image.Pt(800, 600))
	px := v.PixelFromCoordinate(v.Center)
	assert.InDelta(t, 400, px.X(), 1e-9)
	assert.InDelta(t, 300, px.Y(), 1e-9)
}

func TestViewPixelCoordinateRoundTrip(t *testing.T) {
	v := NewView(13.405, 52.52, 5.5, image.Pt(640, 480))

	for _, px := range []Pixel{{0, 0}, {640, 480}, {12.5, 400.25}, {320, 240}} {
		c := v.CoordinateFromPixel(px)
		back := v.PixelFromCoordinate(c)
		assert.InDelta(t, px.X(), back.X(), 1e-6)
		assert.InDelta(t, px.Y(), back.Y(), 1e-6)
	}
}

func TestViewYAxisPointsDown(t *testing.T) {
	v := NewView(0, 0, 2, image.Pt(800, 600))
	north := v.PixelFromCoordinate(orb.Point{0, 1e6})
	assert.Less(t, north.Y(), 300.0)
}

func TestViewExtent(t *testing.T) {
	v := NewView(0, 0, 2, image.Pt(800, 600))
	ext := v.Extent()
	res := v.Resolution()

	assert.InDelta(t, -400*res, ext.Min.X(), 1e-6)
	assert.InDelta(t, 400*res, ext.Max.X(), 1e-6)
	assert.InDelta(t, -300*res, ext.Min.Y(), 1e-6)
	assert.InDelta(t, 300*res, ext.Max.Y(), 1e-6)

	bbox := v.ExtentLonLat()
	assert.InDelta(t, -140.625, bbox.MinLon, 1e-9)
	assert.InDelta(t, 140.625, bbox.MaxLon, 1e-9)
	assert.InDelta(t, -bbox.MaxLat, bbox.MinLat, 1e-9)
	assert.Less(t, bbox.MaxLat, 85.06)

	// Zoomed out past the world: clamped, never NaN.
	wide := NewView(0, 0, 0, image.Pt(1024, 1024)).ExtentLonLat()
	assert.InDelta(t, -180, wide.MinLon, 1e-9)
	assert.InDelta(t, 180, wide.MaxLon, 1e-9)
	assert.False(t, math.IsNaN(wide.MinLat))
	assert.InDelta(t, 85.0511, wide.MaxLat, 1e-3)
}

func TestViewTiles(t *testing.T) {
	v := NewView(0, 0, 2, image.Pt(800, 600))
	assert.Equal(t, uint32(2), v.TileZoom())

	refs := v.Tiles()
	require.NotEmpty(t, refs)
	for _, r := range refs {
		assert.Equal(t, uint32(2), r.Coords.Z)
		assert.True(t, r.Coords.Valid(), "tile %s", r.Coords)
	}
}
