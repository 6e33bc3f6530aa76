// Package mapview assembles the interactive map: the view, the base tile layer,
// the styled point layer and the tooltip overlay driven by pointer moves.
package mapview

import (
	"image"
	"math"

	"github.com/MeKo-Tech/pointmap/internal/tile"
	"github.com/MeKo-Tech/pointmap/internal/types"
	"github.com/paulmach/orb"
)

// MaxResolution is the meters-per-pixel of zoom 0 (one 256px tile spans the world).
const MaxResolution = 2 * tile.HalfWorld / tile.Size

// Pixel is a position in map container pixels, origin top-left, y down.
type Pixel [2]float64

// X returns the horizontal pixel position.
func (p Pixel) X() float64 { return p[0] }

// Y returns the vertical pixel position.
func (p Pixel) Y() float64 { return p[1] }

// Add returns p shifted by o.
func (p Pixel) Add(o Pixel) Pixel { return Pixel{p[0] + o[0], p[1] + o[1]} }

// View is the visible part of the map: a Web Mercator center, a zoom level and the
// pixel size of the map container.
type View struct {
	Center orb.Point // EPSG:3857 meters
	Zoom   float64
	Size   image.Point
}

// NewView builds a view centered on lon/lat degrees. The center is projected to
// Web Mercator before use.
func NewView(lon, lat, zoom float64, size image.Point) View {
	return View{Center: tile.FromLonLat(lon, lat), Zoom: zoom, Size: size}
}

// Resolution returns meters per pixel.
func (v View) Resolution() float64 {
	return MaxResolution / math.Pow(2, v.Zoom)
}

// PixelFromCoordinate maps a Web Mercator coordinate to a container pixel.
func (v View) PixelFromCoordinate(c orb.Point) Pixel {
	res := v.Resolution()
	return Pixel{
		(c.X()-v.Center.X())/res + float64(v.Size.X)/2,
		(v.Center.Y()-c.Y())/res + float64(v.Size.Y)/2,
	}
}

// CoordinateFromPixel maps a container pixel to a Web Mercator coordinate.
func (v View) CoordinateFromPixel(p Pixel) orb.Point {
	res := v.Resolution()
	return orb.Point{
		v.Center.X() + (p.X()-float64(v.Size.X)/2)*res,
		v.Center.Y() - (p.Y()-float64(v.Size.Y)/2)*res,
	}
}

// Extent returns the Web Mercator bound covered by the container.
func (v View) Extent() orb.Bound {
	tl := v.CoordinateFromPixel(Pixel{0, 0})
	br := v.CoordinateFromPixel(Pixel{float64(v.Size.X), float64(v.Size.Y)})
	return orb.Bound{Min: orb.Point{tl.X(), br.Y()}, Max: orb.Point{br.X(), tl.Y()}}
}

// ExtentLonLat returns the extent in WGS84 degrees, clamped to the valid world.
func (v View) ExtentLonLat() types.BoundingBox {
	ext := v.Extent()
	clampX := func(x float64) float64 { return math.Max(-tile.HalfWorld, math.Min(tile.HalfWorld, x)) }
	minLon, minLat := tile.ToLonLat(orb.Point{clampX(ext.Min.X()), clampX(ext.Min.Y())})
	maxLon, maxLat := tile.ToLonLat(orb.Point{clampX(ext.Max.X()), clampX(ext.Max.Y())})
	return types.BoundingBox{MinLon: minLon, MinLat: minLat, MaxLon: maxLon, MaxLat: maxLat}
}

// TileZoom returns the tile grid zoom used for the base layer.
func (v View) TileZoom() uint32 {
	z := math.Round(v.Zoom)
	if z < 0 {
		return 0
	}
	return uint32(z)
}

// Tiles returns the base tiles covering the view at TileZoom.
func (v View) Tiles() []tile.Ref {
	return tile.Cover(v.Extent(), v.TileZoom())
}
