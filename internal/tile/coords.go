package tile

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// HalfWorld is half the width of the Web Mercator (EPSG:3857) world in meters.
const HalfWorld = 20037508.342789244

// Size is the edge length of a base tile in pixels.
const Size = 256

// Coords represents a tile coordinate in the Web Mercator tile system (z/x/y)
type Coords struct {
	Z uint32 // Zoom level (0-19)
	X uint32 // X coordinate (column)
	Y uint32 // Y coordinate (row)
}

// String returns the tile coordinate as a string in format "z{zoom}_x{x}_y{y}"
func (c Coords) String() string {
	return fmt.Sprintf("z%d_x%d_y%d", c.Z, c.X, c.Y)
}

// Valid reports whether X and Y are inside the tile grid of zoom Z.
func (c Coords) Valid() bool {
	if c.Z > 30 {
		return false
	}
	n := uint32(1) << c.Z
	return c.X < n && c.Y < n
}

// NewCoords creates a new Coords from zoom, x, y values
func NewCoords(z, x, y uint32) Coords {
	return Coords{Z: z, X: x, Y: y}
}

// FromLonLat transforms WGS84 degrees into Web Mercator meters.
func FromLonLat(lon, lat float64) orb.Point {
	return project.WGS84.ToMercator(orb.Point{lon, lat})
}

// ToLonLat transforms Web Mercator meters back into WGS84 degrees.
func ToLonLat(p orb.Point) (lon, lat float64) {
	ll := project.Mercator.ToWGS84(p)
	return ll.Lon(), ll.Lat()
}

// Ref is a tile covering part of an extent. Column is the unwrapped column, which
// differs from Coords.X when the extent crosses the antimeridian.
type Ref struct {
	Coords Coords
	Column int64
}

// Origin returns the top-left corner of the referenced tile in Web Mercator meters,
// using the unwrapped column.
func (r Ref) Origin() orb.Point {
	span := 2 * HalfWorld / float64(uint64(1)<<r.Coords.Z)
	return orb.Point{-HalfWorld + float64(r.Column)*span, HalfWorld - float64(r.Coords.Y)*span}
}

// Cover returns the tiles of zoom z intersecting a Web Mercator extent.
// Columns wrap around the world; rows outside the grid are skipped.
func Cover(extent orb.Bound, z uint32) []Ref {
	n := int64(1) << z
	span := 2 * HalfWorld / float64(n)

	minCol := int64(math.Floor((extent.Min.X() + HalfWorld) / span))
	maxCol := int64(math.Ceil((extent.Max.X()+HalfWorld)/span)) - 1
	minRow := int64(math.Floor((HalfWorld - extent.Max.Y()) / span))
	maxRow := int64(math.Ceil((HalfWorld-extent.Min.Y())/span)) - 1

	if minRow < 0 {
		minRow = 0
	}
	if maxRow > n-1 {
		maxRow = n - 1
	}

	var refs []Ref
	for col := minCol; col <= maxCol; col++ {
		x := ((col % n) + n) % n
		for row := minRow; row <= maxRow; row++ {
			refs = append(refs, Ref{
				Coords: NewCoords(z, uint32(x), uint32(row)),
				Column: col,
			})
		}
	}
	return refs
}

// Unique returns the distinct tile coordinates of refs in first-seen order.
func Unique(refs []Ref) []Coords {
	seen := make(map[Coords]struct{}, len(refs))
	out := make([]Coords, 0, len(refs))
	for _, r := range refs {
		if _, ok := seen[r.Coords]; ok {
			continue
		}
		seen[r.Coords] = struct{}{}
		out = append(out, r.Coords)
	}
	return out
}
