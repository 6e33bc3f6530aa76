package mapview

import (
	"context"

	"github.com/MeKo-Tech/pointmap/internal/style"
	"github.com/MeKo-Tech/pointmap/internal/tile"
	"github.com/MeKo-Tech/pointmap/internal/types"
	"github.com/paulmach/orb"
)

// TileSource returns the encoded image of a base tile.
type TileSource interface {
	Fetch(ctx context.Context, c tile.Coords) ([]byte, error)
}

// TileLayer is the base map layer. A nil Source leaves the base blank.
type TileLayer struct {
	Source TileSource
}

// RenderedFeature is a dataset point as held by the point layer: the original record
// plus its geometry in the map projection.
type RenderedFeature struct {
	Index    int // position in the dataset
	Point    types.PointFeature
	Geometry orb.Point // EPSG:3857 meters
}

// VectorLayer is the point layer: one rendered feature per dataset entry, drawn in
// order, styled by Style on every evaluation.
type VectorLayer struct {
	Features []RenderedFeature
	Style    style.Func
}

// NewVectorLayer projects every point into Web Mercator. fn defaults to style.ForFeature.
func NewVectorLayer(points []types.PointFeature, fn style.Func) *VectorLayer {
	if fn == nil {
		fn = style.ForFeature
	}

	features := make([]RenderedFeature, len(points))
	for i, p := range points {
		features[i] = RenderedFeature{
			Index:    i,
			Point:    p,
			Geometry: tile.FromLonLat(p.Lon, p.Lat),
		}
	}

	return &VectorLayer{Features: features, Style: fn}
}

// StyleOf evaluates the layer style for f.
func (l *VectorLayer) StyleOf(f RenderedFeature) style.Style {
	return l.Style(f.Point)
}
