package types

import (
	"fmt"

	"github.com/paulmach/orb"
)

// AnchorSide names the side of a marker its label is drawn on.
// Values outside the four known sides are kept as-is and treated as unspecified.
type AnchorSide string

const (
	AnchorTop         AnchorSide = "top"
	AnchorBottom      AnchorSide = "bottom"
	AnchorLeft        AnchorSide = "left"
	AnchorRight       AnchorSide = "right"
	AnchorUnspecified AnchorSide = ""
)

// Known reports whether s is one of the four recognized sides.
func (s AnchorSide) Known() bool {
	switch s {
	case AnchorTop, AnchorBottom, AnchorLeft, AnchorRight:
		return true
	default:
		return false
	}
}

// PointFeature is a named point of interest in WGS84 (EPSG:4326).
type PointFeature struct {
	Name       string
	Lon        float64 // degrees
	Lat        float64 // degrees
	AnchorSide AnchorSide
}

// Point returns the feature location as an orb.Point (lon, lat).
func (f PointFeature) Point() orb.Point {
	return orb.Point{f.Lon, f.Lat}
}

// String returns a human-readable representation of the feature
func (f PointFeature) String() string {
	side := string(f.AnchorSide)
	if side == "" {
		side = "unspecified"
	}
	return fmt.Sprintf("%s(%.4f,%.4f,%s)", f.Name, f.Lon, f.Lat, side)
}
