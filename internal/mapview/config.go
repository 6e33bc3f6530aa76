package mapview

import (
	"fmt"
	"strconv"

	"github.com/MeKo-Tech/pointmap/internal/style"
)

// Data attributes of the map container carrying the view configuration to
// browser hosts.
const (
	AttrCenterLon    = "data-center-lon"
	AttrCenterLat    = "data-center-lat"
	AttrZoom         = "data-zoom"
	AttrIcon         = "data-icon"
	AttrHitTolerance = "data-hit-tolerance"
)

// ViewConfig is the part of the session options a page needs to rebuild the same
// map: a session made from it draws and hit-tests features at the same pixels.
type ViewConfig struct {
	CenterLon    float64
	CenterLat    float64
	Zoom         float64
	Icon         string // empty: style.DefaultIconSrc
	HitTolerance float64
}

// Options returns session options for c. Size, tiles, observers and logger are
// left to the caller.
func (c ViewConfig) Options() Options {
	zoom := c.Zoom
	return Options{
		CenterLon:    c.CenterLon,
		CenterLat:    c.CenterLat,
		Zoom:         &zoom,
		Style:        style.NewFunc(c.Icon),
		HitTolerance: c.HitTolerance,
	}
}

// Attributes returns c as map container data attributes.
func (c ViewConfig) Attributes() map[string]string {
	attrs := map[string]string{
		AttrCenterLon:    formatFloat(c.CenterLon),
		AttrCenterLat:    formatFloat(c.CenterLat),
		AttrZoom:         formatFloat(c.Zoom),
		AttrHitTolerance: formatFloat(c.HitTolerance),
	}
	if c.Icon != "" {
		attrs[AttrIcon] = c.Icon
	}
	return attrs
}

// ParseViewConfig reads a ViewConfig from data attributes. attr returns "" for a
// missing attribute; missing values keep the defaults (center 0,0, DefaultZoom).
func ParseViewConfig(attr func(name string) string) (ViewConfig, error) {
	c := ViewConfig{Zoom: DefaultZoom, Icon: attr(AttrIcon)}

	fields := []struct {
		name string
		dst  *float64
	}{
		{AttrCenterLon, &c.CenterLon},
		{AttrCenterLat, &c.CenterLat},
		{AttrZoom, &c.Zoom},
		{AttrHitTolerance, &c.HitTolerance},
	}
	for _, f := range fields {
		s := attr(f.name)
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return ViewConfig{}, fmt.Errorf("invalid %s %q: %w", f.name, s, err)
		}
		*f.dst = v
	}

	return c, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
