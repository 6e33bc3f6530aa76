// Package assets embeds the reference dataset and the map page.
package assets

import "embed"

// ReferenceDataset is the GeoJSON FeatureCollection of the points shown on the map.
//
//go:embed data/points.geojson
var ReferenceDataset []byte

// WebFS holds the map page templates served by `pointmap serve`.
//
//go:embed web/*.html
var WebFS embed.FS
