package geojson

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/pointmap/internal/label"
	"github.com/MeKo-Tech/pointmap/internal/types"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Property keys of the point dataset format.
const (
	PropName         = "name"
	PropTextPosition = "textPosition"
)

// ReadPointFeatures parses a GeoJSON FeatureCollection of named points.
// Every feature must carry a Point geometry; order is preserved.
func ReadPointFeatures(data []byte) ([]types.PointFeature, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GeoJSON: %w", err)
	}

	features := make([]types.PointFeature, 0, len(fc.Features))
	for i, f := range fc.Features {
		pf, err := pointFeature(f)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		features = append(features, pf)
	}

	return features, nil
}

func pointFeature(f *geojson.Feature) (types.PointFeature, error) {
	if f == nil || f.Geometry == nil {
		return types.PointFeature{}, fmt.Errorf("missing geometry")
	}

	p, ok := f.Geometry.(orb.Point)
	if !ok {
		return types.PointFeature{}, fmt.Errorf("unsupported geometry type %q (want Point)", f.Geometry.GeoJSONType())
	}

	pf := types.PointFeature{
		Name:       stringProp(f.Properties, PropName),
		Lon:        p.Lon(),
		Lat:        p.Lat(),
		AnchorSide: types.AnchorSide(stringProp(f.Properties, PropTextPosition)),
	}
	if pf.AnchorSide != types.AnchorUnspecified && !pf.AnchorSide.Known() {
		slog.Debug("unrecognized textPosition, label will be centered",
			"name", pf.Name,
			"textPosition", string(pf.AnchorSide),
		)
	}
	return pf, nil
}

// stringProp returns a string property or "" when it is missing or not a string.
func stringProp(props geojson.Properties, key string) string {
	s, _ := props[key].(string)
	return s
}

// ToGeoJSON converts point features to a GeoJSON FeatureCollection in the dataset format.
// When withPlacement is set, the computed label placement is added to each feature's
// properties under "placement".
func ToGeoJSON(features []types.PointFeature, withPlacement bool) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, f := range features {
		geoFeature := geojson.NewFeature(f.Point())
		geoFeature.Properties[PropName] = f.Name
		if f.AnchorSide != types.AnchorUnspecified {
			geoFeature.Properties[PropTextPosition] = string(f.AnchorSide)
		}
		if withPlacement {
			geoFeature.Properties["placement"] = label.PlacementFor(f.AnchorSide)
		}
		fc.Append(geoFeature)
	}

	return fc
}

// ToGeoJSONBytes converts features to indented GeoJSON bytes
func ToGeoJSONBytes(features []types.PointFeature, withPlacement bool) ([]byte, error) {
	data, err := json.MarshalIndent(ToGeoJSON(features, withPlacement), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal GeoJSON: %w", err)
	}

	return data, nil
}
