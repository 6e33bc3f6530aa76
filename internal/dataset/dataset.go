// Package dataset provides the fixed set of points shown on the map.
package dataset

import (
	"fmt"

	"github.com/MeKo-Tech/pointmap/assets"
	"github.com/MeKo-Tech/pointmap/internal/geojson"
	"github.com/MeKo-Tech/pointmap/internal/types"
)

// Reference parses the embedded reference dataset.
// The result is a fresh slice on every call; callers may keep it.
func Reference() ([]types.PointFeature, error) {
	features, err := geojson.ReadPointFeatures(assets.ReferenceDataset)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference dataset: %w", err)
	}
	return features, nil
}

// MustReference is like Reference but panics on error. The embedded document is a
// compile-time asset, so a failure here is a build defect.
func MustReference() []types.PointFeature {
	features, err := Reference()
	if err != nil {
		panic(err)
	}
	return features
}
