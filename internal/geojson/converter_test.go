package geojson

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/MeKo-Tech/pointmap/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCollection = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [2.3522, 48.8566]},
     "properties": {"name": "Paris", "textPosition": "left"}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [13.405, 52.52]},
     "properties": {"name": "Berlin"}}
  ]
}`

func TestReadPointFeatures(t *testing.T) {
	features, err := ReadPointFeatures([]byte(sampleCollection))
	require.NoError(t, err)
	require.Len(t, features, 2)

	assert.Equal(t, types.PointFeature{Name: "Paris", Lon: 2.3522, Lat: 48.8566, AnchorSide: types.AnchorLeft}, features[0])
	assert.Equal(t, "Berlin", features[1].Name)
	assert.Equal(t, types.AnchorUnspecified, features[1].AnchorSide)
}

func TestReadPointFeatures_UnknownTextPosition(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer slog.SetDefault(prev)

	features, err := ReadPointFeatures([]byte(`{"type": "FeatureCollection", "features": [
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [1, 2]},
		 "properties": {"name": "Somewhere", "textPosition": "center"}},
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [3, 4]},
		 "properties": {"name": "Plain"}}]}`))
	require.NoError(t, err)
	require.Len(t, features, 2)

	assert.Equal(t, types.AnchorSide("center"), features[0].AnchorSide, "value is kept as-is")
	assert.Contains(t, buf.String(), "textPosition=center")
	assert.Contains(t, buf.String(), "name=Somewhere")
	assert.NotContains(t, buf.String(), "name=Plain", "a missing textPosition is not reported")
}

func TestReadPointFeatures_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", `{"type": "FeatureCollection", "features": [`},
		{"line geometry", `{"type": "FeatureCollection", "features": [
			{"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[0,0],[1,1]]}, "properties": {"name": "x"}}]}`},
		{"missing geometry", `{"type": "FeatureCollection", "features": [
			{"type": "Feature", "geometry": null, "properties": {"name": "x"}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadPointFeatures([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestToGeoJSON_RoundTrip(t *testing.T) {
	in := []types.PointFeature{
		{Name: "Null Island", Lon: 0, Lat: 0, AnchorSide: types.AnchorBottom},
		{Name: "London", Lon: -0.1276, Lat: 51.5074, AnchorSide: types.AnchorTop},
		{Name: "Nowhere", Lon: 10, Lat: 10},
	}

	data, err := ToGeoJSONBytes(in, false)
	require.NoError(t, err)

	out, err := ReadPointFeatures(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestToGeoJSON_WithPlacement(t *testing.T) {
	in := []types.PointFeature{{Name: "Paris", Lon: 2.3522, Lat: 48.8566, AnchorSide: types.AnchorLeft}}

	data, err := ToGeoJSONBytes(in, true)
	require.NoError(t, err)

	var doc struct {
		Features []struct {
			Properties struct {
				Name      string `json:"name"`
				Placement struct {
					TextAlign    string  `json:"textAlign"`
					TextBaseline string  `json:"textBaseline"`
					OffsetX      float64 `json:"offsetX"`
					OffsetY      float64 `json:"offsetY"`
				} `json:"placement"`
			} `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Features, 1)

	p := doc.Features[0].Properties
	assert.Equal(t, "Paris", p.Name)
	assert.Equal(t, "right", p.Placement.TextAlign)
	assert.Equal(t, "middle", p.Placement.TextBaseline)
	assert.Equal(t, -15.0, p.Placement.OffsetX)
	assert.Equal(t, 0.0, p.Placement.OffsetY)
}
