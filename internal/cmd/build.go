package cmd

import (
	"fmt"
	"image"
	"os"

	"github.com/MeKo-Tech/pointmap/internal/dataset"
	"github.com/MeKo-Tech/pointmap/internal/mapview"
	"github.com/MeKo-Tech/pointmap/internal/mbtiles"
	"github.com/MeKo-Tech/pointmap/internal/metrics"
	"github.com/MeKo-Tech/pointmap/internal/tilesource"
	"github.com/MeKo-Tech/pointmap/internal/types"
	"github.com/spf13/viper"
)

// mapSettings is the map.* configuration.
type mapSettings struct {
	CenterLon    float64
	CenterLat    float64
	Zoom         float64
	Size         image.Point
	Icon         string
	HitTolerance float64
}

func mapSettingsFromConfig() (mapSettings, error) {
	ms := mapSettings{
		CenterLon:    viper.GetFloat64("map.center_lon"),
		CenterLat:    viper.GetFloat64("map.center_lat"),
		Zoom:         viper.GetFloat64("map.zoom"),
		Size:         image.Pt(viper.GetInt("map.width"), viper.GetInt("map.height")),
		Icon:         viper.GetString("map.icon"),
		HitTolerance: viper.GetFloat64("map.hit_tolerance"),
	}
	if ms.Size.X <= 0 || ms.Size.Y <= 0 {
		return ms, fmt.Errorf("map size must be positive, got %dx%d", ms.Size.X, ms.Size.Y)
	}
	if ms.Zoom < 0 || ms.Zoom > 22 {
		return ms, fmt.Errorf("zoom must be in [0, 22], got %g", ms.Zoom)
	}
	if ms.CenterLat < -85.0511 || ms.CenterLat > 85.0511 {
		return ms, fmt.Errorf("center latitude %g outside the Web Mercator range", ms.CenterLat)
	}
	return ms, nil
}

// viewConfig is the part of the settings the page passes on to browser hosts.
func (ms mapSettings) viewConfig() mapview.ViewConfig {
	return mapview.ViewConfig{
		CenterLon:    ms.CenterLon,
		CenterLat:    ms.CenterLat,
		Zoom:         ms.Zoom,
		Icon:         ms.Icon,
		HitTolerance: ms.HitTolerance,
	}
}

// newSession assembles the map in host with the reference dataset.
func newSession(host mapview.Host, ms mapSettings, tiles tilesource.Source) (*mapview.Session, []types.PointFeature, error) {
	features, err := dataset.Reference()
	if err != nil {
		return nil, nil, err
	}

	opts := ms.viewConfig().Options()
	opts.Size = ms.Size
	opts.Tiles = tiles
	opts.OnPointerMove = metrics.ObservePointerMove
	opts.Logger = logger

	session, err := mapview.NewSession(host, features, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to assemble map: %w", err)
	}
	return session, features, nil
}

// buildTileSource returns the configured base tile source. When tiles.cache is set
// the source reads through an MBTiles store; close releases it.
func buildTileSource() (src tilesource.Source, closeFn func() error, err error) {
	closeFn = func() error { return nil }

	var upstream tilesource.Source
	if !viper.GetBool("tiles.offline") {
		h, err := tilesource.NewHTTP(tilesource.HTTPConfig{
			URLTemplate: viper.GetString("tiles.url"),
			UserAgent:   viper.GetString("tiles.user_agent"),
			Timeout:     viper.GetDuration("tiles.timeout"),
		}, logger)
		if err != nil {
			return nil, closeFn, err
		}
		upstream = h
	}

	cachePath := viper.GetString("tiles.cache")
	if cachePath == "" {
		if upstream == nil {
			return nil, closeFn, fmt.Errorf("--offline requires --tiles-cache")
		}
		return upstream, closeFn, nil
	}

	var store *mbtiles.Store
	if upstream == nil {
		if _, statErr := os.Stat(cachePath); statErr != nil {
			return nil, closeFn, fmt.Errorf("failed to open tile cache: %w", statErr)
		}
		store, err = mbtiles.OpenReadOnly(cachePath)
	} else {
		meta := cacheMetadata()
		if _, statErr := os.Stat(cachePath); statErr == nil {
			// Keep what seed recorded about the cached area.
			meta = mbtiles.Metadata{}
		}
		store, err = mbtiles.Open(cachePath, meta)
	}
	if err != nil {
		return nil, closeFn, err
	}

	recorded, err := store.Metadata()
	if err != nil {
		_ = store.Close()
		return nil, closeFn, err
	}
	logger.Info("Using MBTiles tile cache",
		"path", cachePath,
		"offline", upstream == nil,
		"min_zoom", recorded.MinZoom,
		"max_zoom", recorded.MaxZoom,
		"bounds", recorded.Bounds,
	)
	return tilesource.NewCached(store, upstream, logger), store.Close, nil
}

func cacheMetadata() mbtiles.Metadata {
	return mbtiles.Metadata{
		Name:        "pointmap base tiles",
		Format:      "png",
		Attribution: "© OpenStreetMap contributors",
		Description: "Base map tiles cached by pointmap",
		Type:        "baselayer",
		Version:     "1.0",
		MaxZoom:     19,
	}
}
