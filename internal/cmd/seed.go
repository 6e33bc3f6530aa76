package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"

	"github.com/MeKo-Tech/pointmap/internal/dataset"
	"github.com/MeKo-Tech/pointmap/internal/mapview"
	"github.com/MeKo-Tech/pointmap/internal/mbtiles"
	"github.com/MeKo-Tech/pointmap/internal/tile"
	"github.com/MeKo-Tech/pointmap/internal/tilesource"
	"github.com/MeKo-Tech/pointmap/internal/types"
	"github.com/MeKo-Tech/pointmap/internal/worker"
	"github.com/paulmach/orb"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Pre-fetch base tiles into an MBTiles cache",
	Long: `Seed downloads the base tiles covering the map view (or --bbox) for a range
of zoom levels and stores them in an MBTiles file. Serve or render with
--tiles-cache pointing at that file, optionally --offline.`,
	RunE: runSeed,
}

// maxSeedTiles guards public tile servers against accidental bulk downloads.
const maxSeedTiles = 5000

// maxSeedZoom is the deepest zoom standard OSM tile servers provide.
const maxSeedZoom = 19

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().StringP("output", "o", "", "MBTiles file to fill (default: --tiles-cache, else pointmap.mbtiles)")
	seedCmd.Flags().String("bbox", "", "Bounding box: minLon,minLat,maxLon,maxLat (default: the map view)")
	seedCmd.Flags().Int("zoom-min", 0, "Minimum zoom level")
	seedCmd.Flags().Int("zoom-max", -1, "Maximum zoom level (default: the view's tile zoom)")
	seedCmd.Flags().IntP("workers", "w", 2, "Number of parallel downloads")
	seedCmd.Flags().Bool("progress", true, "Show progress bar")
	seedCmd.Flags().Bool("force", false, "Refetch tiles already in the cache")
	seedCmd.Flags().Bool("allow-failures", false, "Exit successfully even if some tiles fail")

	bindFlags(seedCmd.Flags(), []flagBinding{
		{"seed.output", "output"},
		{"seed.bbox", "bbox"},
		{"seed.zoom_min", "zoom-min"},
		{"seed.zoom_max", "zoom-max"},
		{"seed.workers", "workers"},
		{"seed.progress", "progress"},
		{"seed.force", "force"},
		{"seed.allow_failures", "allow-failures"},
	})
}

func runSeed(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	ms, err := mapSettingsFromConfig()
	if err != nil {
		return err
	}
	view := mapview.NewView(ms.CenterLon, ms.CenterLat, ms.Zoom, ms.Size)

	bbox := view.ExtentLonLat()
	if s := viper.GetString("seed.bbox"); s != "" {
		b, err := parseBBox(s)
		if err != nil {
			return fmt.Errorf("invalid bbox: %w", err)
		}
		bbox = types.BoundingBox{MinLon: b[0], MinLat: b[1], MaxLon: b[2], MaxLat: b[3]}
	}

	zoomMin, zoomMax, err := seedZoomRange(viper.GetInt("seed.zoom_min"), viper.GetInt("seed.zoom_max"), view.TileZoom())
	if err != nil {
		return err
	}

	coords := seedCoords(bbox, uint32(zoomMin), uint32(zoomMax))
	if len(coords) > maxSeedTiles {
		return fmt.Errorf("refusing to seed %d tiles (limit %d); narrow --bbox or the zoom range", len(coords), maxSeedTiles)
	}

	output := viper.GetString("seed.output")
	if output == "" {
		output = viper.GetString("tiles.cache")
	}
	if output == "" {
		output = "pointmap.mbtiles"
	}

	upstream, err := tilesource.NewHTTP(tilesource.HTTPConfig{
		URLTemplate: viper.GetString("tiles.url"),
		UserAgent:   viper.GetString("tiles.user_agent"),
		Timeout:     viper.GetDuration("tiles.timeout"),
	}, logger)
	if err != nil {
		return err
	}

	meta := cacheMetadata()
	meta.Bounds = [4]float64{bbox.MinLon, bbox.MinLat, bbox.MaxLon, bbox.MaxLat}
	centerLat, centerLon := bbox.Center()
	meta.Center = [3]float64{centerLon, centerLat, float64(zoomMin)}
	meta.MinZoom = zoomMin
	meta.MaxZoom = zoomMax

	store, err := mbtiles.Open(output, meta)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close MBTiles", "error", err)
		}
	}()

	cache := tilesource.NewCached(store, upstream, logger)

	workers := viper.GetInt("seed.workers")
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	force := viper.GetBool("seed.force")

	features, err := dataset.Reference()
	if err != nil {
		return err
	}
	covered := coveredPoints(bbox, features)
	if len(covered) < len(features) {
		logger.Warn("Seeded area leaves points without cached base tiles",
			"covered", covered, "points", len(features))
	}

	logger.Info("Starting tile seeding",
		"output", output,
		"bbox", bbox.String(),
		"points_covered", covered,
		"zoom_min", zoomMin,
		"zoom_max", zoomMax,
		"tiles", len(coords),
		"workers", workers,
	)

	tasks := make([]worker.Task, len(coords))
	for i, c := range coords {
		tasks[i] = worker.Task{Coords: c, Force: force}
	}

	progress := worker.NewProgress(len(tasks), viper.GetBool("seed.progress"))
	pool := worker.New(worker.Config{
		Workers:    workers,
		Handler:    seedHandler(cache),
		OnProgress: progress.Callback(),
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results := pool.Run(ctx, tasks)
	progress.Done()

	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			logger.Warn("Tile seeding failed", "coords", r.Task.Coords.String(), "error", r.Err)
		}
	}

	stored, err := store.Count()
	if err != nil {
		return err
	}
	logger.Info(progress.Summary(), "output", output, "tiles_in_cache", stored)

	if failed > 0 {
		if viper.GetBool("seed.allow_failures") {
			logger.Warn("Some tiles failed to seed, but continuing due to --allow-failures flag", "failed_count", failed)
			return nil
		}
		return fmt.Errorf("%d of %d tiles failed to seed", failed, len(tasks))
	}
	return nil
}

func seedHandler(cache *tilesource.Cached) worker.Handler {
	return worker.HandlerFunc(func(ctx context.Context, task worker.Task) (worker.Output, error) {
		if task.Force {
			data, err := cache.Refresh(ctx, task.Coords)
			return worker.Output{Data: data, Fetched: err == nil}, err
		}
		fetched, err := cache.Warm(ctx, task.Coords)
		return worker.Output{Fetched: fetched}, err
	})
}

// seedZoomRange validates the requested zoom range. A negative zoomMax means the
// view's tile zoom, capped at maxSeedZoom.
func seedZoomRange(zoomMin, zoomMax int, viewZoom uint32) (int, int, error) {
	if zoomMax < 0 {
		zoomMax = min(int(viewZoom), maxSeedZoom)
	}
	if zoomMin < 0 || zoomMin > zoomMax || zoomMax > maxSeedZoom {
		return 0, 0, fmt.Errorf("invalid zoom range %d-%d (max zoom %d)", zoomMin, zoomMax, maxSeedZoom)
	}
	return zoomMin, zoomMax, nil
}

// coveredPoints returns the names of the features inside bbox.
func coveredPoints(bbox types.BoundingBox, features []types.PointFeature) []string {
	var names []string
	for _, f := range features {
		if bbox.Contains(f) {
			names = append(names, f.Name)
		}
	}
	return names
}

// seedCoords lists the distinct tiles covering bbox for every zoom in [zoomMin, zoomMax].
func seedCoords(bbox types.BoundingBox, zoomMin, zoomMax uint32) []tile.Coords {
	extent := orb.Bound{
		Min: tile.FromLonLat(bbox.MinLon, bbox.MinLat),
		Max: tile.FromLonLat(bbox.MaxLon, bbox.MaxLat),
	}

	var out []tile.Coords
	for z := zoomMin; z <= zoomMax; z++ {
		out = append(out, tile.Unique(tile.Cover(extent, z))...)
	}
	return out
}

func parseBBox(s string) ([4]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return [4]float64{}, fmt.Errorf("expected 4 comma-separated values, got %d", len(parts))
	}

	var bbox [4]float64
	for i, part := range parts {
		val, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return [4]float64{}, fmt.Errorf("invalid number at position %d: %w", i, err)
		}
		bbox[i] = val
	}

	if bbox[0] >= bbox[2] {
		return [4]float64{}, fmt.Errorf("minLon (%.4f) must be < maxLon (%.4f)", bbox[0], bbox[2])
	}
	if bbox[1] >= bbox[3] {
		return [4]float64{}, fmt.Errorf("minLat (%.4f) must be < maxLat (%.4f)", bbox[1], bbox[3])
	}

	return bbox, nil
}
