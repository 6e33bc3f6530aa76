package tilesource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/pointmap/internal/mbtiles"
	"github.com/MeKo-Tech/pointmap/internal/metrics"
	"github.com/MeKo-Tech/pointmap/internal/tile"
)

// Cached serves tiles from an MBTiles store and falls back to an upstream source,
// storing what it fetched. A nil upstream makes it an offline, store-only source.
type Cached struct {
	store    *mbtiles.Store
	upstream Source
	logger   *slog.Logger
}

// NewCached wraps upstream with store.
func NewCached(store *mbtiles.Store, upstream Source, logger *slog.Logger) *Cached {
	return &Cached{store: store, upstream: upstream, logger: logger}
}

// Fetch returns the stored tile or fetches and stores it.
func (c *Cached) Fetch(ctx context.Context, coords tile.Coords) ([]byte, error) {
	data, err := c.store.Get(coords)
	if err == nil {
		metrics.TileFetchesTotal.WithLabelValues("mbtiles", "hit").Inc()
		return data, nil
	}
	if !errors.Is(err, mbtiles.ErrTileNotFound) {
		return nil, err
	}
	metrics.TileFetchesTotal.WithLabelValues("mbtiles", "miss").Inc()

	if c.upstream == nil {
		return nil, err
	}

	data, err = c.upstream.Fetch(ctx, coords)
	if err != nil {
		return nil, err
	}

	if err := c.store.Put(coords, data); err != nil {
		// The tile is still usable; only the cache write failed.
		c.log().Warn("failed to cache tile", "coords", coords.String(), "path", c.store.Path(), "error", err)
	}

	return data, nil
}

// Warm makes sure a tile is stored, fetching it only when missing.
// It reports whether a fetch happened.
func (c *Cached) Warm(ctx context.Context, coords tile.Coords) (bool, error) {
	ok, err := c.store.Has(coords)
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}
	if c.upstream == nil {
		return false, fmt.Errorf("%w: %s (no upstream)", mbtiles.ErrTileNotFound, coords)
	}
	if _, err := c.Fetch(ctx, coords); err != nil {
		return false, err
	}
	return true, nil
}

// Refresh fetches a tile from upstream and replaces the stored copy.
func (c *Cached) Refresh(ctx context.Context, coords tile.Coords) ([]byte, error) {
	if c.upstream == nil {
		return nil, fmt.Errorf("failed to refresh tile %s: no upstream", coords)
	}
	data, err := c.upstream.Fetch(ctx, coords)
	if err != nil {
		return nil, err
	}
	if err := c.store.Put(coords, data); err != nil {
		return nil, fmt.Errorf("failed to cache tile %s: %w", coords, err)
	}
	return data, nil
}

func (c *Cached) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}
