// Package tilesource fetches base map tiles from an XYZ tile server, optionally
// through an MBTiles cache.
package tilesource

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder

	"github.com/MeKo-Tech/pointmap/internal/tile"
)

// Source returns the encoded image bytes of a base tile.
type Source interface {
	Fetch(ctx context.Context, c tile.Coords) ([]byte, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, c tile.Coords) ([]byte, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context, c tile.Coords) ([]byte, error) {
	return f(ctx, c)
}

// FetchImage fetches and decodes a tile.
func FetchImage(ctx context.Context, src Source, c tile.Coords) (image.Image, error) {
	data, err := src.Fetch(ctx, c)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode tile %s: %w", c, err)
	}

	return img, nil
}
