package tilesource

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/MeKo-Tech/pointmap/internal/mbtiles"
	"github.com/MeKo-Tech/pointmap/internal/tile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidPNG(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, tile.Size, tile.Size))
	for y := 0; y < tile.Size; y++ {
		for x := 0; x < tile.Size; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTileServer(t *testing.T, body []byte, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("User-Agent") == "" {
			http.Error(w, "user agent required", http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewHTTP_RejectsTemplateWithoutPlaceholders(t *testing.T) {
	_, err := NewHTTP(HTTPConfig{URLTemplate: "https://example.com/{z}/{x}.png"}, nil)
	assert.Error(t, err)
}

func TestHTTP_URL(t *testing.T) {
	h, err := NewHTTP(HTTPConfig{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://tile.openstreetmap.org/2/1/3.png", h.URL(tile.NewCoords(2, 1, 3)))
}

func TestHTTP_Fetch(t *testing.T) {
	var hits atomic.Int32
	body := solidPNG(t, color.NRGBA{R: 200, G: 220, B: 240, A: 255})
	srv := newTileServer(t, body, &hits)

	h, err := NewHTTP(HTTPConfig{URLTemplate: srv.URL + "/{z}/{x}/{y}.png"}, nil)
	require.NoError(t, err)

	img, err := FetchImage(context.Background(), h, tile.NewCoords(2, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, tile.Size, tile.Size), img.Bounds())

	_, err = h.Fetch(context.Background(), tile.NewCoords(2, 9, 9))
	assert.Error(t, err, "out-of-grid coordinates are rejected before any request")
	assert.Equal(t, int32(1), hits.Load())
}

func TestHTTP_FetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	h, err := NewHTTP(HTTPConfig{URLTemplate: srv.URL + "/{z}/{x}/{y}.png"}, nil)
	require.NoError(t, err)

	_, err = h.Fetch(context.Background(), tile.NewCoords(1, 0, 0))
	assert.ErrorContains(t, err, "503")
}

func TestCached_FetchStoresUpstreamTiles(t *testing.T) {
	store, err := mbtiles.Open(filepath.Join(t.TempDir(), "cache.mbtiles"), mbtiles.Metadata{Name: "cache", Format: "png"})
	require.NoError(t, err)
	defer store.Close()

	var calls atomic.Int32
	upstream := SourceFunc(func(ctx context.Context, c tile.Coords) ([]byte, error) {
		calls.Add(1)
		return []byte("tile " + c.String()), nil
	})

	cached := NewCached(store, upstream, nil)
	c := tile.NewCoords(2, 2, 1)

	for i := 0; i < 3; i++ {
		data, err := cached.Fetch(context.Background(), c)
		require.NoError(t, err)
		assert.Equal(t, "tile z2_x2_y1", string(data))
	}
	assert.Equal(t, int32(1), calls.Load(), "only the first fetch goes upstream")

	fetched, err := cached.Warm(context.Background(), c)
	require.NoError(t, err)
	assert.False(t, fetched)

	fetched, err = cached.Warm(context.Background(), tile.NewCoords(2, 0, 0))
	require.NoError(t, err)
	assert.True(t, fetched)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCached_Offline(t *testing.T) {
	store, err := mbtiles.Open(filepath.Join(t.TempDir(), "cache.mbtiles"), mbtiles.Metadata{Name: "cache", Format: "png"})
	require.NoError(t, err)
	defer store.Close()

	cached := NewCached(store, nil, nil)
	_, err = cached.Fetch(context.Background(), tile.NewCoords(2, 0, 0))
	assert.True(t, errors.Is(err, mbtiles.ErrTileNotFound))

	_, err = cached.Warm(context.Background(), tile.NewCoords(2, 0, 0))
	assert.True(t, errors.Is(err, mbtiles.ErrTileNotFound))
}

func TestCached_UpstreamError(t *testing.T) {
	store, err := mbtiles.Open(filepath.Join(t.TempDir(), "cache.mbtiles"), mbtiles.Metadata{Name: "cache", Format: "png"})
	require.NoError(t, err)
	defer store.Close()

	boom := errors.New("boom")
	cached := NewCached(store, SourceFunc(func(context.Context, tile.Coords) ([]byte, error) {
		return nil, boom
	}), nil)

	_, err = cached.Fetch(context.Background(), tile.NewCoords(1, 0, 0))
	assert.ErrorIs(t, err, boom)

	ok, err := store.Has(tile.NewCoords(1, 0, 0))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCached_Refresh(t *testing.T) {
	store, err := mbtiles.Open(filepath.Join(t.TempDir(), "cache.mbtiles"), mbtiles.Metadata{Name: "cache", Format: "png"})
	require.NoError(t, err)
	defer store.Close()

	c := tile.NewCoords(1, 1, 0)
	require.NoError(t, store.Put(c, []byte("stale")))

	cached := NewCached(store, SourceFunc(func(context.Context, tile.Coords) ([]byte, error) {
		return []byte("fresh"), nil
	}), nil)

	data, err := cached.Refresh(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(data))

	stored, err := store.Get(c)
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(stored))

	_, err = NewCached(store, nil, nil).Refresh(context.Background(), c)
	assert.Error(t, err)
}
