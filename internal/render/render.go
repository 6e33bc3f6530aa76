// Package render rasterizes a map session's view: base tiles, then every point
// feature's marker and label, in layer order.
package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/MeKo-Tech/pointmap/internal/mapview"
	"github.com/MeKo-Tech/pointmap/internal/metrics"
	"github.com/MeKo-Tech/pointmap/internal/style"
	"github.com/MeKo-Tech/pointmap/internal/tile"
	"github.com/MeKo-Tech/pointmap/internal/tilesource"
	"github.com/MeKo-Tech/pointmap/internal/worker"
	"golang.org/x/image/font"
)

// Background fills the canvas where no base tile was drawn.
var Background = color.NRGBA{R: 0xf2, G: 0xef, B: 0xe9, A: 0xff}

// Config configures a Renderer.
type Config struct {
	Workers    int          // concurrent tile fetches, default 4
	HTTPClient *http.Client // used for icon images
	UserAgent  string
}

// Renderer draws sessions to images. It caches icon images by source URL.
type Renderer struct {
	workers   int
	client    *http.Client
	userAgent string
	logger    *slog.Logger

	iconsMu sync.Mutex
	icons   map[string]image.Image // nil entry: fetch failed
}

// New creates a renderer.
func New(cfg Config, logger *slog.Logger) *Renderer {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Renderer{
		workers:   cfg.Workers,
		client:    cfg.HTTPClient,
		userAgent: cfg.UserAgent,
		logger:    logger,
		icons:     map[string]image.Image{},
	}
}

// Render draws the session's current view.
// Tile and icon failures degrade the image and are logged; only cancellation is an error.
func (r *Renderer) Render(ctx context.Context, s *mapview.Session) (*image.NRGBA, error) {
	start := time.Now()
	v := s.View()

	dst := image.NewNRGBA(image.Rectangle{Max: v.Size})
	draw.Draw(dst, dst.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)

	if src := s.BaseLayer().Source; src != nil {
		r.drawBase(ctx, dst, v, src)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := r.drawPoints(ctx, dst, v, s.PointLayer()); err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	metrics.RenderDurationMs.Observe(float64(elapsed.Milliseconds()))
	r.log().Debug("rendered map view",
		"size", v.Size,
		"zoom", v.Zoom,
		"duration", elapsed,
	)

	return dst, nil
}

// RenderPNG renders the view and writes it as PNG.
func (r *Renderer) RenderPNG(ctx context.Context, s *mapview.Session, w io.Writer) error {
	img, err := r.Render(ctx, s)
	if err != nil {
		return fmt.Errorf("failed to render map: %w", err)
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode map PNG: %w", err)
	}
	return nil
}

func (r *Renderer) drawPoints(ctx context.Context, dst *image.NRGBA, v mapview.View, layer *mapview.VectorLayer) error {
	faces := map[float64]font.Face{}
	defer func() {
		for _, f := range faces {
			_ = f.Close()
		}
	}()

	for _, f := range layer.Features {
		st := layer.StyleOf(f)
		anchor := v.PixelFromCoordinate(f.Geometry)

		r.drawIcon(ctx, dst, st.Icon, anchor)

		if st.Text.Text == "" {
			continue
		}
		size := st.Text.FontSize
		if size <= 0 {
			size = style.DefaultFontSize
		}
		face, ok := faces[size]
		if !ok {
			var err error
			face, err = style.NewFace(size)
			if err != nil {
				return err
			}
			faces[size] = face
		}
		drawLabel(dst, face, st.Text, anchor)
	}
	return nil
}

func (r *Renderer) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}

// drawBase fetches the covering tiles through the worker pool. A failed tile stays blank.
func (r *Renderer) drawBase(ctx context.Context, dst *image.NRGBA, v mapview.View, src tilesource.Source) {
	refs := v.Tiles()
	coords := tile.Unique(refs)

	tasks := make([]worker.Task, len(coords))
	for i, c := range coords {
		tasks[i] = worker.Task{Coords: c}
	}

	pool := worker.New(worker.Config{
		Workers: r.workers,
		Handler: worker.HandlerFunc(func(ctx context.Context, task worker.Task) (worker.Output, error) {
			img, err := tilesource.FetchImage(ctx, src, task.Coords)
			return worker.Output{Image: img, Fetched: err == nil}, err
		}),
	})

	images := make(map[tile.Coords]image.Image, len(coords))
	for _, res := range pool.Run(ctx, tasks) {
		if res.Err != nil {
			r.log().Warn("base tile unavailable", "coords", res.Task.Coords.String(), "error", res.Err)
			continue
		}
		images[res.Task.Coords] = res.Output.Image
	}

	for _, ref := range refs {
		img, ok := images[ref.Coords]
		if !ok {
			continue
		}
		drawTile(dst, img, v, ref)
	}
}
