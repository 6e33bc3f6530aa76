package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"net/http"

	"github.com/MeKo-Tech/pointmap/internal/mapview"
	"github.com/MeKo-Tech/pointmap/internal/style"
	"github.com/disintegration/gift"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// FallbackMarker is the dot drawn when the icon image cannot be loaded.
var FallbackMarker = color.NRGBA{R: 0x33, G: 0x99, B: 0xcc, A: 0xff}

const maxIconBytes = 1 << 20

// icon returns the decoded image for src, fetching it once. Failures are logged
// once and remembered.
func (r *Renderer) icon(ctx context.Context, src string) image.Image {
	r.iconsMu.Lock()
	img, ok := r.icons[src]
	r.iconsMu.Unlock()
	if ok {
		return img
	}

	img, err := r.fetchIcon(ctx, src)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		r.log().Warn("marker icon unavailable, drawing fallback marker", "src", src, "error", err)
		img = nil
	}

	r.iconsMu.Lock()
	r.icons[src] = img
	r.iconsMu.Unlock()
	return img
}

func (r *Renderer) fetchIcon(ctx context.Context, src string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create icon request: %w", err)
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch icon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("icon server returned %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxIconBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read icon: %w", err)
	}
	return decodeImage(data)
}

// drawIcon draws a feature's marker centered per its anchor fraction.
func (r *Renderer) drawIcon(ctx context.Context, dst *image.NRGBA, ic style.Icon, anchor mapview.Pixel) {
	if ic.Scale <= 0 {
		return
	}

	var img image.Image
	if ic.Src != "" {
		img = r.icon(ctx, ic.Src)
	}
	if img == nil {
		box := ic.Box(anchor.X(), anchor.Y(), image.Point{})
		radius := math.Max(3, math.Max(box.MaxX-box.MinX, box.MaxY-box.MinY)/2)
		fillCircle(dst, anchor.X(), anchor.Y(), radius, FallbackMarker)
		return
	}

	box := ic.Box(anchor.X(), anchor.Y(), img.Bounds().Size())
	w := max(1, int(math.Round(box.MaxX-box.MinX)))
	h := max(1, int(math.Round(box.MaxY-box.MinY)))

	g := gift.New(gift.Resize(w, h, gift.LanczosResampling))
	scaled := image.NewNRGBA(g.Bounds(img.Bounds()))
	g.Draw(scaled, img)

	at := image.Pt(int(math.Round(box.MinX)), int(math.Round(box.MinY)))
	xdraw.Draw(dst, scaled.Bounds().Add(at), scaled, scaled.Bounds().Min, xdraw.Over)
}

// fillCircle fills a disc with the vector rasterizer.
func fillCircle(dst *image.NRGBA, cx, cy, radius float64, c color.Color) {
	b := dst.Bounds()
	ras := vector.NewRasterizer(b.Dx(), b.Dy())

	const segments = 24
	for i := 0; i <= segments; i++ {
		a := 2 * math.Pi * float64(i) / segments
		x := float32(cx + radius*math.Cos(a))
		y := float32(cy + radius*math.Sin(a))
		if i == 0 {
			ras.MoveTo(x, y)
		} else {
			ras.LineTo(x, y)
		}
	}
	ras.ClosePath()

	ras.Draw(dst, b, image.NewUniform(c), image.Point{})
}
