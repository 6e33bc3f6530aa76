package render

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"math"

	"github.com/MeKo-Tech/pointmap/internal/mapview"
	"github.com/MeKo-Tech/pointmap/internal/tile"
	xdraw "golang.org/x/image/draw"
)

func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// drawTile places a base tile at its on-screen position, scaling it when the view
// zoom is fractional.
func drawTile(dst *image.NRGBA, img image.Image, v mapview.View, ref tile.Ref) {
	span := 2 * tile.HalfWorld / float64(uint64(1)<<ref.Coords.Z) / v.Resolution()
	origin := v.PixelFromCoordinate(ref.Origin())

	minX := int(math.Round(origin.X()))
	minY := int(math.Round(origin.Y()))
	maxX := int(math.Round(origin.X() + span))
	maxY := int(math.Round(origin.Y() + span))
	rect := image.Rect(minX, minY, maxX, maxY)

	if !rect.Overlaps(dst.Bounds()) {
		return
	}

	if rect.Dx() == img.Bounds().Dx() && rect.Dy() == img.Bounds().Dy() {
		xdraw.Copy(dst, rect.Min, img, img.Bounds(), xdraw.Over, nil)
		return
	}
	xdraw.ApproxBiLinear.Scale(dst, rect, img, img.Bounds(), xdraw.Over, nil)
}
