package render

import (
	"image"
	"math"

	"github.com/MeKo-Tech/pointmap/internal/mapview"
	"github.com/MeKo-Tech/pointmap/internal/style"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// drawLabel draws outlined text: the stroke color repeated around the glyph
// position, then the fill on top.
func drawLabel(dst *image.NRGBA, face font.Face, t style.Text, anchor mapview.Pixel) {
	box := style.TextBox(face, t, anchor.X(), anchor.Y())

	d := &font.Drawer{Dst: dst, Face: face}

	if radius := int(math.Round(t.StrokeWidth / 2)); radius > 0 && t.Stroke.A > 0 {
		d.Src = image.NewUniform(t.Stroke)
		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				d.Dot = dot(box.X+float64(dx), box.Baseline+float64(dy))
				d.DrawString(t.Text)
			}
		}
	}

	d.Src = image.NewUniform(t.Fill)
	d.Dot = dot(box.X, box.Baseline)
	d.DrawString(t.Text)
}

func dot(x, y float64) fixed.Point26_6 {
	return fixed.Point26_6{
		X: fixed.Int26_6(math.Round(x * 64)),
		Y: fixed.Int26_6(math.Round(y * 64)),
	}
}
