// Package style computes how each point feature is drawn: an icon marker plus a
// text label placed by the label package.
package style

import (
	"image"
	"image/color"

	"github.com/MeKo-Tech/pointmap/internal/label"
	"github.com/MeKo-Tech/pointmap/internal/types"
)

// DefaultIconSrc is the marker image fetched by the renderer.
const DefaultIconSrc = "https://openlayers.org/en/latest/examples/data/icon.png"

// DefaultIconScale shrinks the marker image to a small dot-sized pin.
const DefaultIconScale = 0.1

// DefaultIconSize is the natural size of the default marker image.
var DefaultIconSize = image.Pt(32, 48)

// Icon describes the marker image of a feature.
type Icon struct {
	Src    string
	Scale  float64
	Size   image.Point // natural size before scaling
	Anchor [2]float64  // fraction of the scaled size placed on the feature pixel
}

// Text describes a feature's label.
type Text struct {
	Text        string
	Placement   label.Placement
	FontSize    float64 // pixels
	Fill        color.NRGBA
	Stroke      color.NRGBA
	StrokeWidth float64
}

// Style is the complete drawing description of one feature.
type Style struct {
	Icon Icon
	Text Text
}

// Func computes the style of a feature. It is evaluated on every render and hit test.
type Func func(types.PointFeature) Style

var (
	black = color.NRGBA{A: 255}
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// NewFunc returns a style function drawing iconSrc (DefaultIconSrc when empty).
func NewFunc(iconSrc string) Func {
	if iconSrc == "" {
		iconSrc = DefaultIconSrc
	}
	return func(f types.PointFeature) Style {
		return Style{
			Icon: Icon{
				Src:    iconSrc,
				Scale:  DefaultIconScale,
				Size:   DefaultIconSize,
				Anchor: [2]float64{0.5, 0.5},
			},
			Text: Text{
				Text:        f.Name,
				Placement:   label.PlacementFor(f.AnchorSide),
				FontSize:    DefaultFontSize,
				Fill:        black,
				Stroke:      white,
				StrokeWidth: 2,
			},
		}
	}
}

// ForFeature is the default style function.
var ForFeature = NewFunc("")

// Box returns the icon's scaled extent when its anchor sits on pixel (ax, ay).
// size overrides the natural size when the real image is known; pass the zero
// point to use i.Size.
func (i Icon) Box(ax, ay float64, size image.Point) label.Box {
	if size == (image.Point{}) {
		size = i.Size
	}
	w := float64(size.X) * i.Scale
	h := float64(size.Y) * i.Scale
	minX := ax - w*i.Anchor[0]
	minY := ay - h*i.Anchor[1]
	return label.Box{MinX: minX, MinY: minY, MaxX: minX + w, MaxY: minY + h, X: minX, Baseline: minY + h}
}
