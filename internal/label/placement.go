// Package label decides where a point's text label is drawn relative to its marker.
package label

import "github.com/MeKo-Tech/pointmap/internal/types"

// TextAlign is the horizontal alignment of a label relative to its anchor pixel.
type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

// TextBaseline is the vertical alignment of a label relative to its anchor pixel.
type TextBaseline string

const (
	BaselineTop    TextBaseline = "top"
	BaselineMiddle TextBaseline = "middle"
	BaselineBottom TextBaseline = "bottom"
)

// Gap is the pixel distance between a marker and a label placed on one of its sides.
const Gap = 15

// Placement is the text alignment, baseline and pixel offset used to draw a label.
type Placement struct {
	TextAlign    TextAlign    `json:"textAlign"`
	TextBaseline TextBaseline `json:"textBaseline"`
	OffsetX      float64      `json:"offsetX"`
	OffsetY      float64      `json:"offsetY"`
}

// Centered is the placement used for unspecified or unrecognized sides.
var Centered = Placement{TextAlign: AlignCenter, TextBaseline: BaselineMiddle}

// PlacementFor maps an anchor side to its label placement.
// Screen y grows downward, so "top" moves the label up (negative OffsetY).
func PlacementFor(side types.AnchorSide) Placement {
	switch side {
	case types.AnchorTop:
		return Placement{TextAlign: AlignCenter, TextBaseline: BaselineBottom, OffsetY: -Gap}
	case types.AnchorBottom:
		return Placement{TextAlign: AlignCenter, TextBaseline: BaselineTop, OffsetY: Gap}
	case types.AnchorLeft:
		return Placement{TextAlign: AlignRight, TextBaseline: BaselineMiddle, OffsetX: -Gap}
	case types.AnchorRight:
		return Placement{TextAlign: AlignLeft, TextBaseline: BaselineMiddle, OffsetX: Gap}
	default:
		return Centered
	}
}
