package mapview

import "github.com/paulmach/orb"

// TooltipOffset is the pixel offset of the tooltip from the hovered feature.
var TooltipOffset = Pixel{10, 0}

// Overlay keeps a host element anchored to a map coordinate.
type Overlay struct {
	element     Element
	view        *View
	position    *orb.Point
	Offset      Pixel
	Positioning Positioning
}

// NewOverlay binds element to view. The element starts hidden until a position is set.
func NewOverlay(element Element, view *View, offset Pixel, positioning Positioning) *Overlay {
	element.SetVisible(false)
	return &Overlay{
		element:     element,
		view:        view,
		Offset:      offset,
		Positioning: positioning,
	}
}

// Position returns the anchored Web Mercator coordinate, or nil.
func (o *Overlay) Position() *orb.Point {
	if o.position == nil {
		return nil
	}
	p := *o.position
	return &p
}

// SetPosition anchors the overlay to c (Web Mercator) and moves the element there.
// A nil position hides the element.
func (o *Overlay) SetPosition(c *orb.Point) {
	if c == nil {
		o.position = nil
		o.element.SetVisible(false)
		return
	}
	p := *c
	o.position = &p
	o.element.Place(o.PixelPosition(), o.Positioning)
}

// PixelPosition returns the container pixel the element corner is placed on.
func (o *Overlay) PixelPosition() Pixel {
	if o.position == nil {
		return Pixel{}
	}
	return o.view.PixelFromCoordinate(*o.position).Add(o.Offset)
}
