//go:build js && wasm

package main

import (
	"fmt"
	"image"
	"syscall/js"

	"github.com/MeKo-Tech/pointmap/internal/mapview"
)

// domHost resolves session elements from the page document.
type domHost struct {
	doc js.Value
}

func newDOMHost(doc js.Value) *domHost {
	return &domHost{doc: doc}
}

func (h *domHost) Element(id string) (mapview.Element, error) {
	el := h.doc.Call("getElementById", id)
	if el.IsNull() || el.IsUndefined() {
		return nil, fmt.Errorf("%w: #%s", mapview.ErrElementNotFound, id)
	}
	return domElement{el: el}, nil
}

type domElement struct {
	el js.Value
}

func (e domElement) SetText(text string) {
	e.el.Set("textContent", text)
}

func (e domElement) SetVisible(visible bool) {
	display := "none"
	if visible {
		display = "block"
	}
	e.el.Get("style").Set("display", display)
}

// Place positions the element absolutely inside the map container.
func (e domElement) Place(p mapview.Pixel, pos mapview.Positioning) {
	size := image.Pt(e.el.Get("offsetWidth").Int(), e.el.Get("offsetHeight").Int())
	tl := pos.TopLeft(p, size)

	st := e.el.Get("style")
	st.Set("left", fmt.Sprintf("%gpx", tl.X()))
	st.Set("top", fmt.Sprintf("%gpx", tl.Y()))
}

func (e domElement) Size() image.Point {
	return image.Pt(e.el.Get("clientWidth").Int(), e.el.Get("clientHeight").Int())
}
