package mapview

import (
	"errors"
	"fmt"
	"image"
	"sync"
)

// Element ids the session binds to in the host document.
const (
	MapElementID     = "map"
	TooltipElementID = "tooltip"
)

// ErrElementNotFound is returned when the host document lacks a required element.
var ErrElementNotFound = errors.New("element not found")

// Positioning names the corner of an overlay element placed on its pixel.
type Positioning string

const (
	BottomLeft  Positioning = "bottom-left"
	BottomRight Positioning = "bottom-right"
	TopLeft     Positioning = "top-left"
	TopRight    Positioning = "top-right"
)

// TopLeft returns the top-left pixel of an element of the given size whose pos
// corner sits on anchor. Unknown positionings are treated as TopLeft.
func (pos Positioning) TopLeft(anchor Pixel, size image.Point) Pixel {
	w, h := float64(size.X), float64(size.Y)
	switch pos {
	case BottomLeft:
		return Pixel{anchor.X(), anchor.Y() - h}
	case BottomRight:
		return Pixel{anchor.X() - w, anchor.Y() - h}
	case TopRight:
		return Pixel{anchor.X() - w, anchor.Y()}
	default:
		return anchor
	}
}

// Element is a host document element the session reads or writes.
type Element interface {
	SetText(text string)
	SetVisible(visible bool)
	// Place moves the element so that its pos corner sits on pixel p of the map container.
	Place(p Pixel, pos Positioning)
	// Size returns the rendered size, or the zero point when unknown.
	Size() image.Point
}

// Host gives access to elements of the host document by id.
type Host interface {
	Element(id string) (Element, error)
}

// MemoryElement is an Element that only records its state.
type MemoryElement struct {
	mu          sync.Mutex
	id          string
	text        string
	visible     bool
	pixel       Pixel
	positioning Positioning
	size        image.Point
}

// elementState is a snapshot of a MemoryElement.
type elementState struct {
	ID          string
	Text        string
	Visible     bool
	Pixel       Pixel
	Positioning Positioning
}

func (e *MemoryElement) SetText(text string) {
	e.mu.Lock()
	e.text = text
	e.mu.Unlock()
}

func (e *MemoryElement) SetVisible(visible bool) {
	e.mu.Lock()
	e.visible = visible
	e.mu.Unlock()
}

func (e *MemoryElement) Place(p Pixel, pos Positioning) {
	e.mu.Lock()
	e.pixel = p
	e.positioning = pos
	e.mu.Unlock()
}

func (e *MemoryElement) Size() image.Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.size
}

// state returns a snapshot of the element.
func (e *MemoryElement) state() elementState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return elementState{
		ID:          e.id,
		Text:        e.text,
		Visible:     e.visible,
		Pixel:       e.pixel,
		Positioning: e.positioning,
	}
}

// MemoryHost is an in-process host document.
type MemoryHost struct {
	mu       sync.Mutex
	elements map[string]*MemoryElement
}

// NewMemoryHost creates a host document containing the map container (of mapSize)
// and a visible, empty tooltip element.
func NewMemoryHost(mapSize image.Point) *MemoryHost {
	h := &MemoryHost{elements: map[string]*MemoryElement{}}
	h.Add(MapElementID, mapSize)
	h.Add(TooltipElementID, image.Point{}).SetVisible(true)
	return h
}

// Add creates (or replaces) an element.
func (h *MemoryHost) Add(id string, size image.Point) *MemoryElement {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.elements == nil {
		h.elements = map[string]*MemoryElement{}
	}
	e := &MemoryElement{id: id, size: size}
	h.elements[id] = e
	return e
}

// Element implements Host.
func (h *MemoryHost) Element(id string) (Element, error) {
	e, ok := h.lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: #%s", ErrElementNotFound, id)
	}
	return e, nil
}

func (h *MemoryHost) lookup(id string) (*MemoryElement, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	e, ok := h.elements[id]
	return e, ok
}
