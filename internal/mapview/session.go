package mapview

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/MeKo-Tech/pointmap/internal/style"
	"github.com/MeKo-Tech/pointmap/internal/tile"
	"github.com/MeKo-Tech/pointmap/internal/types"
	"github.com/paulmach/orb"
	"golang.org/x/image/font"
)

// DefaultZoom is the initial zoom of the map.
const DefaultZoom = 2

// DefaultSize is used when the map container does not report a size.
var DefaultSize = image.Pt(800, 600)

// Options configures a Session. Zero values take the defaults.
type Options struct {
	CenterLon, CenterLat float64
	Zoom                 *float64 // nil: DefaultZoom
	Size                 image.Point
	Style                style.Func
	Tiles                TileSource
	HitTolerance         float64 // pixels around icon and label boxes

	// OnPointerMove is called for every handled pointer move with whether it hit a feature.
	OnPointerMove func(hit bool)

	Logger *slog.Logger
}

// PointerEvent is a pointer event over the map container.
type PointerEvent struct {
	Type  string // "pointermove"
	Pixel Pixel
}

// TooltipState is the tooltip as the last pointer move left it.
type TooltipState struct {
	Visible  bool       `json:"visible"`
	Text     string     `json:"text,omitempty"`
	Position *orb.Point `json:"position,omitempty"` // EPSG:3857 anchor of the tooltip
	LonLat   *orb.Point `json:"lonLat,omitempty"`
	Pixel    *Pixel     `json:"pixel,omitempty"`   // container pixel of the element corner
	Feature  *int       `json:"feature,omitempty"` // dataset index of the hovered feature
}

// Session owns the map: view, base layer, point layer and tooltip overlay.
// It is not safe for concurrent use; the host serializes events into it.
type Session struct {
	view      View
	base      *TileLayer
	points    *VectorLayer
	overlay   *Overlay
	tooltip   Element
	face      font.Face
	faceSize  float64
	tolerance float64
	onMove    func(hit bool)
	logger    *slog.Logger
	hovered   *RenderedFeature
}

// NewSession assembles the map inside host's "map" element with the tooltip bound to
// its "tooltip" element. Missing elements are fatal.
func NewSession(host Host, features []types.PointFeature, opts Options) (*Session, error) {
	mapEl, err := host.Element(MapElementID)
	if err != nil {
		return nil, fmt.Errorf("failed to find map container: %w", err)
	}
	tooltipEl, err := host.Element(TooltipElementID)
	if err != nil {
		return nil, fmt.Errorf("failed to find tooltip element: %w", err)
	}

	zoom := float64(DefaultZoom)
	if opts.Zoom != nil {
		zoom = *opts.Zoom
	}
	size := mapEl.Size()
	if size.X <= 0 || size.Y <= 0 {
		size = opts.Size
	}
	if size.X <= 0 || size.Y <= 0 {
		size = DefaultSize
	}

	s := &Session{
		view:      NewView(opts.CenterLon, opts.CenterLat, zoom, size),
		base:      &TileLayer{Source: opts.Tiles},
		points:    NewVectorLayer(features, opts.Style),
		tooltip:   tooltipEl,
		tolerance: opts.HitTolerance,
		onMove:    opts.OnPointerMove,
		logger:    opts.Logger,
	}
	s.overlay = NewOverlay(tooltipEl, &s.view, TooltipOffset, BottomLeft)

	s.log().Debug("map session assembled",
		"center", s.view.Center,
		"zoom", s.view.Zoom,
		"size", s.view.Size,
		"features", len(s.points.Features),
	)

	return s, nil
}

// View returns the current view.
func (s *Session) View() View {
	return s.view
}

// BaseLayer returns the tile layer.
func (s *Session) BaseLayer() *TileLayer {
	return s.base
}

// PointLayer returns the point layer.
func (s *Session) PointLayer() *VectorLayer {
	return s.points
}

// ForEachFeatureAtPixel calls fn for every point feature drawn at px, topmost first,
// until fn returns true. It reports whether fn stopped the iteration.
func (s *Session) ForEachFeatureAtPixel(px Pixel, fn func(RenderedFeature) bool) bool {
	features := s.points.Features
	for i := len(features) - 1; i >= 0; i-- {
		f := features[i]
		if !s.hit(f, px) {
			continue
		}
		if fn(f) {
			return true
		}
	}
	return false
}

// FeatureAtPixel returns the topmost feature drawn at px.
func (s *Session) FeatureAtPixel(px Pixel) (RenderedFeature, bool) {
	var found RenderedFeature
	ok := s.ForEachFeatureAtPixel(px, func(f RenderedFeature) bool {
		found = f
		return true
	})
	return found, ok
}

func (s *Session) hit(f RenderedFeature, px Pixel) bool {
	st := s.points.StyleOf(f)
	anchor := s.view.PixelFromCoordinate(f.Geometry)

	if st.Icon.Scale > 0 && st.Icon.Box(anchor.X(), anchor.Y(), image.Point{}).Contains(px.X(), px.Y(), s.tolerance) {
		return true
	}

	if st.Text.Text == "" {
		return false
	}
	face, err := s.labelFace(st.Text.FontSize)
	if err != nil {
		s.log().Warn("label hit test skipped", "error", err)
		return false
	}
	// The stroke widens the drawn label by half its width on every side.
	pad := s.tolerance + st.Text.StrokeWidth/2
	return style.TextBox(face, st.Text, anchor.X(), anchor.Y()).Contains(px.X(), px.Y(), pad)
}

func (s *Session) labelFace(size float64) (font.Face, error) {
	if size <= 0 {
		size = style.DefaultFontSize
	}
	if s.face != nil && s.faceSize == size {
		return s.face, nil
	}
	face, err := style.NewFace(size)
	if err != nil {
		return nil, err
	}
	s.face, s.faceSize = face, size
	return face, nil
}

// HandlePointerMove updates the tooltip for a pointer move: over a feature the
// tooltip shows its name at its coordinates, elsewhere it is hidden. Only the
// topmost feature is used.
func (s *Session) HandlePointerMove(evt PointerEvent) TooltipState {
	f, ok := s.FeatureAtPixel(evt.Pixel)
	if s.onMove != nil {
		s.onMove(ok)
	}
	if !ok {
		s.hovered = nil
		s.tooltip.SetVisible(false)
		return s.Tooltip()
	}

	s.hovered = &f
	s.tooltip.SetText(f.Point.Name)
	s.tooltip.SetVisible(true)
	// Placed last so hosts that measure the element see its new content.
	coords := f.Geometry
	s.overlay.SetPosition(&coords)

	return s.Tooltip()
}

// Tooltip returns the tooltip state derived from the hovered feature.
func (s *Session) Tooltip() TooltipState {
	if s.hovered == nil {
		return TooltipState{}
	}
	px := s.overlay.PixelPosition()
	index := s.hovered.Index
	lon, lat := tile.ToLonLat(s.hovered.Geometry)
	return TooltipState{
		Visible:  true,
		Text:     s.hovered.Point.Name,
		Position: s.overlay.Position(),
		LonLat:   &orb.Point{lon, lat},
		Pixel:    &px,
		Feature:  &index,
	}
}

func (s *Session) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
