package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/MeKo-Tech/pointmap/internal/geojson"
	"github.com/MeKo-Tech/pointmap/internal/mapview"
	"github.com/MeKo-Tech/pointmap/internal/mbtiles"
	"github.com/MeKo-Tech/pointmap/internal/tile"
	"github.com/go-chi/chi/v5"
	"github.com/paulmach/orb"
)

type pageData struct {
	Width, Height int
	MapID         string
	TooltipID     string
	WASM          bool
	Attrs         map[string]string
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	size := s.session.View().Size
	s.mu.Unlock()

	var buf bytes.Buffer
	err := s.page.Execute(&buf, pageData{
		Width:     size.X,
		Height:    size.Y,
		MapID:     mapview.MapElementID,
		TooltipID: mapview.TooltipElementID,
		WASM:      s.cfg.WASM,
		Attrs:     s.cfg.View.Attributes(),
	})
	if err != nil {
		s.log().Error("Failed to render map page", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// The view is fixed for the server's lifetime, so the first successful render is reused.
func (s *Server) mapPNGHandler(w http.ResponseWriter, r *http.Request) {
	data, err := s.mapPNG(r.Context())
	if err != nil {
		s.log().Error("Failed to render map", "error", err)
		http.Error(w, "failed to render map", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(data)
}

func (s *Server) mapPNG(ctx context.Context) ([]byte, error) {
	s.pngMu.Lock()
	defer s.pngMu.Unlock()

	if s.png != nil {
		return s.png, nil
	}

	// Render reads only the view and layers, which are fixed at assembly; no mu.
	var buf bytes.Buffer
	if err := s.renderer.RenderPNG(ctx, s.session, &buf); err != nil {
		return nil, err
	}

	s.png = buf.Bytes()
	return s.png, nil
}

func (s *Server) featuresHandler(w http.ResponseWriter, r *http.Request) {
	data, err := geojson.ToGeoJSONBytes(s.features, true)
	if err != nil {
		s.log().Error("Failed to encode features", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	_, _ = w.Write(data)
}

type viewResponse struct {
	Center       orb.Point `json:"center"`
	CenterLonLat orb.Point `json:"centerLonLat"`
	Zoom         float64   `json:"zoom"`
	Size         [2]int    `json:"size"`
	Resolution   float64   `json:"resolution"`
	Extent       orb.Bound `json:"extent"`
}

func (s *Server) viewHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	v := s.session.View()
	s.mu.Unlock()

	lon, lat := tile.ToLonLat(v.Center)
	writeJSON(w, http.StatusOK, viewResponse{
		Center:       v.Center,
		CenterLonLat: orb.Point{lon, lat},
		Zoom:         v.Zoom,
		Size:         [2]int{v.Size.X, v.Size.Y},
		Resolution:   v.Resolution(),
		Extent:       v.Extent(),
	})
}

func (s *Server) hoverHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "x and y must be numbers"})
		return
	}

	s.mu.Lock()
	state := s.session.HandlePointerMove(mapview.PointerEvent{Type: "pointermove", Pixel: mapview.Pixel{x, y}})
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, state)
}

func (s *Server) tileHandler(w http.ResponseWriter, r *http.Request) {
	coords, ok := parseTileParams(chi.URLParam(r, "z"), chi.URLParam(r, "x"), chi.URLParam(r, "y"))
	if !ok || s.tiles == nil {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.TileTimeout)
	defer cancel()

	data, err := s.tiles.Fetch(ctx, coords)
	if err != nil {
		if errors.Is(err, mbtiles.ErrTileNotFound) {
			http.NotFound(w, r)
			return
		}
		s.log().Warn("Failed to fetch tile", "coords", coords.String(), "error", err)
		http.Error(w, "tile unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Cache-Control", s.cfg.CacheControl)
	w.Header().Set("Content-Type", http.DetectContentType(data))
	if _, err := w.Write(data); err != nil {
		s.log().Error("Failed to write response", "error", err)
	}
}

// parseTileParams parses z/x/y path segments into valid tile coordinates.
func parseTileParams(zs, xs, ys string) (tile.Coords, bool) {
	z, err := strconv.ParseUint(zs, 10, 32)
	if err != nil {
		return tile.Coords{}, false
	}
	x, err := strconv.ParseUint(xs, 10, 32)
	if err != nil {
		return tile.Coords{}, false
	}
	y, err := strconv.ParseUint(ys, 10, 32)
	if err != nil {
		return tile.Coords{}, false
	}
	c := tile.NewCoords(uint32(z), uint32(x), uint32(y))
	return c, c.Valid()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode JSON response", "error", err)
	}
}
