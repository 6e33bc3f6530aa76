// Package server serves the interactive map: the page, the rendered view, the
// hover endpoint driving the tooltip and a proxy for base tiles.
package server

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/MeKo-Tech/pointmap/assets"
	"github.com/MeKo-Tech/pointmap/internal/logging"
	"github.com/MeKo-Tech/pointmap/internal/mapview"
	"github.com/MeKo-Tech/pointmap/internal/metrics"
	"github.com/MeKo-Tech/pointmap/internal/render"
	"github.com/MeKo-Tech/pointmap/internal/tilesource"
	"github.com/MeKo-Tech/pointmap/internal/types"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Config configures the map server.
type Config struct {
	CacheControl string        // for base tiles, default "public, max-age=86400"
	TileTimeout  time.Duration // per proxied tile, default 15s
	StaticDir    string        // optional directory served at /static/ (wasm bundle)
	WASM         bool          // page runs the hover handler in wasm instead of calling /api/hover

	// View is written onto the map container so a wasm session matches the server's.
	View mapview.ViewConfig
}

// Server owns the single map session. Pointer moves mutate it and hold mu.
type Server struct {
	mu       sync.Mutex
	session  *mapview.Session
	features []types.PointFeature
	tiles    tilesource.Source
	renderer *render.Renderer
	page     *template.Template
	cfg      Config
	logger   *slog.Logger

	pngMu sync.Mutex
	png   []byte
}

// New creates a server around session. tiles may be nil, in which case /tiles/ answers 404.
func New(session *mapview.Session, features []types.PointFeature, tiles tilesource.Source, renderer *render.Renderer, cfg Config, logger *slog.Logger) (*Server, error) {
	if cfg.CacheControl == "" {
		cfg.CacheControl = "public, max-age=86400"
	}
	if cfg.TileTimeout <= 0 {
		cfg.TileTimeout = 15 * time.Second
	}
	if renderer == nil {
		renderer = render.New(render.Config{}, logger)
	}

	page, err := template.ParseFS(assets.WebFS, "web/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse map page: %w", err)
	}

	return &Server{
		session:  session,
		features: features,
		tiles:    tiles,
		renderer: renderer,
		page:     page,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(logging.AccessMiddleware(s.log()))

	r.Get("/", s.indexHandler)
	r.Get("/map.png", s.mapPNGHandler)

	r.Get("/api/features", s.featuresHandler)
	r.Get("/api/view", s.viewHandler)
	r.Get("/api/hover", s.hoverHandler)

	r.Get("/tiles/{z}/{x}/{y}.png", withCORS(http.HandlerFunc(s.tileHandler)).ServeHTTP)

	r.Get("/healthz", healthzHandler)
	r.Handle("/metrics", metrics.Handler())

	if s.cfg.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(s.cfg.StaticDir))))
	}

	return r
}

func (s *Server) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
