package tilesource

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MeKo-Tech/pointmap/internal/metrics"
	"github.com/MeKo-Tech/pointmap/internal/tile"
)

// DefaultURLTemplate is the OpenStreetMap standard tile layer.
const DefaultURLTemplate = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"

// DefaultUserAgent identifies the client to tile servers; the OSM tile usage policy
// rejects requests without one.
const DefaultUserAgent = "pointmap/1.0 (+https://github.com/MeKo-Tech/pointmap)"

// maxTileBytes caps a single tile response.
const maxTileBytes = 4 << 20

// HTTPConfig configures an HTTP tile source.
type HTTPConfig struct {
	URLTemplate string // with {z}, {x}, {y} placeholders
	UserAgent   string
	Timeout     time.Duration
	Client      *http.Client
}

// HTTP fetches tiles from an XYZ tile server.
type HTTP struct {
	client      *http.Client
	logger      *slog.Logger
	urlTemplate string
	userAgent   string
}

// NewHTTP creates an XYZ tile source. Empty config fields take defaults.
func NewHTTP(cfg HTTPConfig, logger *slog.Logger) (*HTTP, error) {
	if cfg.URLTemplate == "" {
		cfg.URLTemplate = DefaultURLTemplate
	}
	for _, ph := range []string{"{z}", "{x}", "{y}"} {
		if !strings.Contains(cfg.URLTemplate, ph) {
			return nil, fmt.Errorf("tile URL template %q is missing %s", cfg.URLTemplate, ph)
		}
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &HTTP{
		client:      client,
		logger:      logger,
		urlTemplate: cfg.URLTemplate,
		userAgent:   cfg.UserAgent,
	}, nil
}

// URL returns the request URL of a tile.
func (h *HTTP) URL(c tile.Coords) string {
	r := strings.NewReplacer(
		"{z}", strconv.FormatUint(uint64(c.Z), 10),
		"{x}", strconv.FormatUint(uint64(c.X), 10),
		"{y}", strconv.FormatUint(uint64(c.Y), 10),
	)
	return r.Replace(h.urlTemplate)
}

// Fetch downloads a tile.
func (h *HTTP) Fetch(ctx context.Context, c tile.Coords) ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid tile coordinate %s", c)
	}

	url := h.URL(c)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", h.userAgent)

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		metrics.TileFetchesTotal.WithLabelValues("http", "error").Inc()
		return nil, fmt.Errorf("failed to fetch tile %s: %w", c, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.TileFetchesTotal.WithLabelValues("http", "status").Inc()
		return nil, fmt.Errorf("failed to fetch tile %s: %s returned %s", c, url, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTileBytes))
	if err != nil {
		metrics.TileFetchesTotal.WithLabelValues("http", "error").Inc()
		return nil, fmt.Errorf("failed to read tile %s: %w", c, err)
	}

	metrics.TileFetchesTotal.WithLabelValues("http", "ok").Inc()
	metrics.TileFetchDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	h.log().Debug("tile fetched", "coords", c.String(), "bytes", len(data), "ms", time.Since(start).Milliseconds())

	return data, nil
}

func (h *HTTP) log() *slog.Logger {
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}
