// Package metrics exposes Prometheus counters for hover handling, tile fetching and rendering.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PointerMovesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pointmap_pointer_moves_total",
		Help: "Total number of pointer-move events handled",
	})
	HoverHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pointmap_hover_hits_total",
		Help: "Total number of pointer-move events that hit a feature",
	})
	TileFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pointmap_tile_fetches_total",
		Help: "Total base tile fetches by source and outcome",
	}, []string{"source", "outcome"})
	TileFetchDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pointmap_tile_fetch_duration_ms",
		Help:    "Remote tile fetch duration in milliseconds",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	})
	RenderDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pointmap_render_duration_ms",
		Help:    "Map view render duration in milliseconds",
		Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	})
)

func init() {
	prometheus.MustRegister(
		PointerMovesTotal,
		HoverHitsTotal,
		TileFetchesTotal,
		TileFetchDurationMs,
		RenderDurationMs,
	)
}

// ObservePointerMove counts a handled pointer move and whether it hit a feature.
func ObservePointerMove(hit bool) {
	PointerMovesTotal.Inc()
	if hit {
		HoverHitsTotal.Inc()
	}
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
