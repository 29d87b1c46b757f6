package tui

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the castle server.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	sessions       prometheus.Counter
	activeSessions prometheus.Gauge
	runs           *prometheus.CounterVec
	placements     *prometheus.CounterVec
	collapses      prometheus.Counter
	perfects       prometheus.Counter
}

// NewMetrics creates the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		sessions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "castle",
			Name:      "sessions_total",
			Help:      "SSH sessions started.",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "castle",
			Name:      "sessions_active",
			Help:      "SSH sessions currently connected.",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "castle",
			Name:      "runs_total",
			Help:      "Finished runs by outcome.",
		}, []string{"outcome"}),
		placements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "castle",
			Name:      "placements_total",
			Help:      "Judged placements by validity.",
		}, []string{"valid"}),
		collapses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "castle",
			Name:      "collapses_total",
			Help:      "Detected castle collapses.",
		}),
		perfects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "castle",
			Name:      "perfect_settles_total",
			Help:      "Parts that settled perfectly still.",
		}),
	}

	m.registry.MustRegister(
		m.sessions,
		m.activeSessions,
		m.runs,
		m.placements,
		m.collapses,
		m.perfects,
		collectors.NewGoCollector(),
	)
	return m
}

// SessionStarted counts a new connection.
func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.sessions.Inc()
	m.activeSessions.Inc()
}

// SessionEnded marks a connection as closed.
func (m *Metrics) SessionEnded() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
}

// RunFinished counts a finished run.
func (m *Metrics) RunFinished(outcome string) {
	if m == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.runs.WithLabelValues(outcome).Inc()
}

// Placement counts a judged placement.
func (m *Metrics) Placement(valid bool) {
	if m == nil {
		return
	}
	label := "false"
	if valid {
		label = "true"
	}
	m.placements.WithLabelValues(label).Inc()
}

// Collapse counts a detected collapse.
func (m *Metrics) Collapse() {
	if m == nil {
		return
	}
	m.collapses.Inc()
}

// Perfect counts a perfect settle.
func (m *Metrics) Perfect() {
	if m == nil {
		return
	}
	m.perfects.Inc()
}

// Handler returns the /metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *log.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics shutdown", "error", err)
		}
	}()

	logger.Info("metrics endpoint listening", "address", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
