// Package metrics holds the Prometheus collectors of both services.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Redirect outcomes.
const (
	OutcomeRedirected = "redirected"
	OutcomeNotFound   = "not_found"
	OutcomeExpired    = "expired"
	OutcomeFailed     = "failed"
)

// Relay results.
const (
	RelaySent    = "sent"
	RelayFailed  = "failed"
	RelayDropped = "dropped"
)

type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestsTotal   *prometheus.CounterVec

	URLsCreatedTotal    prometheus.Counter
	RedirectsTotal      *prometheus.CounterVec
	ClicksRecordedTotal prometheus.Counter

	RelayEntriesTotal     *prometheus.CounterVec
	CollectorEntriesTotal prometheus.Counter
}

// New registers all collectors on a fresh registry together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),

		URLsCreatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "shortener_urls_created_total",
			Help: "Total number of short URLs created",
		}),
		RedirectsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shortener_redirects_total",
				Help: "Total number of redirect attempts by outcome",
			},
			[]string{"outcome"},
		),
		ClicksRecordedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "shortener_clicks_recorded_total",
			Help: "Total number of click events recorded",
		}),

		RelayEntriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logrelay_entries_total",
				Help: "Total number of log entries handled by the relay by result",
			},
			[]string{"result"},
		),
		CollectorEntriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "collector_entries_received_total",
			Help: "Total number of log entries accepted by the collector",
		}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) RecordRedirect(outcome string) {
	m.RedirectsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordRelay(result string) {
	m.RelayEntriesTotal.WithLabelValues(result).Inc()
}

// Middleware observes every request under its chi route pattern, so path
// parameters do not blow up label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		code := strconv.Itoa(status)

		m.HTTPRequestDuration.WithLabelValues(r.Method, route, code).Observe(time.Since(start).Seconds())
		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, code).Inc()
	})
}
