// Package metrics holds the Prometheus collectors for the mirror.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "privacymirror"

// Manager owns a private registry so that several servers (and tests) can
// coexist in one process.
type Manager struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	whoamiTotal     *prometheus.CounterVec
	reportsTotal    *prometheus.CounterVec
	findingsTotal   *prometheus.CounterVec
}

func NewManager() *Manager {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Manager{
		registry: reg,
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests served",
			},
			[]string{"route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		whoamiTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "whoami_total",
				Help:      "Server views served, by resolution method",
			},
			[]string{"method"},
		),
		reportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reports_total",
				Help:      "Client reports received, by outcome",
			},
			[]string{"outcome"},
		),
		findingsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_findings_total",
				Help:      "Findings produced by report analysis, by kind",
			},
			[]string{"kind"},
		),
	}
}

// ObserveRequest records one served request. route is the matched route
// pattern, never the raw path.
func (m *Manager) ObserveRequest(route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

func (m *Manager) RecordWhoAmI(method string) {
	if m == nil {
		return
	}
	m.whoamiTotal.WithLabelValues(method).Inc()
}

func (m *Manager) RecordReport(outcome string) {
	if m == nil {
		return
	}
	m.reportsTotal.WithLabelValues(outcome).Inc()
}

func (m *Manager) RecordFinding(kind string) {
	if m == nil {
		return
	}
	m.findingsTotal.WithLabelValues(kind).Inc()
}

func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}
