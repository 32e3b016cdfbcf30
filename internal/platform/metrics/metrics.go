package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hms"

// Metrics bundles the Prometheus collectors exposed by the service.
type Metrics struct {
	registry *prometheus.Registry

	HTTPDuration  *prometheus.HistogramVec
	RequestsTotal *prometheus.CounterVec

	// Transitions counts resource-request lifecycle operations by request
	// type and action (create, accept, reject, finalize, cancel).
	Transitions *prometheus.CounterVec

	// InventoryDebits counts successful inventory deductions by resource type.
	InventoryDebits *prometheus.CounterVec
}

// New creates a Metrics instance backed by its own registry, with Go runtime
// and process collectors registered alongside the service collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		registry: registry,
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served by route and status.",
		}, []string{"method", "path", "status"}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_transitions_total",
			Help:      "Resource request lifecycle transitions by type and action.",
		}, []string{"type", "action"}),
		InventoryDebits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_debits_total",
			Help:      "Inventory units deducted by resource type.",
		}, []string{"type"}),
	}

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

// Handler returns the HTTP handler serving the exposition endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware returns Echo middleware that records request counts and latency.
// The route template (c.Path) is used as the path label so parameterized
// routes do not explode the label cardinality.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			if err != nil {
				if httpErr, ok := err.(*echo.HTTPError); ok {
					status = httpErr.Code
				} else {
					status = http.StatusInternalServerError
				}
			}

			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}

			labels := []string{c.Request().Method, path, strconv.Itoa(status)}
			m.RequestsTotal.WithLabelValues(labels...).Inc()
			m.HTTPDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// ObserveTransition records a lifecycle transition for a request type.
func (m *Metrics) ObserveTransition(requestType, action string) {
	m.Transitions.WithLabelValues(requestType, action).Inc()
}

// ObserveDebit records deducted inventory units for a resource type.
func (m *Metrics) ObserveDebit(resourceType string, units int) {
	if units <= 0 {
		return
	}
	m.InventoryDebits.WithLabelValues(resourceType).Add(float64(units))
}
