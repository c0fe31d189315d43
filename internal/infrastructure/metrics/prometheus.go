// Package metrics expone las métricas Prometheus de la API y del carrito.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/eshop-api/internal/application/cart"
)

var _ cart.Observer = (*Metrics)(nil)

// Metrics agrupa los collectors en un registry propio (sin estado global entre tests).
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	cartOps  *prometheus.CounterVec
}

// New registra los collectors de la aplicación más los de Go y del proceso.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eshop_http_requests_total",
				Help: "Total de peticiones HTTP",
			},
			[]string{"method", "route", "status"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "eshop_http_request_duration_seconds",
				Help:    "Duración de las peticiones HTTP en segundos",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		cartOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eshop_cart_operations_total",
				Help: "Operaciones del carrito por resultado",
			},
			[]string{"operation", "outcome"},
		),
	}
	m.registry.MustRegister(
		m.requests,
		m.latency,
		m.cartOps,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest registra una petición ya respondida. route es la plantilla (/api/products/:id).
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// CartOperation implementa cart.Observer.
func (m *Metrics) CartOperation(operation, outcome string) {
	m.cartOps.WithLabelValues(operation, outcome).Inc()
}

// Handler sirve el registry en formato de exposición Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry acceso directo (tests).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
