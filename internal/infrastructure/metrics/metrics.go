// Package metrics contadores Prometheus del pipeline, del espejo de brokers y de la API HTTP.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Emlak-api/internal/application/broker"
	"github.com/jhoicas/Emlak-api/internal/application/sales"
	"github.com/jhoicas/Emlak-api/internal/domain/entity"
)

const namespace = "emlak"

// Metrics registro propio con los colectores de la aplicación.
type Metrics struct {
	registry     *prometheus.Registry
	transitions  *prometheus.CounterVec
	failedSteps  *prometheus.CounterVec
	mirrorSyncs  *prometheus.CounterVec
	commissions  *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
}

var (
	_ sales.Metrics  = (*Metrics)(nil)
	_ broker.Metrics = (*Metrics)(nil)
)

// New crea el registro e incluye los colectores de runtime y proceso.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "transitions_total",
			Help:      "Cambios de estado de ventas.",
		}, []string{"from", "to"}),
		failedSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "failed_steps_total",
			Help:      "Pasos secundarios que no se aplicaron.",
		}, []string{"step"}),
		mirrorSyncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "broker_mirror",
			Name:      "syncs_total",
			Help:      "Sincronizaciones del espejo de brokers por resultado.",
		}, []string{"result"}),
		commissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "broker_mirror",
			Name:      "commissions_total",
			Help:      "Comisiones generadas por broker.",
		}, []string{"broker_id"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Peticiones HTTP por método, ruta y código.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latencia de las peticiones HTTP.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.transitions, m.failedSteps, m.mirrorSyncs, m.commissions, m.httpRequests, m.httpLatency,
	)
	return m
}

// Registry expone el registro (tests y colectores adicionales).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler sirve el formato de exposición de Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Transition implementa sales.Metrics. from vacío = alta de la venta.
func (m *Metrics) Transition(from, to entity.SaleStatus) {
	f := string(from)
	if f == "" {
		f = "none"
	}
	m.transitions.WithLabelValues(f, string(to)).Inc()
}

// FailedStep implementa sales.Metrics.
func (m *Metrics) FailedStep(step string) {
	m.failedSteps.WithLabelValues(step).Inc()
}

// MirrorSync implementa broker.Metrics.
func (m *Metrics) MirrorSync(result string) {
	m.mirrorSyncs.WithLabelValues(result).Inc()
}

// CommissionCreated implementa broker.Metrics.
func (m *Metrics) CommissionCreated(brokerID string) {
	m.commissions.WithLabelValues(brokerID).Inc()
}

// Middleware mide cada petición usando la ruta registrada (no la URL) como etiqueta.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		m.httpRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.httpLatency.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}
