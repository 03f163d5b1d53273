// v2
// internal/observability/metrics.go
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	tickDuration      prometheus.Histogram
	ticksTotal        prometheus.Counter
	tickErrors        prometheus.Counter
	actionsTotal      prometheus.Counter
	activeAlerts      prometheus.Gauge
	sinkErrors        *prometheus.CounterVec
	wsClients         prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tick_duration_seconds",
			Help:    "Histogram of full tick pipeline durations.",
			Buckets: prometheus.DefBuckets,
		}),
		ticksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ticks_total",
			Help: "Total completed simulation ticks.",
		}),
		tickErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tick_errors_total",
			Help: "Total ticks that failed and triggered a backoff.",
		}),
		actionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "control_actions_total",
			Help: "Total control actions produced across all subsystems.",
		}),
		activeAlerts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "active_alerts",
			Help: "Alerts raised by the most recent tick.",
		}),
		sinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sink_publish_errors_total",
			Help: "Total fan-out publish failures by sink.",
		}, []string{"sink"}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "websocket_clients",
			Help: "Currently connected WebSocket clients.",
		}),
	}

	prometheus.MustRegister(
		m.httpRequestsTotal,
		m.httpDuration,
		m.tickDuration,
		m.ticksTotal,
		m.tickErrors,
		m.actionsTotal,
		m.activeAlerts,
		m.sinkErrors,
		m.wsClients,
	)

	return m
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		duration := time.Since(start).Seconds()
		if m != nil {
			m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
			m.httpDuration.WithLabelValues(route).Observe(duration)
		}
	})
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}

func (m *Metrics) ObserveTick(d time.Duration, actions, alerts int) {
	if m == nil {
		return
	}
	m.tickDuration.Observe(d.Seconds())
	m.ticksTotal.Inc()
	m.actionsTotal.Add(float64(actions))
	m.activeAlerts.Set(float64(alerts))
}

func (m *Metrics) TickError() {
	if m == nil {
		return
	}
	m.tickErrors.Inc()
}

func (m *Metrics) SinkError(sink string) {
	if m == nil {
		return
	}
	m.sinkErrors.WithLabelValues(sink).Inc()
}

func (m *Metrics) WSClientConnected() {
	if m == nil {
		return
	}
	m.wsClients.Inc()
}

func (m *Metrics) WSClientDisconnected() {
	if m == nil {
		return
	}
	m.wsClients.Dec()
}
