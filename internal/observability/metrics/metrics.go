package metrics

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Config carries the constant labels attached to every metric.
type Config struct {
	ServiceName string
	Environment string
}

// HTTPMetrics instruments the gin request path.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics(cfg Config) *HTTPMetrics {
	return newHTTPMetrics(prometheus.DefaultRegisterer, cfg)
}

func newHTTPMetrics(registerer prometheus.Registerer, cfg Config) *HTTPMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	constLabels := constLabelsFor(cfg)

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "riskintel_http_requests_total",
		Help:        "HTTP requests by route, method and status class.",
		ConstLabels: constLabels,
	}, []string{"route", "method", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "riskintel_http_request_duration_seconds",
		Help:        "HTTP request latency by route.",
		Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		ConstLabels: constLabels,
	}, []string{"route"})

	registerer.MustRegister(requests, duration)
	return &HTTPMetrics{requests: requests, duration: duration}
}

// GinMiddleware records request counts and latency per route.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		m.requests.WithLabelValues(route, c.Request.Method, statusClass(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// Metrics exposes domain-level instruments for the case lifecycle.
type Metrics struct {
	caseTransitions *prometheus.CounterVec
	paymentEvents   *prometheus.CounterVec
	fraudAlerts     prometheus.Counter
	rateLimited     prometheus.Counter
}

func New(cfg Config) *Metrics {
	return newMetrics(prometheus.DefaultRegisterer, cfg)
}

func newMetrics(registerer prometheus.Registerer, cfg Config) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	constLabels := constLabelsFor(cfg)

	caseTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "riskintel_case_transitions_total",
		Help:        "Case status transitions by from/to status.",
		ConstLabels: constLabels,
	}, []string{"from", "to"})
	paymentEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "riskintel_payment_events_total",
		Help:        "Payment webhook events by outcome.",
		ConstLabels: constLabels,
	}, []string{"outcome"})
	fraudAlerts := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "riskintel_payment_fraud_alerts_total",
		Help:        "Payment events rejected by the amount-match fraud check.",
		ConstLabels: constLabels,
	})
	rateLimited := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "riskintel_rate_limited_total",
		Help:        "Requests rejected by the per-IP rate limiter.",
		ConstLabels: constLabels,
	})

	registerer.MustRegister(caseTransitions, paymentEvents, fraudAlerts, rateLimited)
	return &Metrics{
		caseTransitions: caseTransitions,
		paymentEvents:   paymentEvents,
		fraudAlerts:     fraudAlerts,
		rateLimited:     rateLimited,
	}
}

func (m *Metrics) IncCaseTransition(from, to string) {
	if m == nil {
		return
	}
	m.caseTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) IncPaymentEvent(outcome string) {
	if m == nil {
		return
	}
	m.paymentEvents.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncFraudAlert() {
	if m == nil {
		return
	}
	m.fraudAlerts.Inc()
}

func (m *Metrics) IncRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

func constLabelsFor(cfg Config) prometheus.Labels {
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "riskintel"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	return prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
