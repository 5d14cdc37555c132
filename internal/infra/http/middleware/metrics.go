package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/LeomirDias/gpmd-sys/internal/usecase"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	deliveryTasks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delivery_tasks_total",
			Help: "Delivery tasks by channel and result",
		},
		[]string{"channel", "result"},
	)

	deliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deliveries_total",
			Help: "Deliveries by outcome (delivered, partial_failure, aborted, no_tasks, status_update_failed)",
		},
		[]string{"outcome"},
	)

	webhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchase_webhooks_total",
			Help: "Purchase webhooks received by event and result",
		},
		[]string{"event", "result"},
	)

	leadsCaptured = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_captured_total",
			Help: "Lead capture requests by HTTP status",
		},
		[]string{"status"},
	)

	StaleOrders = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "orders_undelivered_stale",
			Help: "Orders past the delivery window that never reached delivered",
		},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern usa o padrão do chi para não explodir a cardinalidade.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

func RecordWebhook(event, result string) {
	webhookEvents.WithLabelValues(event, result).Inc()
}

func RecordLeadCapture(status int) {
	leadsCaptured.WithLabelValues(strconv.Itoa(status)).Inc()
}

// DeliveryMetrics implementa usecase.DeliveryMetrics sobre o Prometheus.
type DeliveryMetrics struct{}

func (DeliveryMetrics) TaskFinished(channel usecase.Channel, ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	deliveryTasks.WithLabelValues(string(channel), result).Inc()
}

func (DeliveryMetrics) DeliveryFinished(outcome string) {
	deliveries.WithLabelValues(outcome).Inc()
}
