// Package metrics exposes Prometheus instrumentation for the API process.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yamdb_http_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yamdb_http_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "yamdb_http_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yamdb_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"route"},
	)

	// Auth flow
	ConfirmationCodesIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yamdb_confirmation_codes_issued_total",
			Help: "Total number of confirmation codes issued",
		},
	)

	TokensIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yamdb_tokens_issued_total",
			Help: "Total number of access tokens issued",
		},
	)

	TokenExchangeFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yamdb_token_exchange_failures_total",
			Help: "Total number of rejected confirmation code exchanges",
		},
		[]string{"reason"}, // "unknown_user", "invalid_code", "expired_code"
	)

	MailDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yamdb_mail_deliveries_total",
			Help: "Total number of outgoing emails by result",
		},
		[]string{"backend", "result"},
	)

	// Authorization
	AuthzDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yamdb_authz_denials_total",
			Help: "Total number of denied authorization checks",
		},
		[]string{"resource", "action"},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordTokenExchangeFailure counts a failed token request by reason.
func RecordTokenExchangeFailure(reason string) {
	TokenExchangeFailures.WithLabelValues(reason).Inc()
}

// RecordMailDelivery counts an outgoing email.
func RecordMailDelivery(backend string, err error) {
	result := "sent"
	if err != nil {
		result = "failed"
	}
	MailDeliveries.WithLabelValues(backend, result).Inc()
}

// RecordAuthzDenial counts a denied authorization check.
func RecordAuthzDenial(resource, action string) {
	AuthzDenials.WithLabelValues(resource, action).Inc()
}

// Middleware records request count and latency labelled by the chi route pattern,
// so path parameters do not explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		APIActiveRequests.Inc()
		defer APIActiveRequests.Dec()

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RecordAPIRequest(r.Method, routePattern(r), status, time.Since(start))
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// Handler serves the default registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
