package forgeterm

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	commandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forgeterm_commands_total",
			Help: "Total number of processed commands",
		},
		[]string{"kind", "exit_code"},
	)

	commandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forgeterm_command_duration_seconds",
			Help:    "Command processing duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	securityRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forgeterm_security_rejections_total",
			Help: "Total number of allowlist rejections",
		},
		[]string{"reason"},
	)

	executionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forgeterm_executions_total",
			Help: "Total number of external tool executions by mode",
		},
		[]string{"mode"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forgeterm_http_requests_total",
			Help: "Total number of HTTP API requests",
		},
		[]string{"method", "route", "status"},
	)

	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "forgeterm_active_sessions",
			Help: "Number of open terminal sessions",
		},
	)
)

// RecordCommand records one processed command.
func RecordCommand(kind string, exitCode int, duration time.Duration) {
	commandsTotal.WithLabelValues(kind, strconv.Itoa(exitCode)).Inc()
	commandDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordRejection records an allowlist rejection.
func RecordRejection(code RejectionCode) {
	securityRejectionsTotal.WithLabelValues(string(code)).Inc()
}

// RecordExecution records an external tool execution ("simulated", "real", "timeout").
func RecordExecution(mode string) {
	executionsTotal.WithLabelValues(mode).Inc()
}

// RecordHTTPRequest records one API request.
func RecordHTTPRequest(method, route string, status int) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// SetActiveSessions sets the open session gauge.
func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}

// MetricsHandler returns the Prometheus metrics HTTP handler.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
