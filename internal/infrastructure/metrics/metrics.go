package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "srp",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "srp",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "srp",
			Subsystem: "requests",
			Name:      "actions_total",
			Help:      "Actions applied to requests, by resulting action type.",
		},
		[]string{"type"},
	)

	submissions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "srp",
			Subsystem: "requests",
			Name:      "submitted_total",
			Help:      "Requests submitted.",
		},
	)

	ledger = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "srp",
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Ledger mutations, by operation (add, void, base_payout) and modifier type.",
		},
		[]string{"operation", "type"},
	)

	denials = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "srp",
			Subsystem: "policy",
			Name:      "rejections_total",
			Help:      "Operations refused by policy, by operation and error kind.",
		},
		[]string{"operation", "kind"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		transitions,
		submissions,
		ledger,
		denials,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latencies per route template.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			method := c.Request().Method
			httpRequests.WithLabelValues(method, path, strconv.Itoa(c.Response().Status)).Inc()
			httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

func RecordSubmission() { submissions.Inc() }

func RecordAction(actionType string) { transitions.WithLabelValues(actionType).Inc() }

func RecordLedger(operation, modifierType string) {
	ledger.WithLabelValues(operation, modifierType).Inc()
}

func RecordDenial(operation, kind string) { denials.WithLabelValues(operation, kind).Inc() }
