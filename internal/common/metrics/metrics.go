package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	Namespace = "content_watch"

	WatcherSubsystem = "watcher"
)

// Метрики цикла проверки мониторов.
var (
	MonitorChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: WatcherSubsystem,
			Name:      "monitor_checks_total",
			Help:      "Total number of monitor check cycles by content type and outcome",
		},
		[]string{"content_type", "outcome"},
	)

	MonitorCheckDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: WatcherSubsystem,
			Name:      "monitor_check_duration_seconds",
			Help:      "Duration of one fetch+compare+transition cycle in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"content_type"},
	)

	EventsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: WatcherSubsystem,
			Name:      "events_created_total",
			Help:      "Total number of monitor events created by kind",
		},
		[]string{"kind"},
	)

	ComparisonAnomaliesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: WatcherSubsystem,
			Name:      "comparison_anomalies_total",
			Help:      "Total number of abnormal snapshot shrinkages rejected by the comparator",
		},
	)

	ActiveMonitors = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: WatcherSubsystem,
			Name:      "active_monitors",
			Help:      "Number of enabled monitors by content type and state",
		},
		[]string{"content_type", "state"},
	)
)

// Метрики HTTP API операторов.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

func ObserveCheck(contentType, outcome string, started time.Time) {
	MonitorChecksTotal.WithLabelValues(contentType, outcome).Inc()
	MonitorCheckDuration.WithLabelValues(contentType).Observe(time.Since(started).Seconds())
}

func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
