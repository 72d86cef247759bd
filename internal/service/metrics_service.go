package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation. A nil *MetricsService is a valid no-op.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	timingRequests  *prometheus.CounterVec
	pollVotes       prometheus.Counter
	notifications   prometheus.Counter
	logins          *prometheus.CounterVec
	realtime        *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	timingRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_timing_requests_total",
		Help: "Timing change requests by resulting status",
	}, []string{"status"})

	pollVotes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_poll_votes_total",
		Help: "Poll votes cast, including moved votes",
	})

	notifications := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_notifications_sent_total",
		Help: "Notifications created by workflows",
	})

	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_logins_total",
		Help: "Login attempts by result",
	}, []string{"result"})

	realtime := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_realtime_publish_total",
		Help: "Realtime notification publishes by result",
	}, []string{"result"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, timingRequests, pollVotes, notifications, logins, realtime, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		timingRequests:  timingRequests,
		pollVotes:       pollVotes,
		notifications:   notifications,
		logins:          logins,
		realtime:        realtime,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RegisterGauge exposes a value computed on scrape, such as pending request counts.
func (m *MetricsService) RegisterGauge(name, help string, fn func() float64) error {
	if m == nil {
		return nil
	}
	return m.registry.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: help}, fn))
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordTimingRequest counts a workflow transition into status.
func (m *MetricsService) RecordTimingRequest(status string) {
	if m == nil {
		return
	}
	m.timingRequests.WithLabelValues(status).Inc()
}

// RecordPollVote counts a cast vote.
func (m *MetricsService) RecordPollVote() {
	if m == nil {
		return
	}
	m.pollVotes.Inc()
}

// RecordNotifications counts notifications created in one workflow step.
func (m *MetricsService) RecordNotifications(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.notifications.Add(float64(n))
}

// RecordLogin counts a login attempt by result.
func (m *MetricsService) RecordLogin(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

// RecordRealtimePublish counts realtime deliveries by result.
func (m *MetricsService) RecordRealtimePublish(result string) {
	if m == nil {
		return
	}
	m.realtime.WithLabelValues(result).Inc()
}
