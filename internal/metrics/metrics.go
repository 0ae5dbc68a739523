package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 服务指标。所有方法对 nil 接收者安全
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	decisionsTotal    *prometheus.CounterVec
	sunsetLookups     *prometheus.CounterVec
	sunsetDuration    prometheus.Histogram
	mqttMessages      *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smarthub",
			Name:      "http_requests_total",
			Help:      "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "smarthub",
			Name:      "http_request_duration_seconds",
			Help:      "Histogram of HTTP request durations by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		decisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smarthub",
			Name:      "actuation_decisions_total",
			Help:      "Actuation decisions by outcome and resulting fan/light state.",
		}, []string{"outcome", "fan", "light"}),
		sunsetLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smarthub",
			Name:      "sunset_lookups_total",
			Help:      "Sunset lookups by source (cache, upstream) and result.",
		}, []string{"source", "result"}),
		sunsetDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "smarthub",
			Name:      "sunset_upstream_duration_seconds",
			Help:      "Histogram of upstream sunset API latencies.",
			Buckets:   prometheus.DefBuckets,
		}),
		mqttMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smarthub",
			Name:      "mqtt_messages_total",
			Help:      "MQTT messages by direction (in, out) and result.",
		}, []string{"direction", "result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpDuration,
		m.decisionsTotal,
		m.sunsetLookups,
		m.sunsetDuration,
		m.mqttMessages,
	)
	return m
}

// Registry exposes the underlying registry (tests gather from it).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// Middleware records request counts and latency labelled by the mux route
// template, so /tank/{id} stays one series.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil {
			next.ServeHTTP(w, r)
			return
		}
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// 决策结果
const (
	OutcomePersisted = "persisted"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

func (m *Metrics) ObserveDecision(outcome string, fan, light bool) {
	if m == nil {
		return
	}
	m.decisionsTotal.WithLabelValues(outcome, strconv.FormatBool(fan), strconv.FormatBool(light)).Inc()
}

func (m *Metrics) ObserveSunsetLookup(source string, err error) {
	if m == nil {
		return
	}
	m.sunsetLookups.WithLabelValues(source, result(err)).Inc()
}

func (m *Metrics) ObserveSunsetLatency(d time.Duration) {
	if m == nil {
		return
	}
	m.sunsetDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveMQTT(direction string, err error) {
	if m == nil {
		return
	}
	m.mqttMessages.WithLabelValues(direction, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
