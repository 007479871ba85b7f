// Package metrics содержит Prometheus-метрики сервиса и HTTP-обработчик
// для их отдачи.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "scoring_api"

// knownMethods ограничивает значения метки method, чтобы произвольные
// строки из запросов не раздували число рядов.
var knownMethods = map[string]bool{
	"online_score":      true,
	"clients_interests": true,
}

var (
	// Registry хранит коллекторы сервиса.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "path"},
	)

	apiMethods = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "method_calls_total",
			Help:      "Dispatched API method calls by result code.",
		},
		[]string{"api_method", "code"},
	)

	scoreFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "score_fallbacks_total",
			Help:      "Score computations that failed and were replaced with zero.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		apiMethods,
		scoreFallbacks,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler отдаёт зарегистрированные метрики.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler оборачивает обработчик сбором HTTP-метрик.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)
		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}

// RecordMethod учитывает вызов метода API с итоговым кодом.
func RecordMethod(apiMethod string, code int) {
	apiMethods.WithLabelValues(methodLabel(apiMethod), strconv.Itoa(code)).Inc()
}

// RecordScoreFallback учитывает замену сбойного скоринга нулём.
func RecordScoreFallback() {
	scoreFallbacks.Inc()
}

func methodLabel(apiMethod string) string {
	if knownMethods[apiMethod] {
		return apiMethod
	}
	return "unknown"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// canonicalPath сводит все пути, кроме /method, к "other".
func canonicalPath(raw string) string {
	if strings.Trim(raw, "/") == "method" {
		return "/method"
	}
	return "other"
}
