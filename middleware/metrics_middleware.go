package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricHTTPRequestsTotal   = "cafe_http_requests_total"
	MetricHTTPRequestDuration = "cafe_http_request_duration_seconds"
	MetricDiscoveryResults    = "cafe_discovery_results"
)

// Metrics holds the Prometheus collectors for the API.
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	discoveryResults    *prometheus.HistogramVec
}

// NewMetrics creates the collectors. Call Register to expose them.
func NewMetrics() *Metrics {
	return &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricHTTPRequestsTotal,
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricHTTPRequestDuration,
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"method", "path"},
		),
		discoveryResults: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricDiscoveryResults,
				Help:    "Number of cafes returned per discovery request",
				Buckets: prometheus.LinearBuckets(0, 5, 10),
			},
			[]string{"ranked"},
		),
	}
}

func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.httpRequestsTotal, m.httpRequestDuration, m.discoveryResults} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveDiscovery records the size of a discovery result.
func (m *Metrics) ObserveDiscovery(count int, ranked bool) {
	if m == nil {
		return
	}
	m.discoveryResults.WithLabelValues(strconv.FormatBool(ranked)).Observe(float64(count))
}

// Middleware counts requests and times them by route template.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := newStatusRecorder(w)

		next.ServeHTTP(rw, r)

		path := routeTemplate(r)
		m.httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rw.status)).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
