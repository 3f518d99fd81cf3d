package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ClientMetrics are the outgoing-request instruments.
//
// Labels are method and status class ("2xx", "4xx", ..., or "error" when
// no response arrived). Paths are left out on purpose: ids in the path
// would make the label set unbounded.
type ClientMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewClientMetrics registers the instruments with reg.
// Pass prometheus.NewRegistry() in tests so runs don't collide.
func NewClientMetrics(reg prometheus.Registerer) *ClientMetrics {
	factory := promauto.With(reg)
	return &ClientMetrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gradlink_client_requests_total",
				Help: "Total number of requests sent to the GradLink API",
			},
			[]string{"method", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gradlink_client_request_duration_seconds",
				Help:    "Round-trip time of requests to the GradLink API",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "status"},
		),
	}
}

// Metrics returns a stage recording every round trip in m.
// A nil m yields a nil stage, which Chain skips.
func Metrics(m *ClientMetrics) Stage {
	if m == nil {
		return nil
	}
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)

			status := "error"
			if err == nil {
				status = statusClass(resp.StatusCode)
			}
			m.requests.WithLabelValues(req.Method, status).Inc()
			m.duration.WithLabelValues(req.Method, status).Observe(time.Since(start).Seconds())

			return resp, err
		})
	}
}

func statusClass(code int) string {
	if code < 100 || code > 599 {
		return strconv.Itoa(code)
	}
	return strconv.Itoa(code/100) + "xx"
}
