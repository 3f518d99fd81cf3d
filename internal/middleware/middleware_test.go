package middleware

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =========================================================================
// HELPERS
// =========================================================================

// answer is a base transport that replies with status, or fails with err.
func answer(status int, err error) http.RoundTripper {
	return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		if err != nil {
			return nil, err
		}
		return &http.Response{StatusCode: status, Body: http.NoBody, Request: req}, nil
	})
}

// tag appends name to the X-Trace header so tests can see stage order.
func tag(name string) Stage {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			req = req.Clone(req.Context())
			req.Header.Add("X-Trace", name)
			return next.RoundTrip(req)
		})
	}
}

func newReq() *http.Request {
	return httptest.NewRequest(http.MethodGet, "http://localhost:8000/api/events/", nil)
}

// =========================================================================
// CHAIN
// =========================================================================

func TestChainOrder(t *testing.T) {
	var trace []string
	base := RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		trace = req.Header.Values("X-Trace")
		return &http.Response{StatusCode: 200, Body: http.NoBody}, nil
	})

	rt := Chain(base, tag("first"), nil, tag("second"), tag("third"))
	_, err := rt.RoundTrip(newReq())
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second", "third"}, trace)
}

func TestChainNilBase(t *testing.T) {
	assert.Equal(t, http.DefaultTransport, Chain(nil))
}

// =========================================================================
// REQUEST ID
// =========================================================================

func TestRequestID(t *testing.T) {
	var got string
	base := RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		got = req.Header.Get(RequestIDHeader)
		return &http.Response{StatusCode: 200, Body: http.NoBody}, nil
	})
	rt := Chain(base, RequestID())

	req := newReq()
	_, err := rt.RoundTrip(req)
	require.NoError(t, err)
	assert.Len(t, got, 20, "xid strings are 20 chars")
	assert.Empty(t, req.Header.Get(RequestIDHeader), "caller's request must not be modified")

	first := got
	_, _ = rt.RoundTrip(newReq())
	assert.NotEqual(t, first, got)

	req = newReq()
	req.Header.Set(RequestIDHeader, "caller-chosen")
	_, _ = rt.RoundTrip(req)
	assert.Equal(t, "caller-chosen", got)
}

// =========================================================================
// LOGGER
// =========================================================================

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	rt := Chain(answer(http.StatusNotFound, nil), Logger(logger))
	resp, err := rt.RoundTrip(newReq())
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	out := buf.String()
	assert.Contains(t, out, "request completed")
	assert.Contains(t, out, "method=GET")
	assert.Contains(t, out, "path=/api/events/")
	assert.Contains(t, out, "status=404")
}

func TestLoggerTransportError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	boom := errors.New("connection refused")

	_, err := Chain(answer(0, boom), Logger(logger)).RoundTrip(newReq())

	assert.ErrorIs(t, err, boom, "transport errors pass through unchanged")
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "connection refused")
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":1}`))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/jobs/", nil))

	out := buf.String()
	assert.Contains(t, out, "status=201")
	assert.Contains(t, out, "bytes=8")
}

// =========================================================================
// METRICS
// =========================================================================

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewClientMetrics(reg)

	ok := Chain(answer(http.StatusOK, nil), Metrics(m))
	forbidden := Chain(answer(http.StatusForbidden, nil), Metrics(m))
	broken := Chain(answer(0, errors.New("dial tcp: refused")), Metrics(m))

	_, _ = ok.RoundTrip(newReq())
	_, _ = ok.RoundTrip(newReq())
	_, _ = forbidden.RoundTrip(newReq())
	_, _ = broken.RoundTrip(newReq())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "4xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "error")))

	// one histogram series per (method, status) pair seen
	n, err := testutil.GatherAndCount(reg, "gradlink_client_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestMetricsNilIsSkipped(t *testing.T) {
	assert.Nil(t, Metrics(nil))
	// and Chain tolerates it
	rt := Chain(answer(200, nil), Metrics(nil))
	resp, err := rt.RoundTrip(newReq())
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestStatusClass(t *testing.T) {
	for code, want := range map[int]string{200: "2xx", 204: "2xx", 301: "3xx", 404: "4xx", 503: "5xx", 42: "42"} {
		assert.Equal(t, want, statusClass(code), "code %d", code)
	}
}
