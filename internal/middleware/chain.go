package middleware

import "net/http"

// Stage is one step of an outgoing request pipeline.
type Stage func(http.RoundTripper) http.RoundTripper

// RoundTripperFunc lets an ordinary function be an http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Chain wraps base with stages so that stages[0] sees the request first.
// A nil base means http.DefaultTransport; nil stages are skipped, which
// lets callers write Chain(base, maybeMetrics, ...) without branching.
func Chain(base http.RoundTripper, stages ...Stage) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	rt := base
	for i := len(stages) - 1; i >= 0; i-- {
		if stages[i] == nil {
			continue
		}
		rt = stages[i](rt)
	}
	return rt
}
