package middleware

import (
	"net/http"

	"github.com/rs/xid"
)

// RequestIDHeader carries a per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

// RequestID returns a stage that gives every request an X-Request-ID.
//
// xid IDs are 20 chars, sortable by creation time, and need no
// coordination, so log lines from the client and the devserver can be
// matched up by eye. An ID the caller already set is kept.
func RequestID() Stage {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(RequestIDHeader) != "" {
				return next.RoundTrip(req)
			}
			req = req.Clone(req.Context())
			req.Header.Set(RequestIDHeader, xid.New().String())
			return next.RoundTrip(req)
		})
	}
}
