// Package middleware holds the cross-cutting wrappers used on both sides of
// the wire.
//
// CLIENT SIDE: transport stages.
// A stage has the shape
//
//	func(next http.RoundTripper) http.RoundTripper
//
// which is the outgoing mirror of the server-side middleware pattern.
// Chain composes them in order, so
//
//	Chain(base, RequestID(), Logger(l), auth.Authorize(store, host))
//
// runs RequestID first and hands the request to base last.
//
// SERVER SIDE: RequestLogger, used by the devserver.
package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// Logger returns a transport stage that logs one line per request.
//
// Successful round trips log at Info, transport failures at Warn. Status
// codes are NOT judged here: a 404 is a normal answer as far as the
// transport is concerned.
func Logger(logger *slog.Logger) Stage {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)

			attrs := []any{
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.String("requestID", req.Header.Get(RequestIDHeader)),
				slog.Duration("duration", time.Since(start)),
			}
			if err != nil {
				logger.Warn("request failed", append(attrs, slog.String("error", err.Error()))...)
				return nil, err
			}

			logger.Info("request completed", append(attrs, slog.Int("status", resp.StatusCode))...)
			return resp, nil
		})
	}
}

// responseWriter captures what the handler wrote, since
// http.ResponseWriter can't be asked afterwards.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// RequestLogger is the server-side counterpart of Logger: an HTTP
// middleware that logs each handled request.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			logger.Info("request completed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("requestID", r.Header.Get(RequestIDHeader)),
				slog.Int("status", wrapped.statusCode),
				slog.Duration("duration", time.Since(start)),
				slog.Int64("bytes", wrapped.written),
			)
		})
	}
}
