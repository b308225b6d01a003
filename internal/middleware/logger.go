package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Logger logs every outgoing request with its run ID, status and duration
func Logger(logger *zap.Logger) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		if next == nil {
			next = http.DefaultTransport
		}
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)
			duration := time.Since(start)

			fields := []zap.Field{
				zap.String("request_id", r.Header.Get(RequestIDHeader)),
				zap.String("method", r.Method),
				zap.String("host", r.URL.Host),
				zap.String("path", r.URL.Path),
				zap.Duration("duration", duration),
			}
			if err != nil {
				logger.Warn("HTTP request failed", append(fields, zap.Error(err))...)
				return nil, err
			}
			logger.Debug("HTTP request", append(fields, zap.Int("status", resp.StatusCode))...)
			return resp, nil
		})
	}
}

// Chain wraps base with the given middlewares, the first one outermost
func Chain(base http.RoundTripper, middlewares ...func(http.RoundTripper) http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	for i := len(middlewares) - 1; i >= 0; i-- {
		base = middlewares[i](base)
	}
	return base
}
