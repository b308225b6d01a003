package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const runIDKey contextKey = "runID"

// RequestIDHeader carries the run ID on outgoing requests
const RequestIDHeader = "X-Request-ID"

// WithRunID returns a context carrying id, or a fresh UUID when id is empty
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.New().String()
	}
	return context.WithValue(ctx, runIDKey, id)
}

// GetRunID retrieves the run ID from context
func GetRunID(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey).(string); ok {
		return id
	}
	return ""
}

// RequestID stamps each outgoing request with the run ID of its context.
// Requests made outside a run get their own UUID.
func RequestID(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		if r.Header.Get(RequestIDHeader) != "" {
			return next.RoundTrip(r)
		}
		id := GetRunID(r.Context())
		if id == "" {
			id = uuid.New().String()
		}
		r = r.Clone(r.Context())
		r.Header.Set(RequestIDHeader, id)
		return next.RoundTrip(r)
	})
}
