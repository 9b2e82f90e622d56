package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Middleware wraps an http.Handler. It matches chi's middleware signature.
type Middleware = func(http.Handler) http.Handler

type contextKey struct{}

// RequestIDHeader carries the request ID in both directions
const RequestIDHeader = "X-Request-ID"

// RequestID reuses an incoming X-Request-ID or assigns a UUID v4, stores it
// in the request context and echoes it in the response.
func RequestID() Middleware {
	return RequestIDWithGenerator(func() string { return uuid.New().String() })
}

// RequestIDWithGenerator is RequestID with a custom ID source
func RequestIDWithGenerator(gen func() string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = gen()
			}
			w.Header().Set(RequestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
		})
	}
}

// WithRequestID returns a context carrying id
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// GetRequestID extracts the request ID from the context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(contextKey{}).(string); ok {
		return id
	}
	return ""
}
