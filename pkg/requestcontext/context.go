// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware sets the request ID; services and notifiers read it without
// pulling in net/http:
//
//	requestID := requestcontext.RequestID(ctx)
package requestcontext

import "context"

type requestIDKey struct{}

// ContextKeyRequestID is exported for tests that need context.WithValue.
var ContextKeyRequestID = requestIDKey{}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}
