package shared

import (
	"context"

	"github.com/google/uuid"
	"github.com/gryp17/Tablaturi-bg-API/internal/session"
)

// ContextKey keys request-scoped values.
type ContextKey string

const (
	// TraceIDKey carries the trace id of the request.
	TraceIDKey ContextKey = "traceID"

	// SessionKey carries the *session.Session of the request.
	SessionKey ContextKey = "session"
)

// WithTraceID returns a copy of ctx carrying traceID. An empty traceID is
// replaced by a random one.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	if traceID == "" {
		traceID = uuid.NewString()
	}
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID returns the trace id carried by ctx, or "".
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDKey).(string)
	return traceID
}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, SessionKey, s)
}

// SessionFromContext returns the session of the request, or nil.
func SessionFromContext(ctx context.Context) *session.Session {
	s, _ := ctx.Value(SessionKey).(*session.Session)
	return s
}
