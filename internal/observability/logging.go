// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// ContextKey is the type for request-scoped context keys read by the log handler.
type ContextKey string

const (
	// RequestIDKey is the context key for the request ID.
	RequestIDKey ContextKey = "request_id"
	// UserIDKey is the context key for the authenticated user ID.
	UserIDKey ContextKey = "user_id"
	// TraceIDKey is the context key for the trace ID.
	TraceIDKey ContextKey = "trace_id"
)

// ContextHandler is a slog.Handler that adds request-scoped values to each record.
type ContextHandler struct {
	slog.Handler
}

// Handle adds context values to the record before passing it on.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if rid := ExtractRequestID(ctx); rid != "" {
		r.AddAttrs(slog.String("request_id", rid))
	}
	if uid := ExtractUserID(ctx); uid != "" {
		r.AddAttrs(slog.String("user_id", uid))
	}
	if tid := ExtractTraceID(ctx); tid != "" {
		r.AddAttrs(slog.String("trace_id", tid))
	}
	return h.Handler.Handle(ctx, r)
}

// WithAttrs keeps the context wrapper around derived handlers.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{h.Handler.WithAttrs(attrs)}
}

// WithGroup keeps the context wrapper around derived handlers.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{h.Handler.WithGroup(name)}
}

// NewLogger returns a context-aware logger writing JSON in production and
// text elsewhere.
func NewLogger(env string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var handler slog.Handler
	switch strings.ToLower(env) {
	case "production", "prod":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(&ContextHandler{handler})
}

// WithRequestID returns ctx carrying the request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// WithUserID returns ctx carrying the authenticated user ID.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, UserIDKey, id)
}

// WithTraceID returns ctx carrying the trace ID.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, TraceIDKey, id)
}

// ExtractRequestID returns the request ID from the context if set.
func ExtractRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// ExtractUserID returns the user ID from the context if set.
func ExtractUserID(ctx context.Context) string {
	id, _ := ctx.Value(UserIDKey).(string)
	return id
}

// ExtractTraceID returns the trace ID from the context if set.
func ExtractTraceID(ctx context.Context) string {
	id, _ := ctx.Value(TraceIDKey).(string)
	return id
}
