package requestcontext

import "context"

type ctxKey int

const (
	requestIDKey ctxKey = iota
	sourceKey
)

// Front-ends that call the prediction service.
const (
	SourceWeb       = "web"
	SourceDashboard = "dashboard"
	SourceCLI       = "cli"
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the request ID stored in ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceKey, source)
}

// Source returns the calling front-end, or "unknown".
func Source(ctx context.Context) string {
	if s, ok := ctx.Value(sourceKey).(string); ok && s != "" {
		return s
	}
	return "unknown"
}
