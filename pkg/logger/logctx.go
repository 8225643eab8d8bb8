package logger

import "context"

type ctxKey struct{}

var logCtxKey = ctxKey{}

// LogCtx carries fields injected into every log record
type LogCtx struct {
	Action    string
	Surface   string
	RequestID string
}

func fromContext(ctx context.Context) LogCtx {
	if c, ok := ctx.Value(logCtxKey).(LogCtx); ok {
		return c
	}
	return LogCtx{}
}

// WithAction tags the context with the operation being performed
func WithAction(ctx context.Context, action string) context.Context {
	c := fromContext(ctx)
	c.Action = action
	return context.WithValue(ctx, logCtxKey, c)
}

// WithSurface tags the context with the surface ("list", "map")
func WithSurface(ctx context.Context, surface string) context.Context {
	c := fromContext(ctx)
	c.Surface = surface
	return context.WithValue(ctx, logCtxKey, c)
}

// WithRequestID tags the context with an HTTP request id
func WithRequestID(ctx context.Context, id string) context.Context {
	c := fromContext(ctx)
	c.RequestID = id
	return context.WithValue(ctx, logCtxKey, c)
}
