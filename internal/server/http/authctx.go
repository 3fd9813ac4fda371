package httpserver

import "context"

type ctxKey string

const (
	userIDKey    ctxKey = "sf.userID"
	requestIDKey ctxKey = "sf.requestID"
)

// WithUserID stores the authenticated user id in context.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromCtx fetches the user id stored by the auth middleware.
func UserIDFromCtx(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// RequestIDFromCtx returns the id assigned by the RequestID middleware.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func contextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}
