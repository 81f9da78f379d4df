// go-utils/context_keys.go

package utils

import "context"

// ctxKey is unexported to prevent collisions.
type ctxKey string

// CtxKeyClientIP stores the caller IP resolved by ClientIP.
const CtxKeyClientIP ctxKey = "clientIP"

// CtxKeyRequestID stores the per-request correlation id.
const CtxKeyRequestID ctxKey = "requestID"

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, CtxKeyClientIP, ip)
}

// ClientIPFromContext returns "" when no IP was recorded.
func ClientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(CtxKeyClientIP).(string)
	return ip
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CtxKeyRequestID, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(CtxKeyRequestID).(string)
	return id
}
