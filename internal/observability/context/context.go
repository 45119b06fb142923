// Package obscontext carries request-scoped correlation identifiers.
package obscontext

import "context"

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	actorURNKey  contextKey = "actor_urn"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	value, _ := ctx.Value(requestIDKey).(string)
	return value
}

func WithActorURN(ctx context.Context, urn string) context.Context {
	return context.WithValue(ctx, actorURNKey, urn)
}

func ActorURNFromContext(ctx context.Context) string {
	value, _ := ctx.Value(actorURNKey).(string)
	return value
}
