package requestid

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	key contextKey = "request_id"

	Header = "X-Request-ID"
)

func New() string {
	return uuid.NewString()
}

func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, key, id)
}

// FromContext returns the request id stored in ctx, or "" outside a request.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(key).(string); ok {
		return id
	}
	return ""
}
