package requestid

import "context"

// Header is read from incoming requests and echoed on responses.
const Header = "X-Request-ID"

type ctxKey struct{}

func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
