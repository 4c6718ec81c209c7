package auth

import (
	"context"

	"github.com/spezi-dev/spezi/pkg/contextkeys"
)

// Context is the request-scoped authentication state set by the
// authentication middleware once a key is found in storage.
type Context struct {
	Key       string
	APIUserID int64
	IsAdmin   bool
}

// WithContext stores authCtx on ctx.
func WithContext(ctx context.Context, authCtx *Context) context.Context {
	return contextkeys.WithAuth(ctx, authCtx)
}

// FromContext returns the authentication state of the request, or nil when
// the request was not authenticated.
func FromContext(ctx context.Context) *Context {
	authCtx, ok := ctx.Value(contextkeys.AuthKey).(*Context)
	if !ok {
		return nil
	}
	return authCtx
}
