package identity

import "context"

type ctxKey struct{}

// WithUser attaches the resolved user to the request context.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

// UserFrom returns the user attached by the auth middleware, or nil.
func UserFrom(ctx context.Context) *User {
	user, _ := ctx.Value(ctxKey{}).(*User)
	return user
}
