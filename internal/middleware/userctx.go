package middleware

import "context"

type userKey struct{}

// UserCtx is the authenticated caller. The zero value is an anonymous request.
type UserCtx struct {
	UserID    int64
	SessionID string
}

func WithUser(ctx context.Context, u UserCtx) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

func FromCtx(ctx context.Context) UserCtx {
	if v := ctx.Value(userKey{}); v != nil {
		if u, ok := v.(UserCtx); ok {
			return u
		}
	}
	return UserCtx{}
}

func UserID(ctx context.Context) int64 { return FromCtx(ctx).UserID }
