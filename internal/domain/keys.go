package domain

import "context"

type CtxKey string

const (
	KeyUserID       CtxKey = "UserID"
	KeyUserEmail    CtxKey = "Email"
	KeySessionToken CtxKey = "SessionToken"
	KeyIdentity     CtxKey = "Identity"
)

// WithSession attaches the bearer token and, when resolved, the identity to ctx.
func WithSession(ctx context.Context, token string, identity *Identity) context.Context {
	ctx = context.WithValue(ctx, KeySessionToken, token)
	if identity != nil {
		ctx = context.WithValue(ctx, KeyIdentity, identity)
		ctx = context.WithValue(ctx, KeyUserID, identity.UID)
		ctx = context.WithValue(ctx, KeyUserEmail, identity.Email)
	}
	return ctx
}

func SessionToken(ctx context.Context) string {
	token, _ := ctx.Value(KeySessionToken).(string)
	return token
}

func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(KeyIdentity).(*Identity)
	return identity, ok && identity != nil
}
