package gitlab3

import (
	"context"

	"github.com/spf13/cast"
)

type contextKey string

const sudoKey contextKey = "sudo"

// WithSudo returns a context whose requests are performed on behalf of user
// (a username or user id). Requires an administrator token. The parent
// context is left untouched, so leaving the scope needs no cleanup.
func WithSudo(ctx context.Context, user any) context.Context {
	return context.WithValue(ctx, sudoKey, cast.ToString(user))
}

// SudoFromContext returns the impersonated user set by WithSudo.
func SudoFromContext(ctx context.Context) (string, bool) {
	user, ok := ctx.Value(sudoKey).(string)
	if !ok || user == "" {
		return "", false
	}

	return user, true
}
