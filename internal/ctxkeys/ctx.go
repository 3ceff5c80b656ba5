package ctxkeys

import (
	"context"

	"github.com/unitnode/unitnode/internal/model"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	UserKey    contextKey = "user"
	SessionKey contextKey = "session"
)

// Session is the verified session cookie payload.
type Session struct {
	UserID string
	Email  string
	Role   string
}

func User(ctx context.Context) *model.User {
	user, _ := ctx.Value(UserKey).(*model.User)
	return user
}

func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

func SessionFrom(ctx context.Context) *Session {
	session, _ := ctx.Value(SessionKey).(*Session)
	return session
}

func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}
