package session

import "context"

// Session identifies the acting operator for audit attribution.
// UserID is nil when no operator is known; audit rows then carry no user.
type Session struct {
	UserID *uint
}

// Provider resolves the current session.
type Provider interface {
	Current(ctx context.Context) Session
}

// Config holds the acting-user fallback used when a request carries no
// operator identity (for example CLI runs).
type Config struct {
	// UserID is the fallback operator id; zero means anonymous.
	UserID uint `mapstructure:"user_id" default:"0"`
}

type ctxKey struct{}

// WithUser returns a context carrying the acting operator's id.
func WithUser(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// ContextProvider resolves the operator from the context, falling back to
// the configured id when the context carries none.
type ContextProvider struct {
	Fallback Config
}

// Current implements Provider.
func (p ContextProvider) Current(ctx context.Context) Session {
	if id, ok := ctx.Value(ctxKey{}).(uint); ok && id != 0 {
		return Session{UserID: &id}
	}
	if p.Fallback.UserID != 0 {
		id := p.Fallback.UserID
		return Session{UserID: &id}
	}
	return Session{}
}
