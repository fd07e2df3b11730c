// Package session resolves bearer tokens into sessions. The production
// resolver is backed by the JWT maker; StubResolver is the deterministic
// double the app wires in instead when it runs in the test environment.
// Handlers never see the difference, they read the memoized session from
// the request context either way.
package session

import (
	"fmt"

	"github.com/replyflow/replyflow/internal/lib/jwt"
	"github.com/replyflow/replyflow/internal/models"
)

// Resolver turns JWT bearer tokens into sessions.
type Resolver struct {
	maker jwt.Maker
}

// NewResolver creates a Resolver over the given token maker.
func NewResolver(maker jwt.Maker) *Resolver {
	return &Resolver{maker: maker}
}

// ParseSession validates the token and returns the session it carries.
func (r *Resolver) ParseSession(token string) (*models.Session, error) {
	const op = "session.ParseSession"
	claims, err := r.maker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if claims.UserUID == "" {
		return nil, fmt.Errorf("%s: token without user uid", op)
	}
	return &models.Session{
		UserUID: claims.UserUID,
		Email:   claims.Email,
	}, nil
}

// StubResolver returns the same fixed session for every token. Wired in
// by the app only when the environment is "test"; it must never reach
// production wiring.
type StubResolver struct {
	Session models.Session
}

// ParseSession returns the fixed session regardless of the token.
func (s *StubResolver) ParseSession(string) (*models.Session, error) {
	sess := s.Session
	return &sess, nil
}
