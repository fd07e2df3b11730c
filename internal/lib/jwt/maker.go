// Package jwt implements issuing and parsing of session tokens with
// custom claims carrying the user uid and e-mail.
package jwt

import (
	"time"
)

// Maker issues and parses session tokens.
type Maker interface {
	// GenerateToken issues a signed token for the given user.
	GenerateToken(userUID, email string) (string, error)
	// ParseToken validates a token and returns its claims.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl implements Maker with an HMAC secret and a token lifetime.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTMaker creates a MakerImpl from a secret key and TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
