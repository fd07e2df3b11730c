// Package models contains the domain structures shared between the
// business logic and the storage layer: users, connected Instagram
// accounts, reply rules, billing subscriptions and execution logs.
package models

import "time"

// Membership tiers. TRIAL collapses to FREE once the trial window ends;
// the stored value may lag behind until the next evaluation.
const (
	MembershipFree    = "FREE"
	MembershipTrial   = "TRIAL"
	MembershipPremium = "PREMIUM"
)

// User represents a registered account.
type User struct {
	UID            string     // Unique user identifier
	Email          string     // E-mail address, unique
	PasswordHash   string     // bcrypt hash of the password
	MembershipType string     // FREE, TRIAL or PREMIUM
	TrialStartDate *time.Time // When the trial began, nil if it never did
	CreatedAt      time.Time
}

// RegisterRequest carries the registration payload before it is turned
// into a User.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest carries the login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is the resolved identity of the caller for one request.
type Session struct {
	UserUID string
	Email   string
}
