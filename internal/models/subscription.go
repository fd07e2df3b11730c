package models

import "time"

// Local subscription statuses. PAST_DUE and UNPAID arrive verbatim from
// provider update events and are stored as-is.
const (
	SubscriptionActive    = "ACTIVE"
	SubscriptionCanceling = "CANCELING"
	SubscriptionCanceled  = "CANCELED"
	SubscriptionPastDue   = "PAST_DUE"
	SubscriptionUnpaid    = "UNPAID"
)

// UserSubscription is the local mirror of a billing-provider subscription.
// A user owns at most one record; it is never hard-deleted, the status
// moves to CANCELED instead.
type UserSubscription struct {
	ID                     int
	UserUID                string // Owner, unique
	ProviderSubscriptionID string // Subscription id at the billing provider
	Status                 string
	CurrentPeriodEnd       *time.Time // End of the paid period, nil until the first invoice
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// MembershipView is the full membership picture returned by the
// membership endpoints: the effective tier plus subscription fields.
type MembershipView struct {
	UserUID          string     `json:"user_uid"`
	MembershipType   string     `json:"membership_type"`
	TrialStartDate   *time.Time `json:"trial_start_date,omitempty"`
	TrialEndDate     *time.Time `json:"trial_end_date,omitempty"`
	Status           string     `json:"subscription_status,omitempty"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
}
