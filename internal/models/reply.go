package models

import "time"

// Match types for reply rules.
const (
	MatchExact   = "EXACT"
	MatchPartial = "PARTIAL"
)

// Button is an optional call-to-action attached to a reply.
type Button struct {
	Title string `json:"title" validate:"required"`
	URL   string `json:"url" validate:"required,url"`
}

// Reply is a keyword-triggered auto-reply rule owned by an Instagram
// account. Buttons are stored as JSONB alongside the rule.
type Reply struct {
	ID              int        `json:"id"`
	IGAccountID     int        `json:"ig_account_id"`
	Keyword         string     `json:"keyword"`
	Reply           string     `json:"reply"`
	Buttons         []Button   `json:"buttons,omitempty"`
	InstagramPostID string     `json:"instagram_post_id,omitempty"`
	MatchType       string     `json:"match_type"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// DummyReply receives a reply rule from a JSON request before it is
// converted into a Reply.
type DummyReply struct {
	Keyword         string   `json:"keyword" validate:"required"`
	Reply           string   `json:"reply" validate:"required"`
	Buttons         []Button `json:"buttons,omitempty" validate:"omitempty,dive"`
	InstagramPostID string   `json:"instagram_post_id,omitempty"`
	MatchType       string   `json:"match_type" validate:"required,oneof=EXACT PARTIAL"`
}

// IGAccount is a connected Instagram business account. A user may own
// several, most flows use the first one.
type IGAccount struct {
	ID          int       `json:"id"`
	UserUID     string    `json:"user_uid"`
	IGUserID    string    `json:"ig_user_id"` // Account id at the Graph API
	Username    string    `json:"username"`
	AccessToken string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExecutionLog is an append-only diagnostic record. Written by the reply
// engine and the subscription lifecycle, never queried back in-product.
type ExecutionLog struct {
	ID        int
	UserUID   string
	Message   string
	CreatedAt time.Time
}
