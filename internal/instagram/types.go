package instagram

// TokenResponse is the OAuth code-exchange result.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
}

// Account is the connected account identity.
type Account struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ErrorResponse is the Graph API error envelope.
type ErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// SendMessageRequest is the payload for delivering a reply.
type SendMessageRequest struct {
	Recipient Recipient `json:"recipient"`
	Message   Message   `json:"message"`
}

// Recipient addresses the conversation partner.
type Recipient struct {
	ID string `json:"id"`
}

// Message carries the reply text and optional call-to-action buttons.
type Message struct {
	Text    string       `json:"text,omitempty"`
	Buttons []ButtonLink `json:"buttons,omitempty"`
}

// ButtonLink is one call-to-action button.
type ButtonLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// WebhookPayload is the event envelope Instagram posts to the webhook
// endpoint.
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

// WebhookEntry groups the events for one account.
type WebhookEntry struct {
	ID        string           `json:"id"` // account id at the Graph API
	Time      int64            `json:"time"`
	Messaging []MessagingEvent `json:"messaging"`
}

// MessagingEvent is one inbound direct message.
type MessagingEvent struct {
	Sender    Recipient `json:"sender"`
	Recipient Recipient `json:"recipient"`
	Timestamp int64     `json:"timestamp"`
	Message   struct {
		MID  string `json:"mid"`
		Text string `json:"text"`
	} `json:"message"`
}
