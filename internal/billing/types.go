package billing

// Subscription is the provider's subscription object, reduced to the
// fields this service consumes.
type Subscription struct {
	ID                string            `json:"id"`
	Customer          string            `json:"customer"`
	Status            string            `json:"status"`
	CancelAtPeriodEnd bool              `json:"cancel_at_period_end"`
	CurrentPeriodEnd  int64             `json:"current_period_end"` // unix seconds
	Metadata          map[string]string `json:"metadata"`
}

// ErrorResponse is the provider's error envelope.
type ErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// EventData wraps the payload object of a webhook event.
type EventData struct {
	Object Subscription `json:"object"`
}

// Event is a webhook event envelope. Object carries the subscription
// payload for subscription events.
type Event struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

// Provider webhook event types this service reacts to.
const (
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)
