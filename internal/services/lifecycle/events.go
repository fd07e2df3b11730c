package lifecycle

import (
	"fmt"
	"time"

	"github.com/replyflow/replyflow/internal/billing"
)

// Event is the sealed set of provider webhook events the lifecycle
// reacts to. The private marker keeps the set closed so ApplyEvent can
// type-switch exhaustively; a new kind that is not handled there fails
// loudly at runtime instead of falling into a silent no-op.
type Event interface {
	subscriptionID() string
	isLifecycleEvent()
}

// SubscriptionCreated means the provider opened a subscription.
type SubscriptionCreated struct {
	SubscriptionID string
	UserUID        string
	PeriodEnd      *time.Time
}

// SubscriptionUpdated means the provider changed status or period end.
type SubscriptionUpdated struct {
	SubscriptionID string
	Status         string
	PeriodEnd      *time.Time
}

// SubscriptionDeleted means the provider terminated the subscription.
type SubscriptionDeleted struct {
	SubscriptionID string
}

func (e SubscriptionCreated) subscriptionID() string { return e.SubscriptionID }
func (e SubscriptionUpdated) subscriptionID() string { return e.SubscriptionID }
func (e SubscriptionDeleted) subscriptionID() string { return e.SubscriptionID }

func (SubscriptionCreated) isLifecycleEvent() {}
func (SubscriptionUpdated) isLifecycleEvent() {}
func (SubscriptionDeleted) isLifecycleEvent() {}

// EventFromProvider converts a verified provider webhook event into a
// lifecycle event. The boolean is false for event types this service
// ignores.
func EventFromProvider(ev *billing.Event) (Event, bool, error) {
	obj := ev.Data.Object

	var periodEnd *time.Time
	if obj.CurrentPeriodEnd > 0 {
		t := time.Unix(obj.CurrentPeriodEnd, 0).UTC()
		periodEnd = &t
	}

	switch ev.Type {
	case billing.EventSubscriptionCreated:
		userUID := obj.Metadata["user_uid"]
		if userUID == "" {
			return nil, false, fmt.Errorf("subscription.created %s: missing user_uid metadata", obj.ID)
		}
		return SubscriptionCreated{
			SubscriptionID: obj.ID,
			UserUID:        userUID,
			PeriodEnd:      periodEnd,
		}, true, nil
	case billing.EventSubscriptionUpdated:
		return SubscriptionUpdated{
			SubscriptionID: obj.ID,
			Status:         mapProviderStatus(obj.Status, obj.CancelAtPeriodEnd),
			PeriodEnd:      periodEnd,
		}, true, nil
	case billing.EventSubscriptionDeleted:
		return SubscriptionDeleted{SubscriptionID: obj.ID}, true, nil
	default:
		return nil, false, nil
	}
}
