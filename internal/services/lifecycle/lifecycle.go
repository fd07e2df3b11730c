// Package lifecycle drives the local subscription state machine:
// user-initiated cancels, upgrades and provider webhook events.
//
// Local states move ACTIVE -> CANCELING -> CANCELED; an immediate cancel
// jumps straight to CANCELED. Mutations for one provider subscription id
// are serialized with a per-key mutex because a webhook can race a
// user-initiated cancel.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/replyflow/replyflow/internal/billing"
	"github.com/replyflow/replyflow/internal/lib/sl"
	"github.com/replyflow/replyflow/internal/models"
	"github.com/replyflow/replyflow/internal/storage/repository"
)

// ErrNoSubscription is returned when the user has no subscription
// record.
var ErrNoSubscription = errors.New("subscription not found")

// ErrProvider wraps billing-provider failures; callers translate it to
// an upstream-failure response. Provider calls are never retried here.
var ErrProvider = errors.New("billing provider request failed")

// SubscriptionRepository is the storage surface the lifecycle needs.
type SubscriptionRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	GetSubscriptionByUserUID(ctx context.Context, userUID string) (*models.UserSubscription, error)
	GetSubscriptionByProviderID(ctx context.Context, providerID string) (*models.UserSubscription, error)
	UpsertSubscription(ctx context.Context, sub models.UserSubscription) (int, error)
	UpdateSubscriptionStatus(ctx context.Context, providerID, status string) error
	SyncSubscription(ctx context.Context, providerID, status string, periodEnd *time.Time) error
	UpdateMembershipType(ctx context.Context, userUID, membershipType string) error
	AppendExecutionLog(ctx context.Context, userUID, message string) error
}

// Provider is the billing-provider surface the lifecycle needs.
type Provider interface {
	CreateSubscription(ctx context.Context, customerID, priceID, userUID string) (*billing.Subscription, error)
	CancelAtPeriodEnd(ctx context.Context, subscriptionID string) (*billing.Subscription, error)
	CancelNow(ctx context.Context, subscriptionID string) (*billing.Subscription, error)
}

// Publisher emits notification events on terminal transitions. May be
// nil.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// CanceledEvent is published when a subscription reaches CANCELED.
type CanceledEvent struct {
	UserUID        string `json:"user_uid"`
	Email          string `json:"email"`
	SubscriptionID string `json:"subscription_id"`
	Kind           string `json:"kind"`
}

// Service implements the subscription lifecycle.
type Service struct {
	repo      SubscriptionRepository
	provider  Provider
	publisher Publisher
	priceID   string
	log       *slog.Logger

	locks sync.Map // provider subscription id -> *sync.Mutex
}

// New creates the lifecycle service.
func New(repo SubscriptionRepository, provider Provider, publisher Publisher, priceID string, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		provider:  provider,
		publisher: publisher,
		priceID:   priceID,
		log:       log,
	}
}

// lock serializes mutations for one provider subscription id.
func (s *Service) lock(subscriptionID string) func() {
	v, _ := s.locks.LoadOrStore(subscriptionID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// CancelAtPeriodEnd flags the user's subscription for deferred cancel at
// the provider and moves the local status to CANCELING. Returns
// ErrNoSubscription when the user has none. A provider failure leaves
// local state untouched.
func (s *Service) CancelAtPeriodEnd(ctx context.Context, userUID string) error {
	const op = "lifecycle.CancelAtPeriodEnd"

	sub, err := s.repo.GetSubscriptionByUserUID(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoSubscription
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	unlock := s.lock(sub.ProviderSubscriptionID)
	defer unlock()

	if _, err := s.provider.CancelAtPeriodEnd(ctx, sub.ProviderSubscriptionID); err != nil {
		s.log.Error("provider deferred cancel failed", sl.Err(err),
			slog.String("subscription_id", sub.ProviderSubscriptionID))
		return fmt.Errorf("%s: %w: %w", op, ErrProvider, err)
	}

	if err := s.repo.UpdateSubscriptionStatus(ctx, sub.ProviderSubscriptionID, models.SubscriptionCanceling); err != nil {
		// Provider state already changed; the local record catches up on
		// the next subscription.updated webhook.
		s.log.Error("failed to persist CANCELING status", sl.Err(err),
			slog.String("subscription_id", sub.ProviderSubscriptionID))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CancelNow cancels the subscription immediately at the provider, moves
// local status to CANCELED and records an execution-log entry. The
// source product never wrote the local status on this path; that was a
// correctness gap and it is closed here.
func (s *Service) CancelNow(ctx context.Context, userUID string) error {
	const op = "lifecycle.CancelNow"

	sub, err := s.repo.GetSubscriptionByUserUID(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoSubscription
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	unlock := s.lock(sub.ProviderSubscriptionID)
	defer unlock()

	if _, err := s.provider.CancelNow(ctx, sub.ProviderSubscriptionID); err != nil {
		s.log.Error("provider immediate cancel failed", sl.Err(err),
			slog.String("subscription_id", sub.ProviderSubscriptionID))
		if logErr := s.repo.AppendExecutionLog(ctx, userUID,
			fmt.Sprintf("immediate cancel of %s failed: %v", sub.ProviderSubscriptionID, err)); logErr != nil {
			s.log.Error("failed to append execution log", sl.Err(logErr))
		}
		return fmt.Errorf("%s: %w: %w", op, ErrProvider, err)
	}

	if err := s.repo.UpdateSubscriptionStatus(ctx, sub.ProviderSubscriptionID, models.SubscriptionCanceled); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.UpdateMembershipType(ctx, userUID, models.MembershipFree); err != nil {
		s.log.Error("failed to downgrade membership after cancel", sl.Err(err))
	}
	if err := s.repo.AppendExecutionLog(ctx, userUID,
		fmt.Sprintf("subscription %s canceled immediately", sub.ProviderSubscriptionID)); err != nil {
		s.log.Error("failed to append execution log", sl.Err(err))
	}
	s.publishCanceled(ctx, userUID, sub.ProviderSubscriptionID)
	return nil
}

// Upgrade opens a provider subscription for the user and mirrors it
// locally as ACTIVE. The created webhook that follows is an idempotent
// upsert of the same record.
func (s *Service) Upgrade(ctx context.Context, userUID, customerID string) error {
	const op = "lifecycle.Upgrade"

	sub, err := s.provider.CreateSubscription(ctx, customerID, s.priceID, userUID)
	if err != nil {
		s.log.Error("provider subscription create failed", sl.Err(err),
			slog.String("user_uid", userUID))
		return fmt.Errorf("%s: %w: %w", op, ErrProvider, err)
	}

	unlock := s.lock(sub.ID)
	defer unlock()

	var periodEnd *time.Time
	if sub.CurrentPeriodEnd > 0 {
		t := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
		periodEnd = &t
	}
	if _, err := s.repo.UpsertSubscription(ctx, models.UserSubscription{
		UserUID:                userUID,
		ProviderSubscriptionID: sub.ID,
		Status:                 models.SubscriptionActive,
		CurrentPeriodEnd:       periodEnd,
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.UpdateMembershipType(ctx, userUID, models.MembershipPremium); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ApplyEvent applies one verified provider event to local state. The
// type switch is exhaustive over the sealed Event set; an unknown
// dynamic type is a programming error and returns an error rather than
// a silent no-op.
func (s *Service) ApplyEvent(ctx context.Context, event Event) error {
	const op = "lifecycle.ApplyEvent"

	unlock := s.lock(event.subscriptionID())
	defer unlock()

	switch ev := event.(type) {
	case SubscriptionCreated:
		if _, err := s.repo.UpsertSubscription(ctx, models.UserSubscription{
			UserUID:                ev.UserUID,
			ProviderSubscriptionID: ev.SubscriptionID,
			Status:                 models.SubscriptionActive,
			CurrentPeriodEnd:       ev.PeriodEnd,
		}); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if err := s.repo.UpdateMembershipType(ctx, ev.UserUID, models.MembershipPremium); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil

	case SubscriptionUpdated:
		if err := s.repo.SyncSubscription(ctx, ev.SubscriptionID, ev.Status, ev.PeriodEnd); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// Update arrived before the created event; nothing local
				// to sync yet.
				s.log.Warn("update event for unknown subscription",
					slog.String("subscription_id", ev.SubscriptionID))
				return nil
			}
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil

	case SubscriptionDeleted:
		sub, err := s.repo.GetSubscriptionByProviderID(ctx, ev.SubscriptionID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				s.log.Warn("delete event for unknown subscription",
					slog.String("subscription_id", ev.SubscriptionID))
				return nil
			}
			return fmt.Errorf("%s: %w", op, err)
		}
		if err := s.repo.UpdateSubscriptionStatus(ctx, ev.SubscriptionID, models.SubscriptionCanceled); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if err := s.repo.UpdateMembershipType(ctx, sub.UserUID, models.MembershipFree); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		s.publishCanceled(ctx, sub.UserUID, ev.SubscriptionID)
		return nil

	default:
		return fmt.Errorf("%s: unhandled event type %T", op, event)
	}
}

func (s *Service) publishCanceled(ctx context.Context, userUID, subscriptionID string) {
	if s.publisher == nil {
		return
	}
	event := CanceledEvent{
		UserUID:        userUID,
		SubscriptionID: subscriptionID,
		Kind:           "subscription_canceled",
	}
	// The notifier needs an address; without one the event is dropped
	// on the consuming side, so the publication still happens for the
	// diagnostic trail.
	if user, err := s.repo.GetUser(ctx, userUID); err != nil {
		s.log.Error("failed to resolve email for canceled event", sl.Err(err))
	} else {
		event.Email = user.Email
	}
	if err := s.publisher.Publish("membership", event); err != nil {
		s.log.Error("failed to publish canceled event", sl.Err(err))
	}
}

// mapProviderStatus converts provider statuses into local ones. Unknown
// provider statuses are stored upper-cased as-is.
func mapProviderStatus(providerStatus string, cancelAtPeriodEnd bool) string {
	if cancelAtPeriodEnd {
		return models.SubscriptionCanceling
	}
	switch providerStatus {
	case "active", "trialing":
		return models.SubscriptionActive
	case "canceled":
		return models.SubscriptionCanceled
	case "past_due":
		return models.SubscriptionPastDue
	case "unpaid":
		return models.SubscriptionUnpaid
	default:
		return strings.ToUpper(providerStatus)
	}
}
