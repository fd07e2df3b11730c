// Package membership computes a user's effective membership tier,
// lazily downgrading expired trials.
package membership

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/replyflow/replyflow/internal/lib/sl"
	"github.com/replyflow/replyflow/internal/models"
	"github.com/replyflow/replyflow/internal/storage/repository"
)

// UserRepository is the storage surface the evaluator needs.
type UserRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	GetSubscriptionByUserUID(ctx context.Context, userUID string) (*models.UserSubscription, error)
	UpdateMembershipType(ctx context.Context, userUID, membershipType string) error
}

// Publisher emits a notification event after a trial downgrade. May be
// nil when the notification pipeline is not wired.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// TrialExpiredEvent is published when a trial collapses to FREE.
type TrialExpiredEvent struct {
	UserUID string `json:"user_uid"`
	Email   string `json:"email"`
	Kind    string `json:"kind"`
}

// Service evaluates effective membership.
type Service struct {
	repo      UserRepository
	publisher Publisher
	trialDays int
	log       *slog.Logger
}

// New creates the evaluator. trialDays below 1 falls back to 14.
func New(repo UserRepository, publisher Publisher, trialDays int, log *slog.Logger) *Service {
	if trialDays < 1 {
		trialDays = 14
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		trialDays: trialDays,
		log:       log,
	}
}

// EffectiveMembership returns the user's tier after applying the
// trial-expiry rule. A stored non-TRIAL value is returned unchanged with
// no write. An unexpired trial is returned unchanged with no write. An
// expired trial is persisted as FREE; when that write fails the computed
// FREE is still returned, read-through correctness wins over write
// durability. Repeated evaluation after expiry repeats the same write,
// which is safe.
func (s *Service) EffectiveMembership(ctx context.Context, userUID string) (string, error) {
	const op = "membership.EffectiveMembership"

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if user.MembershipType != models.MembershipTrial {
		return user.MembershipType, nil
	}
	if user.TrialStartDate == nil {
		// TRIAL without a start date cannot be evaluated, treat it as
		// expired.
		s.downgrade(ctx, user)
		return models.MembershipFree, nil
	}

	trialEnd := user.TrialStartDate.AddDate(0, 0, s.trialDays)
	if !time.Now().After(trialEnd) {
		return models.MembershipTrial, nil
	}

	s.downgrade(ctx, user)
	return models.MembershipFree, nil
}

func (s *Service) downgrade(ctx context.Context, user *models.User) {
	if err := s.repo.UpdateMembershipType(ctx, user.UID, models.MembershipFree); err != nil {
		s.log.Error("failed to persist trial downgrade", sl.Err(err),
			slog.String("user_uid", user.UID))
		return
	}
	s.log.Info("trial expired, membership downgraded",
		slog.String("user_uid", user.UID))

	if s.publisher == nil {
		return
	}
	event := TrialExpiredEvent{
		UserUID: user.UID,
		Email:   user.Email,
		Kind:    "trial_expired",
	}
	if err := s.publisher.Publish("membership", event); err != nil {
		s.log.Error("failed to publish trial-expired event", sl.Err(err))
	}
}

// View assembles the full membership picture for the membership
// endpoints: effective tier, trial window and subscription fields.
func (s *Service) View(ctx context.Context, userUID string) (*models.MembershipView, error) {
	const op = "membership.View"

	effective, err := s.EffectiveMembership(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	view := &models.MembershipView{
		UserUID:        user.UID,
		MembershipType: effective,
		TrialStartDate: user.TrialStartDate,
	}
	if user.TrialStartDate != nil {
		trialEnd := user.TrialStartDate.AddDate(0, 0, s.trialDays)
		view.TrialEndDate = &trialEnd
	}

	sub, err := s.repo.GetSubscriptionByUserUID(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return view, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	view.Status = sub.Status
	view.CurrentPeriodEnd = sub.CurrentPeriodEnd
	return view, nil
}
