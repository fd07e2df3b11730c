package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/replyflow/replyflow/internal/models"
)

// GetSubscriptionByUserUID returns the subscription owned by the user.
func (s *Storage) GetSubscriptionByUserUID(ctx context.Context, userUID string) (*models.UserSubscription, error) {
	const op = "storage.GetSubscriptionByUserUID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, provider_subscription_id, status, current_period_end, created_at, updated_at
			  FROM user_subscriptions
			  WHERE user_uid = $1`
	return s.scanSubscription(s.DB.QueryRowContext(ctx, query, userUID), op)
}

// GetSubscriptionByProviderID returns the subscription mirroring the
// given provider subscription id.
func (s *Storage) GetSubscriptionByProviderID(ctx context.Context, providerID string) (*models.UserSubscription, error) {
	const op = "storage.GetSubscriptionByProviderID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, provider_subscription_id, status, current_period_end, created_at, updated_at
			  FROM user_subscriptions
			  WHERE provider_subscription_id = $1`
	return s.scanSubscription(s.DB.QueryRowContext(ctx, query, providerID), op)
}

func (s *Storage) scanSubscription(row *sql.Row, op string) (*models.UserSubscription, error) {
	sub := &models.UserSubscription{}
	var periodEnd sql.NullTime
	if err := row.Scan(&sub.ID, &sub.UserUID, &sub.ProviderSubscriptionID,
		&sub.Status, &periodEnd, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if periodEnd.Valid {
		sub.CurrentPeriodEnd = &periodEnd.Time
	}
	return sub, nil
}

// UpsertSubscription creates the user's subscription record or refreshes
// the provider id, status and period end of the existing one.
func (s *Storage) UpsertSubscription(ctx context.Context, sub models.UserSubscription) (int, error) {
	const op = "storage.UpsertSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var id int
	query := `INSERT INTO user_subscriptions (user_uid, provider_subscription_id, status, current_period_end)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (user_uid) DO UPDATE
			  SET provider_subscription_id = EXCLUDED.provider_subscription_id,
			      status = EXCLUDED.status,
			      current_period_end = EXCLUDED.current_period_end,
			      updated_at = now()
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		sub.UserUID, sub.ProviderSubscriptionID, sub.Status, sub.CurrentPeriodEnd).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// UpdateSubscriptionStatus sets the status of the subscription with the
// given provider id.
func (s *Storage) UpdateSubscriptionStatus(ctx context.Context, providerID, status string) error {
	const op = "storage.UpdateSubscriptionStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE user_subscriptions
			  SET status = $1, updated_at = now()
			  WHERE provider_subscription_id = $2`
	res, err := s.DB.ExecContext(ctx, query, status, providerID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// SyncSubscription sets both status and period end from a provider
// update event.
func (s *Storage) SyncSubscription(ctx context.Context, providerID, status string, periodEnd *time.Time) error {
	const op = "storage.SyncSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE user_subscriptions
			  SET status = $1, current_period_end = $2, updated_at = now()
			  WHERE provider_subscription_id = $3`
	res, err := s.DB.ExecContext(ctx, query, status, periodEnd, providerID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
