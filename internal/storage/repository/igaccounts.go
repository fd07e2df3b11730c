package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/replyflow/replyflow/internal/models"
)

// CreateIGAccount stores a connected Instagram account and returns its
// ID. Reconnecting the same account refreshes the token and username.
func (s *Storage) CreateIGAccount(ctx context.Context, acc models.IGAccount) (int, error) {
	const op = "storage.CreateIGAccount"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var id int
	query := `INSERT INTO ig_accounts (user_uid, ig_user_id, username, access_token)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (ig_user_id) DO UPDATE
			  SET username = EXCLUDED.username,
			      access_token = EXCLUDED.access_token
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		acc.UserUID, acc.IGUserID, acc.Username, acc.AccessToken).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListIGAccounts returns the accounts connected by the user, oldest
// first. Most flows use only the first one.
func (s *Storage) ListIGAccounts(ctx context.Context, userUID string) ([]*models.IGAccount, error) {
	const op = "storage.ListIGAccounts"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, ig_user_id, username, access_token, created_at
			  FROM ig_accounts
			  WHERE user_uid = $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.IGAccount
	for rows.Next() {
		var a models.IGAccount
		if err = rows.Scan(&a.ID, &a.UserUID, &a.IGUserID,
			&a.Username, &a.AccessToken, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetIGAccountByIGUserID returns the connected account with the given
// Graph API user id.
func (s *Storage) GetIGAccountByIGUserID(ctx context.Context, igUserID string) (*models.IGAccount, error) {
	const op = "storage.GetIGAccountByIGUserID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, ig_user_id, username, access_token, created_at
			  FROM ig_accounts
			  WHERE ig_user_id = $1`
	a := &models.IGAccount{}
	if err := s.DB.QueryRowContext(ctx, query, igUserID).Scan(&a.ID, &a.UserUID,
		&a.IGUserID, &a.Username, &a.AccessToken, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// AppendExecutionLog writes one append-only diagnostic record. The table
// is a sink, nothing in the product reads it back.
func (s *Storage) AppendExecutionLog(ctx context.Context, userUID, message string) error {
	const op = "storage.AppendExecutionLog"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO execution_logs (user_uid, message) VALUES ($1, $2)`
	if _, err := s.DB.ExecContext(ctx, query, userUID, message); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
