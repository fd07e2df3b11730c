package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/replyflow/replyflow/internal/models"
)

// CreateReply stores a new reply rule and returns its ID.
func (s *Storage) CreateReply(ctx context.Context, reply models.Reply) (int, error) {
	const op = "storage.CreateReply"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	buttons, err := json.Marshal(reply.Buttons)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var id int
	query := `INSERT INTO replies (ig_account_id, keyword, reply, buttons, instagram_post_id, match_type)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		reply.IGAccountID, reply.Keyword, reply.Reply, buttons,
		reply.InstagramPostID, reply.MatchType).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListReplies returns every rule owned by the account, oldest first.
func (s *Storage) ListReplies(ctx context.Context, igAccountID int) ([]*models.Reply, error) {
	const op = "storage.ListReplies"
	query := `SELECT id, ig_account_id, keyword, reply, buttons, instagram_post_id, match_type, created_at, updated_at
			  FROM replies
			  WHERE ig_account_id = $1
			  ORDER BY id`
	return s.queryReplies(ctx, op, query, igAccountID)
}

// ListRecentReplies returns the newest rules first, capped at limit.
func (s *Storage) ListRecentReplies(ctx context.Context, igAccountID, limit int) ([]*models.Reply, error) {
	const op = "storage.ListRecentReplies"
	query := `SELECT id, ig_account_id, keyword, reply, buttons, instagram_post_id, match_type, created_at, updated_at
			  FROM replies
			  WHERE ig_account_id = $1
			  ORDER BY created_at DESC, id DESC
			  LIMIT $2`
	return s.queryReplies(ctx, op, query, igAccountID, limit)
}

func (s *Storage) queryReplies(ctx context.Context, op, query string, args ...any) ([]*models.Reply, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Reply
	for rows.Next() {
		var r models.Reply
		var buttons []byte
		var postID sql.NullString
		var updatedAt sql.NullTime
		if err = rows.Scan(&r.ID, &r.IGAccountID, &r.Keyword, &r.Reply,
			&buttons, &postID, &r.MatchType, &r.CreatedAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if len(buttons) > 0 {
			if err = json.Unmarshal(buttons, &r.Buttons); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
		}
		if postID.Valid {
			r.InstagramPostID = postID.String
		}
		if updatedAt.Valid {
			r.UpdatedAt = &updatedAt.Time
		}
		result = append(result, &r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateReply replaces the rule fields and returns the number of
// updated rows.
func (s *Storage) UpdateReply(ctx context.Context, reply models.Reply) (int, error) {
	const op = "storage.UpdateReply"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	buttons, err := json.Marshal(reply.Buttons)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE replies
			  SET keyword = $1, reply = $2, buttons = $3, instagram_post_id = $4,
			      match_type = $5, updated_at = now()
			  WHERE id = $6 AND ig_account_id = $7`
	res, err := s.DB.ExecContext(ctx, query,
		reply.Keyword, reply.Reply, buttons, reply.InstagramPostID,
		reply.MatchType, reply.ID, reply.IGAccountID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(n), nil
}

// RemoveReply deletes a rule and returns the number of deleted rows.
func (s *Storage) RemoveReply(ctx context.Context, id, igAccountID int) (int, error) {
	const op = "storage.RemoveReply"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM replies WHERE id = $1 AND ig_account_id = $2`
	res, err := s.DB.ExecContext(ctx, query, id, igAccountID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(n), nil
}
