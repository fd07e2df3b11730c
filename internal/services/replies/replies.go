// Package replies implements the business logic of reply-rule
// configuration: CRUD scoped to the caller's first connected account,
// with the active rule set mirrored through the reply store.
package replies

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/replyflow/replyflow/internal/lib/sl"
	"github.com/replyflow/replyflow/internal/models"
	"github.com/replyflow/replyflow/internal/replystore"
)

// DefaultRecentLimit caps the recent listing when no limit is given.
const DefaultRecentLimit = 10

// ErrNoAccount is returned when the caller has no connected Instagram
// account.
var ErrNoAccount = errors.New("no connected instagram account")

// ErrRuleNotFound is returned when an update or delete hits nothing.
var ErrRuleNotFound = errors.New("reply rule not found")

// Repository is the storage surface the service needs.
type Repository interface {
	ListIGAccounts(ctx context.Context, userUID string) ([]*models.IGAccount, error)
	CreateReply(ctx context.Context, reply models.Reply) (int, error)
	ListReplies(ctx context.Context, igAccountID int) ([]*models.Reply, error)
	ListRecentReplies(ctx context.Context, igAccountID, limit int) ([]*models.Reply, error)
	UpdateReply(ctx context.Context, reply models.Reply) (int, error)
	RemoveReply(ctx context.Context, id, igAccountID int) (int, error)
}

// Service implements reply-rule configuration.
type Service struct {
	repo  Repository
	store *replystore.Store
	log   *slog.Logger
}

// New creates the service.
func New(repo Repository, store *replystore.Store, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		store: store,
		log:   log,
	}
}

// accountFor returns the caller's first connected account; the product
// assumes one account per user.
func (s *Service) accountFor(ctx context.Context, userUID string) (*models.IGAccount, error) {
	accounts, err := s.repo.ListIGAccounts(ctx, userUID)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, ErrNoAccount
	}
	return accounts[0], nil
}

// Create stores a new rule and refreshes the mirror.
func (s *Service) Create(ctx context.Context, userUID string, req models.DummyReply) (int, error) {
	const op = "replies.Create"

	account, err := s.accountFor(ctx, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.repo.CreateReply(ctx, models.Reply{
		IGAccountID:     account.ID,
		Keyword:         req.Keyword,
		Reply:           req.Reply,
		Buttons:         req.Buttons,
		InstagramPostID: req.InstagramPostID,
		MatchType:       req.MatchType,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.refreshMirror(ctx, account.ID)
	return id, nil
}

// List returns every rule of the caller's account.
func (s *Service) List(ctx context.Context, userUID string) ([]*models.Reply, error) {
	const op = "replies.List"
	account, err := s.accountFor(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := s.repo.ListReplies(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// Recent returns the newest rules first. A non-positive limit falls
// back to DefaultRecentLimit.
func (s *Service) Recent(ctx context.Context, userUID string, limit int) ([]*models.Reply, error) {
	const op = "replies.Recent"
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	account, err := s.accountFor(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := s.repo.ListRecentReplies(ctx, account.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// Update replaces a rule's fields and refreshes the mirror. Returns
// ErrRuleNotFound when the rule does not belong to the caller.
func (s *Service) Update(ctx context.Context, userUID string, id int, req models.DummyReply) error {
	const op = "replies.Update"

	account, err := s.accountFor(ctx, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := s.repo.UpdateReply(ctx, models.Reply{
		ID:              id,
		IGAccountID:     account.ID,
		Keyword:         req.Keyword,
		Reply:           req.Reply,
		Buttons:         req.Buttons,
		InstagramPostID: req.InstagramPostID,
		MatchType:       req.MatchType,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return ErrRuleNotFound
	}
	s.refreshMirror(ctx, account.ID)
	return nil
}

// Remove deletes a rule and refreshes the mirror. Returns
// ErrRuleNotFound when the rule does not belong to the caller.
func (s *Service) Remove(ctx context.Context, userUID string, id int) error {
	const op = "replies.Remove"

	account, err := s.accountFor(ctx, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := s.repo.RemoveReply(ctx, id, account.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return ErrRuleNotFound
	}
	s.refreshMirror(ctx, account.ID)
	return nil
}

// refreshMirror rebuilds the reply-store mirror from storage. A mirror
// failure is logged, the database remains the source of truth.
func (s *Service) refreshMirror(ctx context.Context, igAccountID int) {
	if s.store == nil {
		return
	}
	rules, err := s.repo.ListReplies(ctx, igAccountID)
	if err != nil {
		s.log.Error("failed to reload rules for mirror", sl.Err(err))
		return
	}
	flat := make([]models.Reply, 0, len(rules))
	for _, r := range rules {
		flat = append(flat, *r)
	}
	if err := s.store.SetReplies(ctx, igAccountID, flat); err != nil {
		s.log.Error("failed to mirror rules", sl.Err(err))
	}
}
