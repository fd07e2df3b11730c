// Package igaccounts implements the Instagram connection flow.
package igaccounts

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/replyflow/replyflow/internal/instagram"
	"github.com/replyflow/replyflow/internal/models"
)

// Repository is the storage surface the service needs.
type Repository interface {
	CreateIGAccount(ctx context.Context, acc models.IGAccount) (int, error)
	ListIGAccounts(ctx context.Context, userUID string) ([]*models.IGAccount, error)
}

// Graph is the Graph API surface the service needs.
type Graph interface {
	ExchangeCode(ctx context.Context, code, redirectURI string) (*instagram.TokenResponse, error)
	GetAccount(ctx context.Context, accessToken string) (*instagram.Account, error)
}

// Service connects and lists Instagram accounts.
type Service struct {
	repo  Repository
	graph Graph
	log   *slog.Logger
}

// New creates the service.
func New(repo Repository, graph Graph, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		graph: graph,
		log:   log,
	}
}

// Connect exchanges the OAuth code, resolves the account identity and
// persists the connection. Reconnecting refreshes the stored token.
func (s *Service) Connect(ctx context.Context, userUID, code, redirectURI string) (*models.IGAccount, error) {
	const op = "igaccounts.Connect"

	token, err := s.graph.ExchangeCode(ctx, code, redirectURI)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	account, err := s.graph.GetAccount(ctx, token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	acc := models.IGAccount{
		UserUID:     userUID,
		IGUserID:    account.ID,
		Username:    account.Username,
		AccessToken: token.AccessToken,
	}
	id, err := s.repo.CreateIGAccount(ctx, acc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	acc.ID = id
	return &acc, nil
}

// List returns the caller's connected accounts.
func (s *Service) List(ctx context.Context, userUID string) ([]*models.IGAccount, error) {
	const op = "igaccounts.List"
	result, err := s.repo.ListIGAccounts(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
