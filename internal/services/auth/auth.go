// Package auth implements registration and login.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/replyflow/replyflow/internal/lib/jwt"
	"github.com/replyflow/replyflow/internal/lib/password"
	"github.com/replyflow/replyflow/internal/models"
	"github.com/replyflow/replyflow/internal/storage/repository"
)

// ErrEmailTaken is returned when registration hits an existing e-mail.
var ErrEmailTaken = errors.New("email already registered")

// ErrInvalidCredentials is returned on a failed login.
var ErrInvalidCredentials = errors.New("invalid email or password")

// UserRepository is the storage surface the auth service needs.
type UserRepository interface {
	RegisterUser(ctx context.Context, user models.User) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Service registers users and issues session tokens.
type Service struct {
	repo  UserRepository
	maker jwt.Maker
	log   *slog.Logger
}

// New creates the auth service.
func New(repo UserRepository, maker jwt.Maker, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		maker: maker,
		log:   log,
	}
}

// Register hashes the password and creates a user on a fresh trial.
// Returns ErrEmailTaken when the e-mail already exists; no record is
// created in that case.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (string, error) {
	const op = "auth.Register"

	hash, err := password.GetHash(req.Password)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now()
	uid, err := s.repo.RegisterUser(ctx, models.User{
		Email:          req.Email,
		PasswordHash:   hash,
		MembershipType: models.MembershipTrial,
		TrialStartDate: &now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return "", ErrEmailTaken
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// Login verifies credentials and returns a signed session token.
// Missing user and wrong password collapse into the same error so the
// response does not reveal which e-mails exist.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (string, error) {
	const op = "auth.Login"

	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, req.Password); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.maker.GenerateToken(user.UID, user.Email)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}
