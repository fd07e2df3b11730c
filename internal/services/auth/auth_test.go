package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/replyflow/replyflow/internal/lib/jwt"
	"github.com/replyflow/replyflow/internal/lib/password"
	"github.com/replyflow/replyflow/internal/models"
	"github.com/replyflow/replyflow/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *RepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newTestMaker() jwt.Maker {
	return jwt.NewJWTMaker("test-secret", time.Hour)
}

func TestRegister(t *testing.T) {
	repo := new(RepoMock)
	repo.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Email == "new@example.com" &&
			u.MembershipType == models.MembershipTrial &&
			u.TrialStartDate != nil &&
			password.CompareHash(u.PasswordHash, "s3cret") == nil
	})).Return("uid-1", nil).Once()

	service := New(repo, newTestMaker(), newNoopLogger())

	uid, err := service.Register(context.Background(), models.RegisterRequest{
		Email:    "new@example.com",
		Password: "s3cret",
	})
	require.NoError(t, err)
	assert.Equal(t, "uid-1", uid)
	repo.AssertExpectations(t)
}

func TestRegister_EmailTaken(t *testing.T) {
	repo := new(RepoMock)
	repo.On("RegisterUser", mock.Anything, mock.Anything).
		Return("", repository.ErrAlreadyExists).Once()

	service := New(repo, newTestMaker(), newNoopLogger())

	_, err := service.Register(context.Background(), models.RegisterRequest{
		Email:    "dup@example.com",
		Password: "s3cret",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	hash, err := password.GetHash("s3cret")
	require.NoError(t, err)

	repo := new(RepoMock)
	repo.On("GetUserByEmail", mock.Anything, "user@example.com").
		Return(&models.User{
			UID:          "uid-1",
			Email:        "user@example.com",
			PasswordHash: hash,
		}, nil).Once()

	maker := newTestMaker()
	service := New(repo, maker, newNoopLogger())

	token, err := service.Login(context.Background(), models.LoginRequest{
		Email:    "user@example.com",
		Password: "s3cret",
	})
	require.NoError(t, err)

	claims, err := maker.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", claims.UserUID)
	assert.Equal(t, "user@example.com", claims.Email)
}

func TestLogin_BadCredentials(t *testing.T) {
	hash, err := password.GetHash("s3cret")
	require.NoError(t, err)

	tests := []struct {
		name      string
		setupMock func(m *RepoMock)
		password  string
	}{
		{
			name: "unknown email",
			setupMock: func(m *RepoMock) {
				m.On("GetUserByEmail", mock.Anything, mock.Anything).
					Return(nil, repository.ErrNotFound).Once()
			},
			password: "s3cret",
		},
		{
			name: "wrong password",
			setupMock: func(m *RepoMock) {
				m.On("GetUserByEmail", mock.Anything, mock.Anything).
					Return(&models.User{UID: "uid-1", PasswordHash: hash}, nil).Once()
			},
			password: "not-it",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMock(repo)

			service := New(repo, newTestMaker(), newNoopLogger())

			_, err := service.Login(context.Background(), models.LoginRequest{
				Email:    "user@example.com",
				Password: tt.password,
			})
			// Both cases collapse into one error so responses do not
			// reveal which e-mails exist.
			require.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}
