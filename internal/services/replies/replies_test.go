package replies

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/replyflow/replyflow/internal/models"
	"github.com/replyflow/replyflow/internal/replystore"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) ListIGAccounts(ctx context.Context, userUID string) ([]*models.IGAccount, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.IGAccount), args.Error(1)
}

func (m *RepoMock) CreateReply(ctx context.Context, reply models.Reply) (int, error) {
	args := m.Called(ctx, reply)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ListReplies(ctx context.Context, igAccountID int) ([]*models.Reply, error) {
	args := m.Called(ctx, igAccountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Reply), args.Error(1)
}

func (m *RepoMock) ListRecentReplies(ctx context.Context, igAccountID, limit int) ([]*models.Reply, error) {
	args := m.Called(ctx, igAccountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Reply), args.Error(1)
}

func (m *RepoMock) UpdateReply(ctx context.Context, reply models.Reply) (int, error) {
	args := m.Called(ctx, reply)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) RemoveReply(ctx context.Context, id, igAccountID int) (int, error) {
	args := m.Called(ctx, id, igAccountID)
	return args.Int(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func oneAccount() []*models.IGAccount {
	return []*models.IGAccount{{ID: 7, UserUID: "uid-1", IGUserID: "ig-1"}}
}

func TestCreate_RefreshesMirror(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListIGAccounts", mock.Anything, "uid-1").Return(oneAccount(), nil).Once()
	repo.On("CreateReply", mock.Anything, mock.MatchedBy(func(r models.Reply) bool {
		return r.IGAccountID == 7 && r.Keyword == "price"
	})).Return(42, nil).Once()
	repo.On("ListReplies", mock.Anything, 7).Return([]*models.Reply{
		{ID: 42, IGAccountID: 7, Keyword: "price", Reply: "100 EUR", MatchType: models.MatchExact},
	}, nil).Once()

	store := replystore.New(replystore.NewMemoryAdapter())
	service := New(repo, store, newNoopLogger())

	id, err := service.Create(context.Background(), "uid-1", models.DummyReply{
		Keyword:   "price",
		Reply:     "100 EUR",
		MatchType: models.MatchExact,
	})
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	mirrored, err := store.Replies(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, mirrored, 1)
	assert.Equal(t, "price", mirrored[0].Keyword)
	repo.AssertExpectations(t)
}

func TestCreate_NoAccount(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListIGAccounts", mock.Anything, "uid-1").
		Return([]*models.IGAccount{}, nil).Once()

	service := New(repo, replystore.New(replystore.NewMemoryAdapter()), newNoopLogger())

	_, err := service.Create(context.Background(), "uid-1", models.DummyReply{
		Keyword:   "price",
		Reply:     "100 EUR",
		MatchType: models.MatchExact,
	})
	require.ErrorIs(t, err, ErrNoAccount)
	repo.AssertNotCalled(t, "CreateReply", mock.Anything, mock.Anything)
}

func TestRecent_DefaultsLimit(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListIGAccounts", mock.Anything, "uid-1").Return(oneAccount(), nil).Once()
	repo.On("ListRecentReplies", mock.Anything, 7, DefaultRecentLimit).
		Return([]*models.Reply{{ID: 2}, {ID: 1}}, nil).Once()

	service := New(repo, nil, newNoopLogger())

	got, err := service.Recent(context.Background(), "uid-1", 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	repo.AssertExpectations(t)
}

func TestUpdate_ForeignRuleIsNotFound(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListIGAccounts", mock.Anything, "uid-1").Return(oneAccount(), nil).Once()
	// Zero rows means the rule exists under another account or not at
	// all; the two cases are indistinguishable on purpose.
	repo.On("UpdateReply", mock.Anything, mock.Anything).Return(0, nil).Once()

	service := New(repo, nil, newNoopLogger())

	err := service.Update(context.Background(), "uid-1", 99, models.DummyReply{
		Keyword:   "price",
		Reply:     "100 EUR",
		MatchType: models.MatchExact,
	})
	require.ErrorIs(t, err, ErrRuleNotFound)
}

func TestRemove_RefreshesMirror(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListIGAccounts", mock.Anything, "uid-1").Return(oneAccount(), nil).Once()
	repo.On("RemoveReply", mock.Anything, 42, 7).Return(1, nil).Once()
	repo.On("ListReplies", mock.Anything, 7).Return([]*models.Reply{}, nil).Once()

	store := replystore.New(replystore.NewMemoryAdapter())
	require.NoError(t, store.SetReplies(context.Background(), 7, []models.Reply{{ID: 42}}))

	service := New(repo, store, newNoopLogger())

	require.NoError(t, service.Remove(context.Background(), "uid-1", 42))

	mirrored, err := store.Replies(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, mirrored)
	repo.AssertExpectations(t)
}

func TestCreate_MirrorFailureDoesNotFailCreate(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListIGAccounts", mock.Anything, "uid-1").Return(oneAccount(), nil).Once()
	repo.On("CreateReply", mock.Anything, mock.Anything).Return(42, nil).Once()
	repo.On("ListReplies", mock.Anything, 7).
		Return(nil, errors.New("db down")).Once()

	store := replystore.New(replystore.NewMemoryAdapter())
	service := New(repo, store, newNoopLogger())

	id, err := service.Create(context.Background(), "uid-1", models.DummyReply{
		Keyword:   "price",
		Reply:     "100 EUR",
		MatchType: models.MatchExact,
	})
	require.NoError(t, err)
	assert.Equal(t, 42, id)
}
