package replyengine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/replyflow/replyflow/internal/instagram"
	"github.com/replyflow/replyflow/internal/models"
	"github.com/replyflow/replyflow/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetIGAccountByIGUserID(ctx context.Context, igUserID string) (*models.IGAccount, error) {
	args := m.Called(ctx, igUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IGAccount), args.Error(1)
}

func (m *RepoMock) ListReplies(ctx context.Context, igAccountID int) ([]*models.Reply, error) {
	args := m.Called(ctx, igAccountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Reply), args.Error(1)
}

func (m *RepoMock) AppendExecutionLog(ctx context.Context, userUID, message string) error {
	return m.Called(ctx, userUID, message).Error(0)
}

type MembershipMock struct{ mock.Mock }

func (m *MembershipMock) EffectiveMembership(ctx context.Context, userUID string) (string, error) {
	args := m.Called(ctx, userUID)
	return args.String(0), args.Error(1)
}

type SenderMock struct{ mock.Mock }

func (m *SenderMock) SendReply(ctx context.Context, accessToken string, msg instagram.SendMessageRequest) error {
	return m.Called(ctx, accessToken, msg).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func inboundMessage(text string) instagram.MessagingEvent {
	ev := instagram.MessagingEvent{}
	ev.Sender.ID = "customer-9"
	ev.Message.Text = text
	return ev
}

func connectedAccount() *models.IGAccount {
	return &models.IGAccount{
		ID:          7,
		UserUID:     "user-1",
		IGUserID:    "ig-1",
		AccessToken: "token",
	}
}

func TestHandleMessage_SendsMatchingReply(t *testing.T) {
	repo := new(RepoMock)
	membership := new(MembershipMock)
	sender := new(SenderMock)

	repo.On("GetIGAccountByIGUserID", mock.Anything, "ig-1").
		Return(connectedAccount(), nil).Once()
	membership.On("EffectiveMembership", mock.Anything, "user-1").
		Return(models.MembershipTrial, nil).Once()
	repo.On("ListReplies", mock.Anything, 7).Return([]*models.Reply{
		{ID: 1, Keyword: "price", MatchType: models.MatchExact, Reply: "100 EUR",
			Buttons: []models.Button{{Title: "Shop", URL: "https://example.com"}}},
	}, nil).Once()
	sender.On("SendReply", mock.Anything, "token", mock.MatchedBy(func(msg instagram.SendMessageRequest) bool {
		return msg.Recipient.ID == "customer-9" &&
			msg.Message.Text == "100 EUR" &&
			len(msg.Message.Buttons) == 1
	})).Return(nil).Once()
	repo.On("AppendExecutionLog", mock.Anything, "user-1", mock.Anything).
		Return(nil).Once()

	engine := New(repo, membership, sender, newNoopLogger())

	err := engine.HandleMessage(context.Background(), "ig-1", inboundMessage("price"))
	require.NoError(t, err)

	repo.AssertExpectations(t)
	membership.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestHandleMessage_UnconnectedAccountIgnored(t *testing.T) {
	repo := new(RepoMock)
	sender := new(SenderMock)

	repo.On("GetIGAccountByIGUserID", mock.Anything, "ig-unknown").
		Return(nil, repository.ErrNotFound).Once()

	engine := New(repo, new(MembershipMock), sender, newNoopLogger())

	err := engine.HandleMessage(context.Background(), "ig-unknown", inboundMessage("price"))
	require.NoError(t, err)
	sender.AssertNotCalled(t, "SendReply", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleMessage_FreeTierGetsNoAutomation(t *testing.T) {
	repo := new(RepoMock)
	membership := new(MembershipMock)
	sender := new(SenderMock)

	repo.On("GetIGAccountByIGUserID", mock.Anything, "ig-1").
		Return(connectedAccount(), nil).Once()
	membership.On("EffectiveMembership", mock.Anything, "user-1").
		Return(models.MembershipFree, nil).Once()

	engine := New(repo, membership, sender, newNoopLogger())

	err := engine.HandleMessage(context.Background(), "ig-1", inboundMessage("price"))
	require.NoError(t, err)

	repo.AssertNotCalled(t, "ListReplies", mock.Anything, mock.Anything)
	sender.AssertNotCalled(t, "SendReply", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleMessage_NoMatchIsSilent(t *testing.T) {
	repo := new(RepoMock)
	membership := new(MembershipMock)
	sender := new(SenderMock)

	repo.On("GetIGAccountByIGUserID", mock.Anything, "ig-1").
		Return(connectedAccount(), nil).Once()
	membership.On("EffectiveMembership", mock.Anything, "user-1").
		Return(models.MembershipPremium, nil).Once()
	repo.On("ListReplies", mock.Anything, 7).Return([]*models.Reply{
		{ID: 1, Keyword: "price", MatchType: models.MatchExact, Reply: "100 EUR"},
	}, nil).Once()

	engine := New(repo, membership, sender, newNoopLogger())

	err := engine.HandleMessage(context.Background(), "ig-1", inboundMessage("totally unrelated"))
	require.NoError(t, err)
	sender.AssertNotCalled(t, "SendReply", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleMessage_SendFailureIsLoggedAndReturned(t *testing.T) {
	repo := new(RepoMock)
	membership := new(MembershipMock)
	sender := new(SenderMock)

	repo.On("GetIGAccountByIGUserID", mock.Anything, "ig-1").
		Return(connectedAccount(), nil).Once()
	membership.On("EffectiveMembership", mock.Anything, "user-1").
		Return(models.MembershipPremium, nil).Once()
	repo.On("ListReplies", mock.Anything, 7).Return([]*models.Reply{
		{ID: 1, Keyword: "price", MatchType: models.MatchExact, Reply: "100 EUR"},
	}, nil).Once()
	sender.On("SendReply", mock.Anything, "token", mock.Anything).
		Return(errors.New("graph api 500")).Once()
	repo.On("AppendExecutionLog", mock.Anything, "user-1", mock.Anything).
		Return(nil).Once()

	engine := New(repo, membership, sender, newNoopLogger())

	err := engine.HandleMessage(context.Background(), "ig-1", inboundMessage("price"))
	require.Error(t, err)
	repo.AssertExpectations(t)
}
