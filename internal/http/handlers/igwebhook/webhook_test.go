package igwebhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/replyflow/replyflow/internal/instagram"
)

const (
	testAppSecret   = "app-secret"
	testVerifyToken = "verify-token"
)

type EngineMock struct {
	mock.Mock
}

func (m *EngineMock) HandleMessage(ctx context.Context, igUserID string, ev instagram.MessagingEvent) error {
	return m.Called(ctx, igUserID, ev).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testAppSecret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func messagingBody(t *testing.T, texts ...string) []byte {
	t.Helper()
	entry := instagram.WebhookEntry{ID: "ig-1"}
	for i, text := range texts {
		ev := instagram.MessagingEvent{}
		ev.Sender.ID = "customer-9"
		ev.Message.MID = "mid-" + string(rune('a'+i))
		ev.Message.Text = text
		entry.Messaging = append(entry.Messaging, ev)
	}
	body, err := json.Marshal(instagram.WebhookPayload{
		Object: "instagram",
		Entry:  []instagram.WebhookEntry{entry},
	})
	require.NoError(t, err)
	return body
}

func TestVerify(t *testing.T) {
	handler := New(newNoopLogger(), new(EngineMock), testAppSecret, testVerifyToken)

	tests := []struct {
		name           string
		target         string
		wantStatusCode int
		wantBody       string
	}{
		{
			name:           "valid handshake echoes challenge",
			target:         "/webhooks/instagram?hub.mode=subscribe&hub.verify_token=verify-token&hub.challenge=12345",
			wantStatusCode: http.StatusOK,
			wantBody:       "12345",
		},
		{
			name:           "wrong token",
			target:         "/webhooks/instagram?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345",
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "wrong mode",
			target:         "/webhooks/instagram?hub.mode=unsubscribe&hub.verify_token=verify-token&hub.challenge=12345",
			wantStatusCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rec := httptest.NewRecorder()

			handler.Verify(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestReceive_DispatchesMessages(t *testing.T) {
	engine := new(EngineMock)
	engine.On("HandleMessage", mock.Anything, "ig-1", mock.MatchedBy(func(ev instagram.MessagingEvent) bool {
		return ev.Message.Text == "price" && ev.Sender.ID == "customer-9"
	})).Return(nil).Once()

	handler := New(newNoopLogger(), engine, testAppSecret, testVerifyToken)

	// The empty-text event (a delivery receipt) must be skipped.
	body := messagingBody(t, "price", "")
	req := httptest.NewRequest(http.MethodPost, "/webhooks/instagram", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, sign(body))

	rec := httptest.NewRecorder()
	handler.Receive(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	engine.AssertExpectations(t)
	engine.AssertNumberOfCalls(t, "HandleMessage", 1)
}

func TestReceive_RejectsBadSignature(t *testing.T) {
	engine := new(EngineMock)
	handler := New(newNoopLogger(), engine, testAppSecret, testVerifyToken)

	body := messagingBody(t, "price")
	req := httptest.NewRequest(http.MethodPost, "/webhooks/instagram", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, "sha256=deadbeef")

	rec := httptest.NewRecorder()
	handler.Receive(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	engine.AssertNotCalled(t, "HandleMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestReceive_AcknowledgesDespiteEngineFailure(t *testing.T) {
	engine := new(EngineMock)
	engine.On("HandleMessage", mock.Anything, "ig-1", mock.Anything).
		Return(errors.New("graph api 500")).Once()

	handler := New(newNoopLogger(), engine, testAppSecret, testVerifyToken)

	body := messagingBody(t, "price")
	req := httptest.NewRequest(http.MethodPost, "/webhooks/instagram", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, sign(body))

	rec := httptest.NewRecorder()
	handler.Receive(rec, req)

	// Meta retries the whole batch on a non-200, so failures are
	// logged and the delivery is still acknowledged.
	assert.Equal(t, http.StatusOK, rec.Code)
	engine.AssertExpectations(t)
}
