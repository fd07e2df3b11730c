package billingwebhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/replyflow/replyflow/internal/billing"
	"github.com/replyflow/replyflow/internal/services/lifecycle"
)

const testSecret = "whsec_test"

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) ApplyEvent(ctx context.Context, event lifecycle.Event) error {
	return m.Called(ctx, event).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func eventBody(t *testing.T, eventType string) []byte {
	t.Helper()
	body, err := json.Marshal(billing.Event{
		ID:   "evt_1",
		Type: eventType,
		Data: billing.EventData{
			Object: billing.Subscription{
				ID:               "sub_123",
				Status:           "active",
				CurrentPeriodEnd: time.Now().Add(30 * 24 * time.Hour).Unix(),
				Metadata:         map[string]string{"user_uid": "uid-1"},
			},
		},
	})
	require.NoError(t, err)
	return body
}

func TestWebhookHandler_AppliesSignedEvent(t *testing.T) {
	serviceMock := new(ServiceMock)
	serviceMock.On("ApplyEvent", mock.Anything, mock.MatchedBy(func(ev lifecycle.Event) bool {
		created, ok := ev.(lifecycle.SubscriptionCreated)
		return ok && created.SubscriptionID == "sub_123" && created.UserUID == "uid-1"
	})).Return(nil).Once()

	handler := New(newNoopLogger(), serviceMock, testSecret)

	body := eventBody(t, billing.EventSubscriptionCreated)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/billing", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, billing.Sign(body, testSecret, time.Now()))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, true, got["received"])
	serviceMock.AssertExpectations(t)
}

func TestWebhookHandler_RejectsBadSignature(t *testing.T) {
	tests := []struct {
		name      string
		signature func(body []byte) string
	}{
		{
			name:      "missing header",
			signature: func([]byte) string { return "" },
		},
		{
			name: "wrong secret",
			signature: func(body []byte) string {
				return billing.Sign(body, "whsec_other", time.Now())
			},
		},
		{
			name: "stale timestamp",
			signature: func(body []byte) string {
				return billing.Sign(body, testSecret, time.Now().Add(-time.Hour))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			handler := New(newNoopLogger(), serviceMock, testSecret)

			body := eventBody(t, billing.EventSubscriptionDeleted)
			req := httptest.NewRequest(http.MethodPost, "/webhooks/billing", bytes.NewReader(body))
			if sig := tt.signature(body); sig != "" {
				req.Header.Set(SignatureHeader, sig)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			// No state may change on an unverified delivery.
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			serviceMock.AssertNotCalled(t, "ApplyEvent", mock.Anything, mock.Anything)
		})
	}
}

func TestWebhookHandler_IgnoresUnknownEventType(t *testing.T) {
	serviceMock := new(ServiceMock)
	handler := New(newNoopLogger(), serviceMock, testSecret)

	body := eventBody(t, "invoice.paid")
	req := httptest.NewRequest(http.MethodPost, "/webhooks/billing", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, billing.Sign(body, testSecret, time.Now()))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, true, got["received"])
	serviceMock.AssertNotCalled(t, "ApplyEvent", mock.Anything, mock.Anything)
}

func TestWebhookHandler_MalformedEventIsRejected(t *testing.T) {
	serviceMock := new(ServiceMock)
	handler := New(newNoopLogger(), serviceMock, testSecret)

	// created event without user_uid metadata cannot be attributed.
	body, err := json.Marshal(billing.Event{
		ID:   "evt_2",
		Type: billing.EventSubscriptionCreated,
		Data: billing.EventData{Object: billing.Subscription{ID: "sub_123"}},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/billing", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, billing.Sign(body, testSecret, time.Now()))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	serviceMock.AssertNotCalled(t, "ApplyEvent", mock.Anything, mock.Anything)
}
