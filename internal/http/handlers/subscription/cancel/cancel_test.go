package cancel

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/replyflow/replyflow/internal/http/middlewarectx"
	"github.com/replyflow/replyflow/internal/models"
	"github.com/replyflow/replyflow/internal/services/lifecycle"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) CancelAtPeriodEnd(ctx context.Context, userUID string) error {
	return m.Called(ctx, userUID).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestCancelHandler_ServeHTTP(t *testing.T) {
	serviceMock := new(ServiceMock)
	handler := New(newNoopLogger(), serviceMock)

	tests := []struct {
		name           string
		session        *models.Session
		setupMock      func()
		wantStatusCode int
		wantError      string
		wantStatus     string
	}{
		{
			name:    "successful cancel",
			session: &models.Session{UserUID: "uid-1", Email: "user@example.com"},
			setupMock: func() {
				serviceMock.On("CancelAtPeriodEnd", mock.Anything, "uid-1").
					Return(nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "no session",
			session:        nil,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "unauthorized",
			wantStatus:     "Error",
		},
		{
			name:    "no subscription",
			session: &models.Session{UserUID: "uid-1"},
			setupMock: func() {
				serviceMock.On("CancelAtPeriodEnd", mock.Anything, "uid-1").
					Return(lifecycle.ErrNoSubscription).Once()
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      "subscription not found",
			wantStatus:     "Error",
		},
		{
			name:    "provider failure",
			session: &models.Session{UserUID: "uid-1"},
			setupMock: func() {
				serviceMock.On("CancelAtPeriodEnd", mock.Anything, "uid-1").
					Return(lifecycle.ErrProvider).Once()
			},
			wantStatusCode: http.StatusBadGateway,
			wantError:      "billing provider unavailable",
			wantStatus:     "Error",
		},
		{
			name:    "storage failure",
			session: &models.Session{UserUID: "uid-1"},
			setupMock: func() {
				serviceMock.On("CancelAtPeriodEnd", mock.Anything, "uid-1").
					Return(errors.New("db down")).Once()
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "could not cancel subscription",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock.ExpectedCalls = nil
			serviceMock.Calls = nil
			if tt.setupMock != nil {
				tt.setupMock()
			}

			req := httptest.NewRequest(http.MethodPost, "/subscription/cancel", nil)
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			if tt.session != nil {
				ctx = context.WithValue(ctx, middlewarectx.SessionKey, tt.session)
			}
			req = req.WithContext(ctx)

			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err := json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				errStr, ok := got["error"].(string)
				assert.True(t, ok)
				assert.Equal(t, tt.wantError, errStr)
			} else {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, "CANCELING", data["status"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
