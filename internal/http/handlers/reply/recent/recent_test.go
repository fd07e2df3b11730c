package recent

import (
	"context"
	"encoding/json"
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
	"github.com/replyflow/replyflow/internal/services/replies"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Recent(ctx context.Context, userUID string, limit int) ([]*models.Reply, error) {
	args := m.Called(ctx, userUID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Reply), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRecentHandler_ServeHTTP(t *testing.T) {
	serviceMock := new(ServiceMock)
	handler := New(newNoopLogger(), serviceMock)

	tests := []struct {
		name           string
		target         string
		setupMock      func()
		wantStatusCode int
		wantCount      int
		wantError      string
		wantStatus     string
	}{
		{
			name:   "default limit passes zero through",
			target: "/replies/recent",
			setupMock: func() {
				serviceMock.On("Recent", mock.Anything, "uid-1", 0).
					Return([]*models.Reply{
						{ID: 2, Keyword: "ship"},
						{ID: 1, Keyword: "price"},
					}, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantCount:      2,
			wantStatus:     "OK",
		},
		{
			name:   "explicit limit",
			target: "/replies/recent?limit=1",
			setupMock: func() {
				serviceMock.On("Recent", mock.Anything, "uid-1", 1).
					Return([]*models.Reply{{ID: 2, Keyword: "ship"}}, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantCount:      1,
			wantStatus:     "OK",
		},
		{
			name:           "negative limit",
			target:         "/replies/recent?limit=-1",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid limit",
			wantStatus:     "Error",
		},
		{
			name:           "non-numeric limit",
			target:         "/replies/recent?limit=abc",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid limit",
			wantStatus:     "Error",
		},
		{
			name:   "no connected account yields empty list",
			target: "/replies/recent",
			setupMock: func() {
				serviceMock.On("Recent", mock.Anything, "uid-1", 0).
					Return(nil, replies.ErrNoAccount).Once()
			},
			wantStatusCode: http.StatusOK,
			wantCount:      0,
			wantStatus:     "OK",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock.ExpectedCalls = nil
			serviceMock.Calls = nil
			if tt.setupMock != nil {
				tt.setupMock()
			}

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			ctx = context.WithValue(ctx, middlewarectx.SessionKey, &models.Session{UserUID: "uid-1"})
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
				return
			}

			if tt.wantCount > 0 {
				data, ok := got["data"].([]any)
				assert.True(t, ok)
				assert.Len(t, data, tt.wantCount)
			}

			serviceMock.AssertExpectations(t)
		})
	}
}

func TestRecentHandler_NoSession(t *testing.T) {
	handler := New(newNoopLogger(), new(ServiceMock))

	req := httptest.NewRequest(http.MethodGet, "/replies/recent", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
