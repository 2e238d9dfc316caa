package notifications

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-admin/internal/viewmodel/feedback"
	notificationsvm "github.com/magabrotheeeer/subscription-admin/internal/viewmodel/notifications"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Page(ctx context.Context) (notificationsvm.Page, error) {
	args := m.Called(ctx)
	return args.Get(0).(notificationsvm.Page), args.Error(1)
}

func (m *MockService) ReadAll(ctx context.Context) feedback.Outcome {
	return m.Called(ctx).Get(0).(feedback.Outcome)
}

func (m *MockService) Delete(ctx context.Context, id string) feedback.Outcome {
	return m.Called(ctx, id).Get(0).(feedback.Outcome)
}

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestHandler_List(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "список уведомлений",
			setupMock: func(m *MockService) {
				m.On("Page", mock.Anything).Return(notificationsvm.Page{Total: 3, TotalLabel: "3 notifications", Unread: 2}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"totalLabel":"3 notifications"`,
		},
		{
			name: "ошибка загрузки",
			setupMock: func(m *MockService) {
				m.On("Page", mock.Anything).Return(notificationsvm.Page{}, errors.New("network down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"Failed to load notifications"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)
			handler := New(logger, mockService)

			w := httptest.NewRecorder()
			handler.List(w, httptest.NewRequest(http.MethodGet, "/api/notifications", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_ReadAll(t *testing.T) {
	mockService := new(MockService)
	mockService.On("ReadAll", mock.Anything).Return(feedback.Outcome{
		OK:         true,
		Toasts:     []feedback.Toast{{Level: feedback.LevelSuccess, Message: "All notifications marked as read"}},
		CloseModal: true,
		Refetched:  []string{"notifications"},
	})
	handler := New(logger, mockService)

	w := httptest.NewRecorder()
	handler.ReadAll(w, httptest.NewRequest(http.MethodPost, "/api/notifications/read-all", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"refetched":["notifications"]`)
	mockService.AssertExpectations(t)
}

func TestHandler_Delete(t *testing.T) {
	mockService := new(MockService)
	mockService.On("Delete", mock.Anything, "abc123").Return(feedback.Outcome{OK: true, CloseModal: true})
	handler := New(logger, mockService)

	req := httptest.NewRequest(http.MethodDelete, "/api/notifications/abc123", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "abc123")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	w := httptest.NewRecorder()
	handler.Delete(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}
