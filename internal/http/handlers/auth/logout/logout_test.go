package logout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type SessionManagerMock struct {
	mock.Mock
}

func (m *SessionManagerMock) Terminate(ctx context.Context, w http.ResponseWriter) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLogoutHandler_ServeHTTP(t *testing.T) {
	t.Run("session terminated", func(t *testing.T) {
		sessionsMock := new(SessionManagerMock)
		sessionsMock.On("Terminate", mock.Anything, mock.Anything).Return(nil).Once()
		handler := New(newNoopLogger(), sessionsMock)

		r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, r)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"success":true`)
		sessionsMock.AssertExpectations(t)
	})

	t.Run("terminate failure gives 500", func(t *testing.T) {
		sessionsMock := new(SessionManagerMock)
		sessionsMock.On("Terminate", mock.Anything, mock.Anything).
			Return(errors.New("redis unavailable")).Once()
		handler := New(newNoopLogger(), sessionsMock)

		r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, r)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "internal service error")
		sessionsMock.AssertExpectations(t)
	})
}
