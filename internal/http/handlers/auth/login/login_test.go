package login

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/clinic-gate/internal/services/auth"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Login(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

type SessionManagerMock struct {
	mock.Mock
}

func (m *SessionManagerMock) Establish(ctx context.Context, w http.ResponseWriter, role, email string, remember bool) error {
	args := m.Called(ctx, w, role, email, remember)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		mockRole       string
		mockErr        error
		wantStatusCode int
		wantError      string
		wantEstablish  bool
	}{
		{
			name:           "valid login",
			requestBody:    Request{Email: "nurse@clinic.local", Password: "password123"},
			mockRole:       "user",
			wantStatusCode: http.StatusOK,
			wantEstablish:  true,
		},
		{
			name:           "remember flag forwarded",
			requestBody:    Request{Email: "nurse@clinic.local", Password: "password123", Remember: true},
			mockRole:       "user",
			wantStatusCode: http.StatusOK,
			wantEstablish:  true,
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
		{
			name:           "validation error - missing password",
			requestBody:    Request{Email: "nurse@clinic.local"},
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name:           "wrong password",
			requestBody:    Request{Email: "nurse@clinic.local", Password: "wrongpass"},
			mockErr:        auth.ErrInvalidCredentials,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "invalid credentials",
		},
		{
			name:           "not whitelisted gives explicit 403",
			requestBody:    Request{Email: "nurse@clinic.local", Password: "password123"},
			mockErr:        auth.ErrNotWhitelisted,
			wantStatusCode: http.StatusForbidden,
			wantError:      "email is not whitelisted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock := new(AuthServiceMock)
			sessionsMock := new(SessionManagerMock)
			handler := New(newNoopLogger(), authMock, sessionsMock)

			if req, ok := tt.requestBody.(Request); ok && req.Password != "" {
				authMock.On("Login", mock.Anything, req.Email, req.Password).
					Return(tt.mockRole, tt.mockErr).Once()
			}
			if tt.wantEstablish {
				req := tt.requestBody.(Request)
				sessionsMock.On("Establish", mock.Anything, mock.Anything, tt.mockRole, req.Email, req.Remember).
					Return(nil).Once()
			}

			var body bytes.Buffer
			switch v := tt.requestBody.(type) {
			case string:
				body.WriteString(v)
			default:
				assert.NoError(t, json.NewEncoder(&body).Encode(v))
			}

			r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", &body)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, r)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			if tt.wantError != "" {
				assert.Contains(t, rec.Body.String(), tt.wantError)
			}
			if tt.wantEstablish {
				assert.Contains(t, rec.Body.String(), `"success":true`)
			}
			authMock.AssertExpectations(t)
			sessionsMock.AssertExpectations(t)
		})
	}
}
