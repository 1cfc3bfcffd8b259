package middlewarectx_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/clinic-gate/internal/http/middlewarectx"
	"github.com/magabrotheeeer/clinic-gate/internal/lib/jwt"
	"github.com/magabrotheeeer/clinic-gate/internal/models"
	"github.com/magabrotheeeer/clinic-gate/internal/ratelimit"
	"github.com/magabrotheeeer/clinic-gate/internal/session"
)

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestSessionMiddleware(t *testing.T) {
	maker := jwt.NewMaker("test-secret")
	logger := newNoopLogger()
	adminEmail := "admin@clinic.local"

	userToken, err := maker.Generate(models.RoleUser, time.Hour)
	require.NoError(t, err)
	adminToken, err := maker.Generate(models.RoleAdmin, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name           string
		sessionValue   string
		emailValue     string
		wantStatusCode int
		wantEmail      string
		wantRole       string
	}{
		{
			name:           "missing session cookie",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "garbage token",
			sessionValue:   "not-a-token",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "user session without email cookie",
			sessionValue:   userToken,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "user session",
			sessionValue:   userToken,
			emailValue:     "nurse@clinic.local",
			wantStatusCode: http.StatusOK,
			wantEmail:      "nurse@clinic.local",
			wantRole:       models.RoleUser,
		},
		{
			name:           "admin session ignores email cookie",
			sessionValue:   adminToken,
			emailValue:     "spoof@clinic.local",
			wantStatusCode: http.StatusOK,
			wantEmail:      adminEmail,
			wantRole:       models.RoleAdmin,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotEmail, gotRole any
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotEmail = r.Context().Value(middlewarectx.Email)
				gotRole = r.Context().Value(middlewarectx.Role)
				w.WriteHeader(http.StatusOK)
			})

			handler := middlewarectx.SessionMiddleware(maker, adminEmail, logger)(next)

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.sessionValue != "" {
				req.AddCookie(&http.Cookie{Name: session.SessionCookie, Value: tt.sessionValue})
			}
			if tt.emailValue != "" {
				req.AddCookie(&http.Cookie{Name: session.EmailCookie, Value: tt.emailValue})
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			if tt.wantStatusCode == http.StatusOK {
				assert.Equal(t, tt.wantEmail, gotEmail)
				assert.Equal(t, tt.wantRole, gotRole)
			}
		})
	}
}

func TestAdminOnly(t *testing.T) {
	logger := newNoopLogger()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := middlewarectx.AdminOnly(logger)(next)

	t.Run("admin passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/whitelist", nil)
		ctx := context.WithValue(req.Context(), middlewarectx.Role, models.RoleAdmin)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req.WithContext(ctx))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("user forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/whitelist", nil)
		ctx := context.WithValue(req.Context(), middlewarectx.Role, models.RoleUser)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req.WithContext(ctx))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing role forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/whitelist", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestCredentialRateLimit(t *testing.T) {
	logger := newNoopLogger()
	limiter := ratelimit.NewMemory()
	defer limiter.Stop()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := middlewarectx.CredentialRateLimit(limiter, "login", 3, time.Minute, logger)(next)

	makeRequest := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.7:54321"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 3; i++ {
		rec := makeRequest()
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := makeRequest()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "try again in")

	t.Run("different address unaffected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.8:54321"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
