package me

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/clinic-gate/internal/http/middlewarectx"
	"github.com/magabrotheeeer/clinic-gate/internal/models"
)

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestMeHandler_ServeHTTP(t *testing.T) {
	handler := New(newNoopLogger())

	t.Run("returns email and role from context", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		ctx := context.WithValue(r.Context(), middlewarectx.Email, "nurse@clinic.local")
		ctx = context.WithValue(ctx, middlewarectx.Role, models.RoleUser)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, r.WithContext(ctx))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"email":"nurse@clinic.local"`)
		assert.Contains(t, rec.Body.String(), `"role":"user"`)
	})

	t.Run("missing identity gives 401", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, r)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "authentication required")
	})
}
