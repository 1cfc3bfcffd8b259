package whitelistlist

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

	"github.com/magabrotheeeer/clinic-gate/internal/models"
)

type WhitelistServiceMock struct {
	mock.Mock
}

func (m *WhitelistServiceMock) List(ctx context.Context, provider string) ([]models.WhitelistEntry, error) {
	args := m.Called(ctx, provider)
	entries, _ := args.Get(0).([]models.WhitelistEntry)
	return entries, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestWhitelistListHandler_ServeHTTP(t *testing.T) {
	entries := []models.WhitelistEntry{
		{ID: 1, Email: "doctor@clinic.local", Provider: models.ProviderGoogle, Doctors: []string{"Ivanov"}},
		{ID: 2, Email: "nurse@clinic.local", Provider: models.ProviderEmail},
	}

	tests := []struct {
		name           string
		query          string
		mockProvider   string
		mockEntries    []models.WhitelistEntry
		mockErr        error
		skipMock       bool
		wantStatusCode int
		wantBody       []string
	}{
		{
			name:           "all entries",
			mockEntries:    entries,
			wantStatusCode: http.StatusOK,
			wantBody:       []string{"doctor@clinic.local", "nurse@clinic.local", `"id":1`},
		},
		{
			name:           "filter by provider",
			query:          "?provider=google",
			mockProvider:   models.ProviderGoogle,
			mockEntries:    entries[:1],
			wantStatusCode: http.StatusOK,
			wantBody:       []string{"doctor@clinic.local", "Ivanov"},
		},
		{
			name:           "unknown provider rejected",
			query:          "?provider=github",
			skipMock:       true,
			wantStatusCode: http.StatusBadRequest,
			wantBody:       []string{"unknown provider"},
		},
		{
			name:           "storage failure gives 500",
			mockErr:        errors.New("connection refused"),
			wantStatusCode: http.StatusInternalServerError,
			wantBody:       []string{"internal service error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(WhitelistServiceMock)
			handler := New(newNoopLogger(), serviceMock)

			if !tt.skipMock {
				serviceMock.On("List", mock.Anything, tt.mockProvider).
					Return(tt.mockEntries, tt.mockErr).Once()
			}

			r := httptest.NewRequest(http.MethodGet, "/api/v1/admin/whitelist"+tt.query, nil)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, r)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			for _, fragment := range tt.wantBody {
				assert.Contains(t, rec.Body.String(), fragment)
			}
			serviceMock.AssertExpectations(t)
		})
	}
}
