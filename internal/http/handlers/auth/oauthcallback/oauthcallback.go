// Package oauthcallback реализует HTTP-обработчик обратного вызова
// внешних OAuth-провайдеров.
//
// Код авторизации обменивается на профиль, почта проверяется по белому
// списку провайдера, при первом входе заводится учетная запись,
// после чего устанавливается сессионная cookie. В отличие от входа по
// паролю, на этом пути ошибка чтения белого списка блокирует вход.
package oauthcallback

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/clinic-gate/internal/http/response"
	"github.com/magabrotheeeer/clinic-gate/internal/lib/sl"
	"github.com/magabrotheeeer/clinic-gate/internal/metrics"
	"github.com/magabrotheeeer/clinic-gate/internal/models"
	"github.com/magabrotheeeer/clinic-gate/internal/services/oauth"
	"github.com/magabrotheeeer/clinic-gate/internal/services/whitelist"
)

// Service описывает интерфейс обмена кода авторизации на профиль.
type Service interface {
	Exchange(ctx context.Context, provider, code string) (oauth.Profile, error)
	EnsureUser(ctx context.Context, profile oauth.Profile) (string, error)
}

// Gate решает, допущена ли почта к установке сессии.
type Gate interface {
	Decide(ctx context.Context, email, provider string) (whitelist.Decision, error)
}

// SessionManager устанавливает сессионные cookie.
type SessionManager interface {
	Establish(ctx context.Context, w http.ResponseWriter, role, email string, remember bool) error
}

// Handler обрабатывает обратные вызовы OAuth-провайдеров.
type Handler struct {
	log      *slog.Logger
	service  Service
	gate     Gate
	sessions SessionManager
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, gate Gate, sessions SessionManager) *Handler {
	return &Handler{log: log, service: service, gate: gate, sessions: sessions}
}

// ServeHTTP godoc
// @Summary Обратный вызов OAuth-провайдера
// @Description Обменивает код авторизации на профиль и устанавливает сессию.
// @Tags Auth
// @Produce  json
// @Param provider path string true "Провайдер (google или yandex)"
// @Param code query string true "Код авторизации"
// @Success 200 {object} response.OKResponse "Сессия установлена"
// @Failure 400 {object} response.ErrorResponse "Неизвестный провайдер или отсутствует код"
// @Failure 401 {object} response.ErrorResponse "Обмен кода не удался"
// @Failure 403 {object} response.ErrorResponse "Почта не входит в белый список"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/v1/auth/oauth/{provider}/callback [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.oauthcallback"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	provider := chi.URLParam(r, "provider")
	if !models.KnownProvider(provider) || provider == models.ProviderEmail {
		log.Error("unknown oauth provider", slog.String("provider", provider))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("unknown oauth provider"))
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		log.Error("authorization code missing")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("authorization code missing"))
		return
	}

	profile, err := h.service.Exchange(r.Context(), provider, code)
	if err != nil {
		if errors.Is(err, oauth.ErrUnknownProvider) {
			log.Error("unknown oauth provider", slog.String("provider", provider))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown oauth provider"))
			return
		}
		metrics.LoginAttempts.WithLabelValues(provider, metrics.OutcomeDenied).Inc()
		log.Error("code exchange failed", sl.Err(err))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authorization failed"))
		return
	}

	decision, err := h.gate.Decide(r.Context(), profile.Email, provider)
	if err != nil {
		log.Error("whitelist lookup failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}
	if !decision.Allowed {
		metrics.LoginAttempts.WithLabelValues(provider, metrics.OutcomeNotAllowed).Inc()
		log.Error("email is not whitelisted",
			slog.String("email", profile.Email), slog.String("provider", provider))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("email is not whitelisted"))
		return
	}

	role, err := h.service.EnsureUser(r.Context(), profile)
	if err != nil {
		log.Error("failed to provision user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	if err := h.sessions.Establish(r.Context(), w, role, profile.Email, false); err != nil {
		metrics.LoginAttempts.WithLabelValues(provider, metrics.OutcomeError).Inc()
		log.Error("failed to establish session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	metrics.LoginAttempts.WithLabelValues(provider, metrics.OutcomeSuccess).Inc()
	log.Info("oauth login success",
		slog.String("email", profile.Email), slog.String("provider", provider))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"email": profile.Email,
		"role":  role,
	}))
}
