// Package login реализует HTTP-обработчик входа по почте и паролю.
//
// В нём определяется структура Request для входных данных, выполняется
// декодирование JSON, проверка и валидация полей, а также делегирование
// проверки учетных данных сервису аутентификации. При успехе
// устанавливается сессионная cookie; все ошибки проверки возвращаются
// единым сообщением, не раскрывающим причину.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/clinic-gate/internal/http/response"
	"github.com/magabrotheeeer/clinic-gate/internal/lib/sl"
	"github.com/magabrotheeeer/clinic-gate/internal/metrics"
	"github.com/magabrotheeeer/clinic-gate/internal/services/auth"
)

// Request — структура входных данных для входа.
type Request struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Remember bool   `json:"remember"`
}

// Service описывает интерфейс бизнес-логики входа.
type Service interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// SessionManager устанавливает сессионные cookie.
type SessionManager interface {
	Establish(ctx context.Context, w http.ResponseWriter, role, email string, remember bool) error
}

// Handler обрабатывает HTTP-запросы входа.
type Handler struct {
	log      *slog.Logger
	service  Service
	sessions SessionManager
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, sessions SessionManager) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		sessions: sessions,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вход по почте и паролю
// @Description Проверяет учетные данные и устанавливает сессионную cookie.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные"
// @Success 200 {object} response.OKResponse "Сессия установлена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 403 {object} response.ErrorResponse "Почта не входит в белый список"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 429 {object} response.ErrorResponse "Превышен лимит попыток"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/v1/auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	role, err := h.service.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrNotWhitelisted):
		// Пароль уже подтвержден, поэтому причина отказа не скрывается.
		metrics.LoginAttempts.WithLabelValues("password", metrics.OutcomeNotAllowed).Inc()
		log.Error("email is not whitelisted", slog.String("email", req.Email))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("email is not whitelisted"))
		return
	case err != nil:
		metrics.LoginAttempts.WithLabelValues("password", metrics.OutcomeDenied).Inc()
		log.Error("login failed", sl.Err(err))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid credentials"))
		return
	}

	if err := h.sessions.Establish(r.Context(), w, role, req.Email, req.Remember); err != nil {
		metrics.LoginAttempts.WithLabelValues("password", metrics.OutcomeError).Inc()
		log.Error("failed to establish session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	metrics.LoginAttempts.WithLabelValues("password", metrics.OutcomeSuccess).Inc()
	log.Info("login success", slog.String("email", req.Email), slog.String("role", role))
	render.JSON(w, r, response.OKWithData(map[string]any{"role": role}))
}
