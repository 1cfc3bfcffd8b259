// Package pinlogin реализует HTTP-обработчик быстрого входа по PIN-коду.
//
// Как и вход по паролю, проходит через лимит попыток; ошибки проверки
// возвращаются единым сообщением. Отдельно сообщается только случай,
// когда PIN еще не установлен.
package pinlogin

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

// Request — структура входных данных для входа по PIN-коду.
type Request struct {
	Email    string `json:"email" validate:"required,email"`
	Pin      string `json:"pin" validate:"required,len=4,numeric"`
	Remember bool   `json:"remember"`
}

// Service описывает интерфейс бизнес-логики входа по PIN-коду.
type Service interface {
	PinLogin(ctx context.Context, email, pin string) (string, error)
}

// SessionManager устанавливает сессионные cookie.
type SessionManager interface {
	Establish(ctx context.Context, w http.ResponseWriter, role, email string, remember bool) error
}

// Handler обрабатывает HTTP-запросы входа по PIN-коду.
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
// @Summary Вход по PIN-коду
// @Description Проверяет PIN пользователя и устанавливает сессионную cookie.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Почта и PIN"
// @Success 200 {object} response.OKResponse "Сессия установлена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 404 {object} response.ErrorResponse "PIN не установлен"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 429 {object} response.ErrorResponse "Превышен лимит попыток"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/v1/auth/pin/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.pinlogin"

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

	role, err := h.service.PinLogin(r.Context(), req.Email, req.Pin)
	switch {
	case errors.Is(err, auth.ErrPinNotSet):
		metrics.LoginAttempts.WithLabelValues("pin", metrics.OutcomeDenied).Inc()
		log.Error("pin is not set up", slog.String("email", req.Email))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("pin is not set up"))
		return
	case err != nil:
		metrics.LoginAttempts.WithLabelValues("pin", metrics.OutcomeDenied).Inc()
		log.Error("pin login failed", sl.Err(err))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid credentials"))
		return
	}

	if err := h.sessions.Establish(r.Context(), w, role, req.Email, req.Remember); err != nil {
		metrics.LoginAttempts.WithLabelValues("pin", metrics.OutcomeError).Inc()
		log.Error("failed to establish session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	metrics.LoginAttempts.WithLabelValues("pin", metrics.OutcomeSuccess).Inc()
	log.Info("pin login success", slog.String("email", req.Email), slog.String("role", role))
	render.JSON(w, r, response.OKWithData(map[string]any{"role": role}))
}
