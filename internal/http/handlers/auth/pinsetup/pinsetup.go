// Package pinsetup реализует HTTP-обработчик установки PIN-кода.
//
// PIN устанавливается только аутентифицированному пользователю; почта
// берется из контекста запроса, заполненного сессионным middleware.
package pinsetup

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/clinic-gate/internal/http/middlewarectx"
	"github.com/magabrotheeeer/clinic-gate/internal/http/response"
	"github.com/magabrotheeeer/clinic-gate/internal/lib/password"
	"github.com/magabrotheeeer/clinic-gate/internal/lib/sl"
)

// Request — структура входных данных для установки PIN-кода.
type Request struct {
	Pin string `json:"pin" validate:"required,len=4,numeric"`
}

// Service описывает интерфейс бизнес-логики установки PIN-кода.
type Service interface {
	SetupPin(ctx context.Context, email, pin string) error
}

// Handler обрабатывает HTTP-запросы установки PIN-кода.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Установка PIN-кода
// @Description Сохраняет 4-значный PIN для быстрого входа текущего пользователя.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "PIN-код"
// @Success 200 {object} response.OKResponse "PIN установлен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или PIN"
// @Failure 401 {object} response.ErrorResponse "Требуется аутентификация"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/v1/auth/pin [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.pinsetup"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	email, ok := r.Context().Value(middlewarectx.Email).(string)
	if !ok || email == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authentication required"))
		return
	}

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
	if !password.ValidPin(req.Pin) {
		log.Error("pin format rejected")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("pin must be exactly 4 digits"))
		return
	}

	if err := h.service.SetupPin(r.Context(), email, req.Pin); err != nil {
		log.Error("failed to setup pin", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	log.Info("pin setup complete", slog.String("email", email))
	render.JSON(w, r, response.OK())
}
