// Package whitelistadd реализует HTTP-обработчик добавления записи
// белого списка. Доступен только администратору.
package whitelistadd

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
	"github.com/magabrotheeeer/clinic-gate/internal/models"
	"github.com/magabrotheeeer/clinic-gate/internal/storage"
)

// Request — структура входных данных для добавления записи.
type Request struct {
	Email    string   `json:"email" validate:"required,email"`
	Provider string   `json:"provider" validate:"required,oneof=google yandex email"`
	Doctors  []string `json:"doctors"`
	Nurses   []string `json:"nurses"`
}

// Service описывает интерфейс администрирования белого списка.
type Service interface {
	Add(ctx context.Context, entry models.WhitelistEntry) (int, error)
}

// Handler обрабатывает запросы добавления записи белого списка.
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
// @Summary Добавление записи белого списка
// @Description Разрешает вход паре (email, provider) с необязательными областями видимости.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param request body Request true "Запись белого списка"
// @Success 201 {object} response.OKResponse "Запись добавлена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Требуется аутентификация"
// @Failure 403 {object} response.ErrorResponse "Требуются права администратора"
// @Failure 409 {object} response.ErrorResponse "Запись уже существует"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/v1/admin/whitelist [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.whitelistadd"

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

	id, err := h.service.Add(r.Context(), models.WhitelistEntry{
		Email:    req.Email,
		Provider: req.Provider,
		Doctors:  req.Doctors,
		Nurses:   req.Nurses,
	})
	switch {
	case errors.Is(err, storage.ErrAlreadyExists):
		log.Error("whitelist entry already exists",
			slog.String("email", req.Email), slog.String("provider", req.Provider))
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("whitelist entry already exists"))
		return
	case err != nil:
		log.Error("failed to add whitelist entry", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	log.Info("whitelist entry added",
		slog.Int("id", id), slog.String("email", req.Email), slog.String("provider", req.Provider))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{"id": id}))
}
