// Package whitelistremove реализует HTTP-обработчик удаления записи
// белого списка. Доступен только администратору.
package whitelistremove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/clinic-gate/internal/http/response"
	"github.com/magabrotheeeer/clinic-gate/internal/lib/sl"
	"github.com/magabrotheeeer/clinic-gate/internal/storage"
)

// Service описывает интерфейс удаления записи белого списка.
type Service interface {
	Remove(ctx context.Context, id int) error
}

// Handler обрабатывает запросы удаления записи белого списка.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удаление записи белого списка
// @Description Удаляет запись по идентификатору.
// @Tags Admin
// @Produce  json
// @Param id path int true "Идентификатор записи"
// @Success 200 {object} response.OKResponse "Запись удалена"
// @Failure 400 {object} response.ErrorResponse "Некорректный идентификатор"
// @Failure 401 {object} response.ErrorResponse "Требуется аутентификация"
// @Failure 403 {object} response.ErrorResponse "Требуются права администратора"
// @Failure 404 {object} response.ErrorResponse "Запись не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/v1/admin/whitelist/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.whitelistremove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		log.Error("invalid entry id", slog.String("id", chi.URLParam(r, "id")))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid entry id"))
		return
	}

	err = h.service.Remove(r.Context(), id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		log.Error("whitelist entry not found", slog.Int("id", id))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("whitelist entry not found"))
		return
	case err != nil:
		log.Error("failed to remove whitelist entry", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	log.Info("whitelist entry removed", slog.Int("id", id))
	render.JSON(w, r, response.OK())
}
