// Package me реализует HTTP-обработчик сведений о текущей сессии.
package me

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/clinic-gate/internal/http/middlewarectx"
	"github.com/magabrotheeeer/clinic-gate/internal/http/response"
)

// Handler обрабатывает HTTP-запросы сведений о текущем пользователе.
type Handler struct {
	log *slog.Logger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Текущая сессия
// @Description Возвращает почту и роль пользователя из активной сессии.
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.OKResponse "Данные сессии"
// @Failure 401 {object} response.ErrorResponse "Требуется аутентификация"
// @Router /api/v1/auth/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.me"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	email, okEmail := r.Context().Value(middlewarectx.Email).(string)
	role, okRole := r.Context().Value(middlewarectx.Role).(string)
	if !okEmail || !okRole || email == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authentication required"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"email": email,
		"role":  role,
	}))
}
