// Package logout реализует HTTP-обработчик завершения сессии.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/clinic-gate/internal/http/response"
	"github.com/magabrotheeeer/clinic-gate/internal/lib/sl"
)

// SessionManager удаляет сессионные cookie.
type SessionManager interface {
	Terminate(ctx context.Context, w http.ResponseWriter) error
}

// Handler обрабатывает HTTP-запросы завершения сессии.
type Handler struct {
	log      *slog.Logger
	sessions SessionManager
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, sessions SessionManager) *Handler {
	return &Handler{log: log, sessions: sessions}
}

// ServeHTTP godoc
// @Summary Выход из системы
// @Description Удаляет сессионные cookie и сбрасывает кэш страниц.
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.OKResponse "Сессия завершена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/v1/auth/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := h.sessions.Terminate(r.Context(), w); err != nil {
		log.Error("failed to terminate session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	log.Info("session terminated")
	render.JSON(w, r, response.OK())
}
