// Package whitelistlist реализует HTTP-обработчик просмотра белого списка.
// Доступен только администратору; поддерживает фильтр по провайдеру.
package whitelistlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/clinic-gate/internal/http/response"
	"github.com/magabrotheeeer/clinic-gate/internal/lib/sl"
	"github.com/magabrotheeeer/clinic-gate/internal/models"
)

// Service описывает интерфейс чтения белого списка.
type Service interface {
	List(ctx context.Context, provider string) ([]models.WhitelistEntry, error)
}

// Entry — представление записи белого списка в ответе.
type Entry struct {
	ID       int      `json:"id"`
	Email    string   `json:"email"`
	Provider string   `json:"provider"`
	Doctors  []string `json:"doctors,omitempty"`
	Nurses   []string `json:"nurses,omitempty"`
}

// Handler обрабатывает запросы просмотра белого списка.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Просмотр белого списка
// @Description Возвращает записи белого списка, опционально по провайдеру.
// @Tags Admin
// @Produce  json
// @Param provider query string false "Фильтр по провайдеру (google, yandex, email)"
// @Success 200 {object} response.OKResponse "Записи белого списка"
// @Failure 400 {object} response.ErrorResponse "Неизвестный провайдер"
// @Failure 401 {object} response.ErrorResponse "Требуется аутентификация"
// @Failure 403 {object} response.ErrorResponse "Требуются права администратора"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/v1/admin/whitelist [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.whitelistlist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	provider := r.URL.Query().Get("provider")
	if provider != "" && !models.KnownProvider(provider) {
		log.Error("unknown provider filter", slog.String("provider", provider))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("unknown provider"))
		return
	}

	entries, err := h.service.List(r.Context(), provider)
	if err != nil {
		log.Error("failed to list whitelist entries", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	items := make([]Entry, 0, len(entries))
	for _, e := range entries {
		items = append(items, Entry{
			ID:       e.ID,
			Email:    e.Email,
			Provider: e.Provider,
			Doctors:  e.Doctors,
			Nurses:   e.Nurses,
		})
	}

	log.Info("whitelist entries listed", slog.Int("count", len(items)))
	render.JSON(w, r, response.OKWithData(items))
}
