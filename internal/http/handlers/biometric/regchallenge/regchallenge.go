// Package regchallenge реализует HTTP-обработчик выдачи challenge
// для регистрации биометрического устройства.
//
// Требует активной сессии. Свежий nonce сохраняется в короткоживущей
// cookie и возвращается клиенту вместе с идентификатором пользователя
// в формате, пригодном для WebAuthn-вызова на стороне браузера.
package regchallenge

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/clinic-gate/internal/http/middlewarectx"
	"github.com/magabrotheeeer/clinic-gate/internal/http/response"
	"github.com/magabrotheeeer/clinic-gate/internal/lib/sl"
	"github.com/magabrotheeeer/clinic-gate/internal/services/biometric"
	"github.com/magabrotheeeer/clinic-gate/internal/session"
)

// ChallengeCookies сохраняет challenge в короткоживущей cookie.
type ChallengeCookies interface {
	SetChallenge(w http.ResponseWriter, name, value string)
}

// Handler обрабатывает запросы challenge для регистрации устройства.
type Handler struct {
	log     *slog.Logger
	cookies ChallengeCookies
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, cookies ChallengeCookies) *Handler {
	return &Handler{log: log, cookies: cookies}
}

// ServeHTTP godoc
// @Summary Challenge для регистрации устройства
// @Description Выдает одноразовый nonce для привязки биометрического устройства.
// @Tags Biometric
// @Produce  json
// @Success 200 {object} response.OKResponse "Challenge выдан"
// @Failure 401 {object} response.ErrorResponse "Требуется аутентификация"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/v1/auth/biometric/register/challenge [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.biometric.regchallenge"

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

	challenge, err := biometric.NewChallenge()
	if err != nil {
		log.Error("failed to generate challenge", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}
	h.cookies.SetChallenge(w, session.RegChallengeName, challenge)

	log.Info("registration challenge issued", slog.String("email", email))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"challenge": challenge,
		"user": map[string]any{
			"id":   biometric.UserHandle(email),
			"name": email,
		},
	}))
}
