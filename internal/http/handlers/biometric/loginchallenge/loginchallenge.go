// Package loginchallenge реализует HTTP-обработчик выдачи challenge
// для биометрического входа.
//
// Аутентификация не требуется: клиент присылает почту, в ответ получает
// список идентификаторов зарегистрированных устройств и свежий nonce.
// Если у пользователя нет устройств, возвращается HTTP 404.
package loginchallenge

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
	"github.com/magabrotheeeer/clinic-gate/internal/services/biometric"
	"github.com/magabrotheeeer/clinic-gate/internal/session"
)

// Request — структура входных данных для запроса challenge.
type Request struct {
	Email string `json:"email" validate:"required,email"`
}

// Service описывает интерфейс бизнес-логики биометрического входа.
type Service interface {
	LoginOptions(ctx context.Context, email string) ([]string, error)
}

// ChallengeCookies сохраняет challenge в короткоживущей cookie.
type ChallengeCookies interface {
	SetChallenge(w http.ResponseWriter, name, value string)
}

// Handler обрабатывает запросы challenge для биометрического входа.
type Handler struct {
	log      *slog.Logger
	service  Service
	cookies  ChallengeCookies
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, cookies ChallengeCookies) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		cookies:  cookies,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Challenge для биометрического входа
// @Description Выдает nonce и список зарегистрированных устройств для почты.
// @Tags Biometric
// @Accept  json
// @Produce  json
// @Param request body Request true "Почта пользователя"
// @Success 200 {object} response.OKResponse "Challenge выдан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Биометрический вход не настроен"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/v1/auth/biometric/login/challenge [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.biometric.loginchallenge"

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

	credentialIDs, err := h.service.LoginOptions(r.Context(), req.Email)
	switch {
	case errors.Is(err, biometric.ErrNotEnabled):
		log.Error("biometrics not enabled", slog.String("email", req.Email))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("biometric login is not set up"))
		return
	case err != nil:
		log.Error("failed to list credentials", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	challenge, err := biometric.NewChallenge()
	if err != nil {
		log.Error("failed to generate challenge", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}
	h.cookies.SetChallenge(w, session.LoginChallengeName, challenge)

	log.Info("login challenge issued", slog.String("email", req.Email))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"challenge":        challenge,
		"allowCredentials": credentialIDs,
	}))
}
