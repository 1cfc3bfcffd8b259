// Package regverify реализует HTTP-обработчик подтверждения регистрации
// биометрического устройства.
//
// Требует активной сессии. Присланный challenge должен совпасть со
// значением из cookie; после успешной привязки cookie удаляется,
// повторная регистрация того же устройства обновляет ключ.
package regverify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/clinic-gate/internal/http/middlewarectx"
	"github.com/magabrotheeeer/clinic-gate/internal/http/response"
	"github.com/magabrotheeeer/clinic-gate/internal/lib/sl"
	"github.com/magabrotheeeer/clinic-gate/internal/services/biometric"
	"github.com/magabrotheeeer/clinic-gate/internal/session"
)

// Request — структура входных данных подтверждения регистрации.
type Request struct {
	Challenge    string `json:"challenge" validate:"required"`
	CredentialID string `json:"credential_id" validate:"required"`
	PublicKey    string `json:"public_key" validate:"required"`
	DeviceName   string `json:"device_name" validate:"max=200"`
}

// Service описывает интерфейс бизнес-логики привязки устройства.
type Service interface {
	Register(ctx context.Context, email, issued, presented, credentialID, publicKeyPEM, deviceName string) error
}

// ChallengeCookies читает и удаляет challenge-cookie.
type ChallengeCookies interface {
	ReadChallenge(r *http.Request, name string) string
	DeleteChallenge(w http.ResponseWriter, name string)
}

// Handler обрабатывает запросы подтверждения регистрации устройства.
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
// @Summary Подтверждение регистрации устройства
// @Description Проверяет challenge и сохраняет открытый ключ устройства.
// @Tags Biometric
// @Accept  json
// @Produce  json
// @Param request body Request true "Challenge и данные устройства"
// @Success 200 {object} response.OKResponse "Устройство привязано"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON, challenge или ключ"
// @Failure 401 {object} response.ErrorResponse "Требуется аутентификация"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/v1/auth/biometric/register/verify [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.biometric.regverify"

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

	issued := h.cookies.ReadChallenge(r, session.RegChallengeName)
	err := h.service.Register(r.Context(), email, issued, req.Challenge,
		req.CredentialID, req.PublicKey, req.DeviceName)
	switch {
	case errors.Is(err, biometric.ErrChallengeMismatch):
		log.Error("challenge mismatch", slog.String("email", email))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid challenge"))
		return
	case errors.Is(err, biometric.ErrInvalidKey):
		log.Error("public key rejected", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid public key"))
		return
	case err != nil:
		log.Error("failed to register device", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	h.cookies.DeleteChallenge(w, session.RegChallengeName)
	log.Info("biometric device registered",
		slog.String("email", email), slog.String("device", req.DeviceName))
	render.JSON(w, r, response.OK())
}
