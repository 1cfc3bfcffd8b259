// Package loginverify реализует HTTP-обработчик подтверждения
// биометрического входа.
//
// Присланный challenge должен совпасть со значением из cookie, подпись
// проверяется открытым ключом устройства. Challenge одноразовый: cookie
// удаляется и при успехе, и при неверной подписи.
package loginverify

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
	"github.com/magabrotheeeer/clinic-gate/internal/services/biometric"
	"github.com/magabrotheeeer/clinic-gate/internal/session"
)

// Request — структура входных данных подтверждения входа.
type Request struct {
	Email        string `json:"email" validate:"required,email"`
	Challenge    string `json:"challenge" validate:"required"`
	CredentialID string `json:"credential_id" validate:"required"`
	Signature    string `json:"signature" validate:"required"`
	Remember     bool   `json:"remember"`
}

// Service описывает интерфейс бизнес-логики биометрического входа.
type Service interface {
	VerifyLogin(ctx context.Context, email, issued, presented, credentialID, signature string) (string, error)
}

// SessionManager устанавливает сессионные cookie и работает с challenge.
type SessionManager interface {
	Establish(ctx context.Context, w http.ResponseWriter, role, email string, remember bool) error
	ReadChallenge(r *http.Request, name string) string
	DeleteChallenge(w http.ResponseWriter, name string)
}

// Handler обрабатывает запросы подтверждения биометрического входа.
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
// @Summary Подтверждение биометрического входа
// @Description Проверяет challenge и подпись устройства, устанавливает сессию.
// @Tags Biometric
// @Accept  json
// @Produce  json
// @Param request body Request true "Challenge, устройство и подпись"
// @Success 200 {object} response.OKResponse "Сессия установлена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или challenge"
// @Failure 401 {object} response.ErrorResponse "Устройство не опознано или подпись неверна"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/v1/auth/biometric/login/verify [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.biometric.loginverify"

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

	issued := h.sessions.ReadChallenge(r, session.LoginChallengeName)
	role, err := h.service.VerifyLogin(r.Context(), req.Email, issued, req.Challenge,
		req.CredentialID, req.Signature)
	switch {
	case errors.Is(err, biometric.ErrChallengeMismatch):
		metrics.LoginAttempts.WithLabelValues("biometric", metrics.OutcomeDenied).Inc()
		log.Error("challenge mismatch", slog.String("email", req.Email))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid challenge"))
		return
	case errors.Is(err, biometric.ErrDeviceNotRecognized), errors.Is(err, biometric.ErrBadSignature):
		h.sessions.DeleteChallenge(w, session.LoginChallengeName)
		metrics.LoginAttempts.WithLabelValues("biometric", metrics.OutcomeDenied).Inc()
		log.Error("biometric verification failed", sl.Err(err))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid credentials"))
		return
	case err != nil:
		metrics.LoginAttempts.WithLabelValues("biometric", metrics.OutcomeError).Inc()
		log.Error("biometric login failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	h.sessions.DeleteChallenge(w, session.LoginChallengeName)
	if err := h.sessions.Establish(r.Context(), w, role, req.Email, req.Remember); err != nil {
		metrics.LoginAttempts.WithLabelValues("biometric", metrics.OutcomeError).Inc()
		log.Error("failed to establish session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	metrics.LoginAttempts.WithLabelValues("biometric", metrics.OutcomeSuccess).Inc()
	log.Info("biometric login success",
		slog.String("email", req.Email), slog.String("role", role))
	render.JSON(w, r, response.OKWithData(map[string]any{"role": role}))
}
