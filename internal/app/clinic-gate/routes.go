// Package clinicgate предоставляет маршруты для основного приложения.
package clinicgate

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/clinic-gate/internal/config"
	"github.com/magabrotheeeer/clinic-gate/internal/http/handlers/admin/whitelistadd"
	"github.com/magabrotheeeer/clinic-gate/internal/http/handlers/admin/whitelistlist"
	"github.com/magabrotheeeer/clinic-gate/internal/http/handlers/admin/whitelistremove"
	"github.com/magabrotheeeer/clinic-gate/internal/http/handlers/auth/changepassword"
	"github.com/magabrotheeeer/clinic-gate/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/clinic-gate/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/clinic-gate/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/clinic-gate/internal/http/handlers/auth/oauthcallback"
	"github.com/magabrotheeeer/clinic-gate/internal/http/handlers/auth/pinlogin"
	"github.com/magabrotheeeer/clinic-gate/internal/http/handlers/auth/pinsetup"
	"github.com/magabrotheeeer/clinic-gate/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/clinic-gate/internal/http/handlers/biometric/loginchallenge"
	"github.com/magabrotheeeer/clinic-gate/internal/http/handlers/biometric/loginverify"
	"github.com/magabrotheeeer/clinic-gate/internal/http/handlers/biometric/regchallenge"
	"github.com/magabrotheeeer/clinic-gate/internal/http/handlers/biometric/regverify"
	"github.com/magabrotheeeer/clinic-gate/internal/http/middlewarectx"
	"github.com/magabrotheeeer/clinic-gate/internal/lib/jwt"
	"github.com/magabrotheeeer/clinic-gate/internal/ratelimit"
	authservice "github.com/magabrotheeeer/clinic-gate/internal/services/auth"
	biometricservice "github.com/magabrotheeeer/clinic-gate/internal/services/biometric"
	oauthservice "github.com/magabrotheeeer/clinic-gate/internal/services/oauth"
	whitelistservice "github.com/magabrotheeeer/clinic-gate/internal/services/whitelist"
	"github.com/magabrotheeeer/clinic-gate/internal/session"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config,
	tokens jwt.Maker, sessions *session.Manager, limiter ratelimit.Limiter,
	authSvc *authservice.Service, biometricSvc *biometricservice.Service,
	oauthSvc *oauthservice.Service, whitelistSvc *whitelistservice.Service) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.RateLimitMiddleware(logger),
	)

	credentialLimit := func(operation string) func(next http.Handler) http.Handler {
		return middlewarectx.CredentialRateLimit(limiter, operation,
			cfg.RateLimit.MaxAttempts, cfg.RateLimit.Window, logger)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			// Открытые конечные точки
			r.With(credentialLimit("register")).
				Post("/register", register.New(logger, authSvc).ServeHTTP)
			r.With(credentialLimit("login")).
				Post("/login", login.New(logger, authSvc, sessions).ServeHTTP)
			r.With(credentialLimit("pin_login")).
				Post("/pin/login", pinlogin.New(logger, authSvc, sessions).ServeHTTP)
			r.Post("/logout", logout.New(logger, sessions).ServeHTTP)
			r.Get("/oauth/{provider}/callback",
				oauthcallback.New(logger, oauthSvc, whitelistSvc, sessions).ServeHTTP)
			r.Post("/biometric/login/challenge",
				loginchallenge.New(logger, biometricSvc, sessions).ServeHTTP)
			r.With(credentialLimit("biometric_login")).
				Post("/biometric/login/verify",
					loginverify.New(logger, biometricSvc, sessions).ServeHTTP)

			// Группа с сессионной аутентификацией
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.SessionMiddleware(tokens, cfg.Admin.Email, logger))
				r.Get("/me", me.New(logger).ServeHTTP)
				r.Post("/pin", pinsetup.New(logger, authSvc).ServeHTTP)
				r.With(credentialLimit("change_password")).
					Post("/password", changepassword.New(logger, authSvc).ServeHTTP)
				r.Post("/biometric/register/challenge",
					regchallenge.New(logger, sessions).ServeHTTP)
				r.Post("/biometric/register/verify",
					regverify.New(logger, biometricSvc, sessions).ServeHTTP)
			})
		})

		// Администрирование белого списка
		r.Route("/admin", func(r chi.Router) {
			r.Use(middlewarectx.SessionMiddleware(tokens, cfg.Admin.Email, logger))
			r.Use(middlewarectx.AdminOnly(logger))
			r.Post("/whitelist", whitelistadd.New(logger, whitelistSvc).ServeHTTP)
			r.Get("/whitelist", whitelistlist.New(logger, whitelistSvc).ServeHTTP)
			r.Delete("/whitelist/{id}", whitelistremove.New(logger, whitelistSvc).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
