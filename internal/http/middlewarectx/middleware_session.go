// Package middlewarectx содержит HTTP middleware для проверки сессионных
// cookie и ограничения частоты попыток ввода учетных данных.
//
// SessionMiddleware проверяет подписанный токен в сессионной cookie,
// и в случае успеха добавляет в контекст почту и роль пользователя
// для дальнейшего использования в обработчиках.
//
// В случае ошибки проверки возвращает HTTP 401 Unauthorized с сообщением об ошибке.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/clinic-gate/internal/http/response"
	"github.com/magabrotheeeer/clinic-gate/internal/lib/jwt"
	"github.com/magabrotheeeer/clinic-gate/internal/lib/sl"
	"github.com/magabrotheeeer/clinic-gate/internal/models"
	"github.com/magabrotheeeer/clinic-gate/internal/session"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// Email — ключ для почты пользователя в контексте
	Email Key = "email"
	// Role — ключ для роли пользователя в контексте
	Role Key = "role"
)

// SessionMiddleware возвращает HTTP middleware, который проверяет токен
// из сессионной cookie.
//
// Роль берется только из подписанного токена. Почта администратора
// приходит из конфигурации, почта обычного пользователя — из отдельной
// cookie, которую выставляет установка сессии.
func SessionMiddleware(tokens jwt.Maker, adminEmail string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.SessionMiddleware"

			log = log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			cookie, err := r.Cookie(session.SessionCookie)
			if err != nil || cookie.Value == "" {
				log.Error("missing session cookie")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("authentication required"))
				return
			}

			role, err := tokens.ParseRole(cookie.Value)
			if err != nil {
				log.Error("invalid or expired session", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired session"))
				return
			}

			email := adminEmail
			if role != models.RoleAdmin {
				emailCookie, err := r.Cookie(session.EmailCookie)
				if err != nil || emailCookie.Value == "" {
					log.Error("missing email cookie for user session")
					render.Status(r, http.StatusUnauthorized)
					render.JSON(w, r, response.Error("invalid or expired session"))
					return
				}
				email = emailCookie.Value
			}

			ctx := context.WithValue(r.Context(), Email, email)
			ctx = context.WithValue(ctx, Role, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly возвращает HTTP middleware, который пропускает только
// администратора. Должен стоять после SessionMiddleware.
func AdminOnly(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := r.Context().Value(Role).(string)
			if !ok || role != models.RoleAdmin {
				log.Error("admin access denied", slog.String("role", role))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
