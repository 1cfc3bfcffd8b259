package middlewarectx

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/clinic-gate/internal/http/response"
	"github.com/magabrotheeeer/clinic-gate/internal/metrics"
	"github.com/magabrotheeeer/clinic-gate/internal/ratelimit"
)

var limiter = rate.NewLimiter(20, 40)

// RateLimitMiddleware ограничивает общий поток запросов к серверу.
func RateLimitMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.Error("too many requests")
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CredentialRateLimit ограничивает попытки ввода учетных данных по адресу
// клиента. Ключ лимитера состоит из имени операции и адреса, поэтому
// попытки входа и смены пароля считаются раздельно.
//
// При превышении лимита возвращает HTTP 429 и сообщение со временем
// до следующей попытки в минутах.
func CredentialRateLimit(limiter ratelimit.Limiter, operation string, maxAttempts int, window time.Duration, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := operation + "_" + ratelimit.ClientIP(r)
			if !limiter.Check(key, maxAttempts, window) {
				retry := limiter.ResetTime(key)
				minutes := int(math.Ceil(retry.Minutes()))
				if minutes < 1 {
					minutes = 1
				}
				metrics.RateLimitRejections.WithLabelValues(operation).Inc()
				log.Error("credential rate limit exceeded",
					slog.String("operation", operation),
					slog.String("key", key))
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.Error(
					fmt.Sprintf("too many attempts, try again in %d minutes", minutes)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
