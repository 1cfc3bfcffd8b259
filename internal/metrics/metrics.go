// Package metrics содержит Prometheus-счетчики подсистемы аутентификации.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Значения метки outcome.
const (
	OutcomeSuccess     = "success"
	OutcomeDenied      = "denied"
	OutcomeNotAllowed  = "not_whitelisted"
	OutcomeRateLimited = "rate_limited"
	OutcomeError       = "error"
)

// LoginAttempts считает попытки входа по методу и исходу.
var LoginAttempts = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "clinic_gate_login_attempts_total",
		Help: "Login attempts by method and outcome.",
	},
	[]string{"method", "outcome"},
)

// RateLimitRejections считает запросы, отклоненные лимитером, по операции.
var RateLimitRejections = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "clinic_gate_rate_limit_rejections_total",
		Help: "Requests rejected by the credential rate limiter.",
	},
	[]string{"operation"},
)
