package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP извлекает адрес клиента для ключа лимитера. Порядок источников:
// первый элемент X-Forwarded-For, затем X-Real-IP, затем адрес сокета,
// иначе строка "unknown".
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	if r.RemoteAddr != "" {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err == nil {
			return host
		}
		return r.RemoteAddr
	}
	return "unknown"
}
