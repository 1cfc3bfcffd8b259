// Package jwt реализует выпуск и проверку подписанных сессионных токенов.
//
// Токен несет единственный пользовательский claim — роль (user или admin).
// Проверка закрыта по умолчанию: любая ошибка парсинга, неверная подпись
// или нераспознанная роль означают отсутствие аутентификации.
package jwt

import (
	"time"
)

// Maker описывает интерфейс для генерации и проверки сессионных токенов.
type Maker interface {
	// Generate создает подписанный токен с заданной ролью и TTL.
	Generate(role string, ttl time.Duration) (string, error)
	// ParseRole проверяет токен и возвращает роль, либо ошибку.
	ParseRole(tokenStr string) (string, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа HMAC.
type MakerImpl struct {
	secretKey string // Секретный ключ для подписи токенов.
}

// NewMaker создаёт новый экземпляр MakerImpl на основе секретного ключа.
func NewMaker(secretKey string) *MakerImpl {
	return &MakerImpl{secretKey: secretKey}
}
