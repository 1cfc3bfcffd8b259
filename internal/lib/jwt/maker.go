package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/magabrotheeeer/clinic-gate/internal/models"
)

// ErrInvalidToken возвращается при любой проблеме с токеном: подпись,
// срок действия, формат или нераспознанная роль.
var ErrInvalidToken = errors.New("invalid token")

// SessionClaims описывает пользовательские данные, хранящиеся в токене.
type SessionClaims struct {
	Role                 string `json:"role"` // Роль пользователя
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}

// Generate создает токен с заданной ролью, подписывая его секретным ключом.
// Роль вне закрытого списка отклоняется до подписи.
func (j *MakerImpl) Generate(role string, ttl time.Duration) (string, error) {
	const op = "jwt.Generate"
	if role != models.RoleUser && role != models.RoleAdmin {
		return "", fmt.Errorf("%s: unknown role %q: %w", op, role, ErrInvalidToken)
	}
	claims := SessionClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// ParseRole парсит токен, проверяет подпись и срок действия и возвращает роль.
// Ошибка парсинга, чужая подпись или роль вне {user, admin} дают ErrInvalidToken.
func (j *MakerImpl) ParseRole(tokenStr string) (string, error) {
	const op = "jwt.ParseRole"
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	if claims.Role != models.RoleUser && claims.Role != models.RoleAdmin {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	return claims.Role, nil
}
