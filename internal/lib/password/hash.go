// Package password реализует функции для безопасного хеширования и проверки
// паролей и PIN-кодов.
//
// Используется PBKDF2-SHA512 со случайной 16-байтовой солью. Пароли
// хешируются с 10 000 итераций и кодируются как "salt:hash" (hex).
// PIN-коды из-за малого пространства входа (10 000 значений) хешируются
// со 100 000 итераций и кодируются как "iterations.salt.hash" — число
// итераций записано в самом хэше, что позволяет поднимать стоимость
// без инвалидирования старых записей.
package password

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltLength         = 16
	keyLength          = 64
	passwordIterations = 10000
)

// Hash принимает пароль пользователя и возвращает его хэш в формате "salt:hash".
//
// Используется для безопасного хранения паролей в базе данных.
func Hash(password string) (string, error) {
	const op = "password.Hash"
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	key := pbkdf2.Key([]byte(password), salt, passwordIterations, keyLength, sha512.New)
	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(key), nil
}

// Verify сравнивает хэш в формате "salt:hash" с введённым паролем.
//
// Возвращает nil, если пароль соответствует хэшу, иначе — ошибку.
func Verify(encodedHash, password string) error {
	const op = "password.Verify"
	parts := strings.Split(encodedHash, ":")
	if len(parts) != 2 {
		return fmt.Errorf("%s: invalid hash format", op)
	}
	salt, err := hex.DecodeString(parts[0])
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	stored, err := hex.DecodeString(parts[1])
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	computed := pbkdf2.Key([]byte(password), salt, passwordIterations, len(stored), sha512.New)
	if subtle.ConstantTimeCompare(stored, computed) != 1 {
		return fmt.Errorf("%s: hash mismatch", op)
	}
	return nil
}
