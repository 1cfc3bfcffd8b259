package password

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const pinIterations = 100000

// HashPin возвращает хэш PIN-кода в формате "iterations.salt.hash".
// Число итераций выше, чем у паролей: пространство входа всего 10 000 значений.
func HashPin(pin string) (string, error) {
	const op = "password.HashPin"
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	key := pbkdf2Key(pin, salt, pinIterations, keyLength)
	return fmt.Sprintf("%d.%s.%s", pinIterations, hex.EncodeToString(salt), hex.EncodeToString(key)), nil
}

// VerifyPin сравнивает хэш формата "iterations.salt.hash" с введённым PIN-кодом.
// Число итераций берется из самого хэша.
func VerifyPin(encodedHash, pin string) error {
	const op = "password.VerifyPin"
	parts := strings.Split(encodedHash, ".")
	if len(parts) != 3 {
		return fmt.Errorf("%s: invalid hash format", op)
	}
	iterations, err := strconv.Atoi(parts[0])
	if err != nil || iterations <= 0 {
		return fmt.Errorf("%s: invalid iteration count", op)
	}
	salt, err := hex.DecodeString(parts[1])
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	stored, err := hex.DecodeString(parts[2])
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	computed := pbkdf2Key(pin, salt, iterations, len(stored))
	if subtle.ConstantTimeCompare(stored, computed) != 1 {
		return fmt.Errorf("%s: hash mismatch", op)
	}
	return nil
}

// ValidPin проверяет, что PIN состоит ровно из 4 цифр. Это валидация границы,
// сам кодек принимает любые строки.
func ValidPin(pin string) bool {
	if len(pin) != 4 {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func pbkdf2Key(secret string, salt []byte, iterations, length int) []byte {
	return pbkdf2.Key([]byte(secret), salt, iterations, length, sha512.New)
}
