package models

import "time"

// BiometricCredential представляет привязанный к пользователю аутентификатор
// (ключ устройства). Один пользователь может иметь несколько устройств,
// credential_id уникален глобально. Записи не истекают.
type BiometricCredential struct {
	UserEmail    string    // Email владельца, нормализованный
	CredentialID string    // Идентификатор аутентификатора, base64url
	PublicKey    string    // Публичный ключ P-256 в PEM
	DeviceName   string    // Человекочитаемое имя устройства
	CreatedAt    time.Time // Дата регистрации устройства
}
