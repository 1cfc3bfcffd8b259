// Package models содержит доменные модели подсистемы аутентификации:
// пользователей, записи белого списка и биометрические учетные данные.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// Роли, которые может нести сессионный токен. Любое другое значение
// считается неаутентифицированным.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User представляет учетную запись сотрудника клиники.
type User struct {
	UID          string     // Уникальный идентификатор пользователя
	Email        string     // Электронная почта, хранится нормализованной (lower+trim)
	PasswordHash string     // Хэш пароля, пустая строка если пароль не установлен
	PinHash      string     // Хэш PIN-кода, пустая строка если PIN не установлен
	Role         string     // Роль пользователя, admin или user
	FirstName    string     // Имя
	LastName     string     // Фамилия
	CreatedAt    time.Time  // Дата создания учетной записи
	UpdatedAt    *time.Time // Дата последнего изменения учетных данных
}
