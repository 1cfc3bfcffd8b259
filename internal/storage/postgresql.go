// Package storage реализует хранилище данных на основе PostgreSQL
// для подсистемы аутентификации: учетные записи, белый список email
// и биометрические учетные данные. Email всегда хранится нормализованным
// (нижний регистр, без пробелов по краям).
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/clinic-gate/internal/lib/password"
	"github.com/magabrotheeeer/clinic-gate/internal/models"
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{DB: db}, nil
}

// NormalizeEmail приводит email к каноническому виду для сравнения и хранения.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SeedAdmin создает учетную запись администратора из переменных окружения,
// если ее еще нет. Пустые учетные данные пропускаются.
func (s *Storage) SeedAdmin(ctx context.Context, email, rawPassword string) error {
	const op = "storage.SeedAdmin"
	if email == "" || rawPassword == "" {
		return nil
	}
	_, err := s.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}

	hash, err := password.Hash(rawPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	_, err = s.CreateUser(ctx, models.User{
		Email:        NormalizeEmail(email),
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
