package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/clinic-gate/internal/models"
)

// CreateUser сохраняет нового пользователя и возвращает его UID.
// Повторный email дает ErrAlreadyExists.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	uid := uuid.NewString()
	query := `INSERT INTO users (uid, email, password_hash, pin_hash, role, first_name, last_name)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.DB.ExecContext(ctx, query,
		uid, NormalizeEmail(user.Email), user.PasswordHash, user.PinHash,
		user.Role, user.FirstName, user.LastName)
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// GetUserByEmail возвращает пользователя по нормализованному email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, password_hash, pin_hash, role, first_name, last_name, created_at, updated_at
			  FROM users
			  WHERE email = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, NormalizeEmail(email))

	var updatedAt sql.NullTime
	if err := row.Scan(&u.UID, &u.Email, &u.PasswordHash, &u.PinHash,
		&u.Role, &u.FirstName, &u.LastName, &u.CreatedAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if updatedAt.Valid {
		u.UpdatedAt = &updatedAt.Time
	}
	return u, nil
}

// UpdatePasswordHash меняет хэш пароля пользователя.
func (s *Storage) UpdatePasswordHash(ctx context.Context, email, passwordHash string) error {
	const op = "storage.UpdatePasswordHash"
	return s.updateCredential(ctx, op, "password_hash", email, passwordHash)
}

// UpdatePinHash меняет хэш PIN-кода пользователя.
func (s *Storage) UpdatePinHash(ctx context.Context, email, pinHash string) error {
	const op = "storage.UpdatePinHash"
	return s.updateCredential(ctx, op, "pin_hash", email, pinHash)
}

func (s *Storage) updateCredential(ctx context.Context, op, column, email, value string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := fmt.Sprintf(`UPDATE users SET %s = $1, updated_at = now() WHERE email = $2`, column)
	res, err := s.DB.ExecContext(ctx, query, value, NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
