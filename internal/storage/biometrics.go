package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/clinic-gate/internal/models"
)

// UpsertBiometricCredential сохраняет учетные данные устройства.
// Повторная регистрация того же credential_id обновляет ключ и имя
// устройства вместо ошибки.
func (s *Storage) UpsertBiometricCredential(ctx context.Context, cred models.BiometricCredential) error {
	const op = "storage.UpsertBiometricCredential"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO user_biometrics (user_email, credential_id, public_key, device_name)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (credential_id)
			  DO UPDATE SET public_key = EXCLUDED.public_key,
			                device_name = EXCLUDED.device_name`
	_, err := s.DB.ExecContext(ctx, query,
		NormalizeEmail(cred.UserEmail), cred.CredentialID, cred.PublicKey, cred.DeviceName)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListBiometricCredentialIDs возвращает credential_id всех устройств
// пользователя. Пустой список — биометрия не настроена.
func (s *Storage) ListBiometricCredentialIDs(ctx context.Context, email string) ([]string, error) {
	const op = "storage.ListBiometricCredentialIDs"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT credential_id
			  FROM user_biometrics
			  WHERE user_email = $1
			  ORDER BY created_at`
	rows, err := s.DB.QueryContext(ctx, query, NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ids, nil
}

// GetBiometricCredential возвращает учетные данные по паре (email, credential_id).
func (s *Storage) GetBiometricCredential(ctx context.Context, email, credentialID string) (*models.BiometricCredential, error) {
	const op = "storage.GetBiometricCredential"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_email, credential_id, public_key, device_name, created_at
			  FROM user_biometrics
			  WHERE user_email = $1 AND credential_id = $2`
	cred := &models.BiometricCredential{}
	row := s.DB.QueryRowContext(ctx, query, NormalizeEmail(email), credentialID)
	if err := row.Scan(&cred.UserEmail, &cred.CredentialID, &cred.PublicKey,
		&cred.DeviceName, &cred.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cred, nil
}
