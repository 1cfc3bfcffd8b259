package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/magabrotheeeer/clinic-gate/internal/models"
)

// AddWhitelistEntry сохраняет запись белого списка. Пара (email, provider)
// уникальна, повтор дает ErrAlreadyExists.
func (s *Storage) AddWhitelistEntry(ctx context.Context, entry models.WhitelistEntry) (int, error) {
	const op = "storage.AddWhitelistEntry"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	doctors, err := json.Marshal(entry.Doctors)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	nurses, err := json.Marshal(entry.Nurses)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO whitelist_emails (email, provider, doctors, nurses)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int
	err = s.DB.QueryRowContext(ctx, query,
		NormalizeEmail(entry.Email), entry.Provider, doctors, nurses).Scan(&newID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListWhitelistEntries возвращает записи белого списка. Пустой provider
// означает все провайдеры.
func (s *Storage) ListWhitelistEntries(ctx context.Context, provider string) ([]models.WhitelistEntry, error) {
	const op = "storage.ListWhitelistEntries"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, email, provider, doctors, nurses
			  FROM whitelist_emails
			  WHERE $1 = '' OR provider = $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, provider)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.WhitelistEntry
	for rows.Next() {
		var entry models.WhitelistEntry
		var doctors, nurses []byte
		if err := rows.Scan(&entry.ID, &entry.Email, &entry.Provider, &doctors, &nurses); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := json.Unmarshal(doctors, &entry.Doctors); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := json.Unmarshal(nurses, &entry.Nurses); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RemoveWhitelistEntry удаляет запись по идентификатору.
func (s *Storage) RemoveWhitelistEntry(ctx context.Context, id int) error {
	const op = "storage.RemoveWhitelistEntry"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM whitelist_emails WHERE id = $1`, id)
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
