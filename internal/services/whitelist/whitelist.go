// Package whitelist содержит логику допуска по белому списку email.
//
// Правило решения: пока белый список пуст (нет ни одной записи ни у одного
// провайдера), система открыта и вход разрешен всем — это осознанная
// политика "открыто до первой настройки". Как только появляется хотя бы
// одна запись, система закрыта: нормализованный email должен встречаться
// либо в полном списке (любой провайдер), либо в списке своего провайдера.
package whitelist

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/clinic-gate/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/clinic-gate/internal/models"
	"github.com/magabrotheeeer/clinic-gate/internal/storage"
)

// Repository описывает контракт для работы с белым списком в базе данных.
type Repository interface {
	// ListWhitelistEntries возвращает записи; пустой provider — все записи.
	ListWhitelistEntries(ctx context.Context, provider string) ([]models.WhitelistEntry, error)
	// AddWhitelistEntry сохраняет запись и возвращает ее ID.
	AddWhitelistEntry(ctx context.Context, entry models.WhitelistEntry) (int, error)
	// RemoveWhitelistEntry удаляет запись по ID.
	RemoveWhitelistEntry(ctx context.Context, id int) error
}

// Decision результат проверки допуска вместе с областями видимости записи.
type Decision struct {
	Allowed bool     // Разрешен ли вход
	Doctors []string // Видимые врачи из совпавшей записи
	Nurses  []string // Видимые медсестры из совпавшей записи
}

// Service реализует проверку допуска и администрирование белого списка.
type Service struct {
	repo   Repository
	events *rabbitmq.Publisher
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, events *rabbitmq.Publisher) *Service {
	return &Service{repo: repo, events: events}
}

// Decide проверяет, разрешен ли вход для пары (email, provider).
func (s *Service) Decide(ctx context.Context, email, provider string) (Decision, error) {
	const op = "whitelist.Decide"

	all, err := s.repo.ListWhitelistEntries(ctx, "")
	if err != nil {
		return Decision{}, fmt.Errorf("%s: %w", op, err)
	}
	// пустой список — система открыта
	if len(all) == 0 {
		return Decision{Allowed: true}, nil
	}

	normalized := storage.NormalizeEmail(email)
	for _, entry := range all {
		if storage.NormalizeEmail(entry.Email) != normalized {
			continue
		}
		if entry.Provider == provider || provider == "" {
			return Decision{Allowed: true, Doctors: entry.Doctors, Nurses: entry.Nurses}, nil
		}
	}
	// email встречается у другого провайдера — полный список тоже допускает
	for _, entry := range all {
		if storage.NormalizeEmail(entry.Email) == normalized {
			return Decision{Allowed: true, Doctors: entry.Doctors, Nurses: entry.Nurses}, nil
		}
	}
	return Decision{}, nil
}

// Add сохраняет запись белого списка и публикует событие изменения.
func (s *Service) Add(ctx context.Context, entry models.WhitelistEntry) (int, error) {
	const op = "whitelist.Add"
	entry.Email = storage.NormalizeEmail(entry.Email)
	id, err := s.repo.AddWhitelistEntry(ctx, entry)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	_ = s.events.Publish(rabbitmq.KeyWhitelistChanged, rabbitmq.Event{
		Email:    entry.Email,
		Provider: entry.Provider,
	})
	return id, nil
}

// List возвращает записи белого списка, опционально по провайдеру.
func (s *Service) List(ctx context.Context, provider string) ([]models.WhitelistEntry, error) {
	const op = "whitelist.List"
	entries, err := s.repo.ListWhitelistEntries(ctx, provider)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entries, nil
}

// Remove удаляет запись белого списка по ID.
func (s *Service) Remove(ctx context.Context, id int) error {
	const op = "whitelist.Remove"
	if err := s.repo.RemoveWhitelistEntry(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
