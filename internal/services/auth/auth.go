// Package auth содержит логику бизнес-уровня для регистрации и проверки
// учетных данных по паролю и PIN-коду. Все механизмы возвращают роль и email,
// с которыми вызывающий устанавливает сессию через единую точку session.Manager.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/clinic-gate/internal/lib/password"
	"github.com/magabrotheeeer/clinic-gate/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/clinic-gate/internal/lib/sl"
	"github.com/magabrotheeeer/clinic-gate/internal/models"
	"github.com/magabrotheeeer/clinic-gate/internal/services/whitelist"
	"github.com/magabrotheeeer/clinic-gate/internal/storage"
)

// Ошибки уровня сервиса. Тексты для вызывающего формируются в обработчиках.
var (
	// ErrInvalidCredentials намеренно не различает неверный email и неверный
	// пароль, чтобы не подтверждать существование учетной записи.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotWhitelisted возвращается, когда учетные данные верны, но email
	// не входит в белый список.
	ErrNotWhitelisted = errors.New("email is not whitelisted")
	// ErrPinNotSet возвращается при входе по PIN, если PIN не настроен.
	ErrPinNotSet = errors.New("pin is not set up")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, email, passwordHash string) error
	UpdatePinHash(ctx context.Context, email, pinHash string) error
}

// Gate описывает проверку допуска по белому списку.
type Gate interface {
	Decide(ctx context.Context, email, provider string) (whitelist.Decision, error)
}

// Service отвечает за регистрацию и проверку парольных учетных данных.
type Service struct {
	users      UserRepository
	gate       Gate
	events     *rabbitmq.Publisher
	log        *slog.Logger
	adminEmail string
}

// NewService создает новый экземпляр Service.
func NewService(users UserRepository, gate Gate, events *rabbitmq.Publisher, log *slog.Logger, adminEmail string) *Service {
	return &Service{
		users:      users,
		gate:       gate,
		events:     events,
		log:        log,
		adminEmail: adminEmail,
	}
}

// RoleFor возвращает роль для email: admin для настроенного адреса
// администратора, иначе user.
func (s *Service) RoleFor(email string) string {
	if s.adminEmail != "" && storage.NormalizeEmail(email) == storage.NormalizeEmail(s.adminEmail) {
		return models.RoleAdmin
	}
	return models.RoleUser
}

// Register создает нового пользователя с хэшированием пароля.
// Допуск проверяется по белому списку провайдера email.
func (s *Service) Register(ctx context.Context, email, rawPassword, firstName, lastName string) (string, error) {
	const op = "auth.Register"

	if err := s.consultWhitelist(ctx, op, email); err != nil {
		return "", err
	}

	hashed, err := password.Hash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	uid, err := s.users.CreateUser(ctx, models.User{
		Email:        email,
		PasswordHash: hashed,
		Role:         s.RoleFor(email),
		FirstName:    firstName,
		LastName:     lastName,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	_ = s.events.Publish(rabbitmq.KeyUserRegistered, rabbitmq.Event{
		Email:    storage.NormalizeEmail(email),
		Provider: models.ProviderEmail,
	})
	return uid, nil
}

// Login проверяет пароль пользователя и возвращает роль для установки сессии.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (string, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if user.PasswordHash == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err := password.Verify(user.PasswordHash, rawPassword); err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err := s.consultWhitelist(ctx, op, email); err != nil {
		return "", err
	}
	return user.Role, nil
}

// PinLogin проверяет PIN-код пользователя и возвращает роль.
func (s *Service) PinLogin(ctx context.Context, email, pin string) (string, error) {
	const op = "auth.PinLogin"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if user.PinHash == "" {
		return "", fmt.Errorf("%s: %w", op, ErrPinNotSet)
	}
	if err := password.VerifyPin(user.PinHash, pin); err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	return user.Role, nil
}

// SetupPin устанавливает PIN-код уже аутентифицированному пользователю.
func (s *Service) SetupPin(ctx context.Context, email, pin string) error {
	const op = "auth.SetupPin"

	hashed, err := password.HashPin(pin)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.UpdatePinHash(ctx, email, hashed); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ChangePassword меняет пароль после проверки текущего.
func (s *Service) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	const op = "auth.ChangePassword"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err := password.Verify(user.PasswordHash, oldPassword); err != nil {
		return fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	hashed, err := password.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.UpdatePasswordHash(ctx, email, hashed); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// consultWhitelist проверяет допуск по провайдеру email. Ошибка чтения
// белого списка на этом пути осознанно не блокирует вход (fail-open,
// доступность важнее строгости), но логируется.
func (s *Service) consultWhitelist(ctx context.Context, op, email string) error {
	decision, err := s.gate.Decide(ctx, email, models.ProviderEmail)
	if err != nil {
		s.log.Error("whitelist lookup failed, allowing by policy", sl.Op(op), sl.Err(err))
		return nil
	}
	if !decision.Allowed {
		return fmt.Errorf("%s: %w", op, ErrNotWhitelisted)
	}
	return nil
}
