// Package oauth реализует обмен кода авторизации на профиль пользователя
// у внешних провайдеров (Google, Yandex) и предоставление учетной записи
// при первом входе.
//
// Вход через OAuth проходит через тот же белый список, что и остальные
// механизмы: успешный обмен кода без допуска не дает сессии.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/magabrotheeeer/clinic-gate/internal/config"
	"github.com/magabrotheeeer/clinic-gate/internal/models"
	"github.com/magabrotheeeer/clinic-gate/internal/storage"
)

// ErrUnknownProvider возвращается для провайдера вне закрытого списка.
var ErrUnknownProvider = errors.New("unknown oauth provider")

// Profile — данные пользователя, полученные от провайдера.
type Profile struct {
	Email     string
	FirstName string
	LastName  string
}

type provider struct {
	config      *oauth2.Config
	userInfoURL string
	parse       func([]byte) (Profile, error)
}

// UserRepository описывает минимальный контракт для предоставления
// учетной записи при первом OAuth-входе.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Service обменивает код авторизации на профиль и заводит пользователя.
type Service struct {
	providers map[string]provider
	users     UserRepository
	roleFor   func(email string) string
}

// NewService настраивает клиентов Google и Yandex из конфига.
func NewService(cfg config.OAuth, users UserRepository, roleFor func(email string) string) *Service {
	return &Service{
		users:   users,
		roleFor: roleFor,
		providers: map[string]provider{
			models.ProviderGoogle: {
				config: &oauth2.Config{
					ClientID:     cfg.Google.ClientID,
					ClientSecret: cfg.Google.ClientSecret,
					RedirectURL:  cfg.Google.RedirectURL,
					Scopes:       []string{"openid", "email", "profile"},
					Endpoint:     endpoints.Google,
				},
				userInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
				parse:       parseGoogle,
			},
			models.ProviderYandex: {
				config: &oauth2.Config{
					ClientID:     cfg.Yandex.ClientID,
					ClientSecret: cfg.Yandex.ClientSecret,
					RedirectURL:  cfg.Yandex.RedirectURL,
					Scopes:       []string{"login:email", "login:info"},
					Endpoint:     endpoints.Yandex,
				},
				userInfoURL: "https://login.yandex.ru/info?format=json",
				parse:       parseYandex,
			},
		},
	}
}

// AuthURL возвращает адрес страницы согласия провайдера.
func (s *Service) AuthURL(providerName, state string) (string, error) {
	p, ok := s.providers[providerName]
	if !ok {
		return "", ErrUnknownProvider
	}
	return p.config.AuthCodeURL(state), nil
}

// Exchange обменивает код авторизации на профиль пользователя.
func (s *Service) Exchange(ctx context.Context, providerName, code string) (Profile, error) {
	const op = "oauth.Exchange"

	p, ok := s.providers[providerName]
	if !ok {
		return Profile{}, fmt.Errorf("%s: %w", op, ErrUnknownProvider)
	}

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	client := p.config.Client(ctx, token)
	resp, err := client.Get(p.userInfoURL)
	if err != nil {
		return Profile{}, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return Profile{}, fmt.Errorf("%s: userinfo status %d", op, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	profile, err := p.parse(body)
	if err != nil {
		return Profile{}, fmt.Errorf("%s: %w", op, err)
	}
	profile.Email = storage.NormalizeEmail(profile.Email)
	if profile.Email == "" {
		return Profile{}, fmt.Errorf("%s: provider returned no email", op)
	}
	return profile, nil
}

// EnsureUser возвращает существующего пользователя или создает нового
// без парольных учетных данных. Возвращает роль для установки сессии.
func (s *Service) EnsureUser(ctx context.Context, profile Profile) (string, error) {
	const op = "oauth.EnsureUser"

	user, err := s.users.GetUserByEmail(ctx, profile.Email)
	if err == nil {
		return user.Role, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	role := s.roleFor(profile.Email)
	_, err = s.users.CreateUser(ctx, models.User{
		Email:     profile.Email,
		Role:      role,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
	})
	if err != nil && !errors.Is(err, storage.ErrAlreadyExists) {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return role, nil
}

func parseGoogle(body []byte) (Profile, error) {
	var payload struct {
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Profile{}, err
	}
	return Profile{Email: payload.Email, FirstName: payload.GivenName, LastName: payload.FamilyName}, nil
}

func parseYandex(body []byte) (Profile, error) {
	var payload struct {
		DefaultEmail string `json:"default_email"`
		FirstName    string `json:"first_name"`
		LastName     string `json:"last_name"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Profile{}, err
	}
	return Profile{Email: payload.DefaultEmail, FirstName: payload.FirstName, LastName: payload.LastName}, nil
}
