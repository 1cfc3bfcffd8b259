package oauth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/clinic-gate/internal/config"
	"github.com/magabrotheeeer/clinic-gate/internal/models"
	"github.com/magabrotheeeer/clinic-gate/internal/storage"
)

type UsersMock struct {
	mock.Mock
}

func (m *UsersMock) CreateUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *UsersMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func roleForAdmin(adminEmail string) func(string) string {
	return func(email string) string {
		if email == adminEmail {
			return models.RoleAdmin
		}
		return models.RoleUser
	}
}

func TestAuthURL(t *testing.T) {
	svc := NewService(config.OAuth{}, nil, roleForAdmin(""))

	url, err := svc.AuthURL(models.ProviderGoogle, "state-1")
	require.NoError(t, err)
	assert.Contains(t, url, "state=state-1")

	_, err = svc.AuthURL("github", "state-1")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestExchange_UnknownProvider(t *testing.T) {
	svc := NewService(config.OAuth{}, nil, roleForAdmin(""))

	_, err := svc.Exchange(context.Background(), "vk", "code")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestEnsureUser(t *testing.T) {
	profile := Profile{Email: "doctor@clinic.local", FirstName: "Ivan", LastName: "Ivanov"}

	t.Run("existing user keeps stored role", func(t *testing.T) {
		users := new(UsersMock)
		users.On("GetUserByEmail", mock.Anything, profile.Email).
			Return(&models.User{Email: profile.Email, Role: models.RoleAdmin}, nil).Once()
		svc := NewService(config.OAuth{}, users, roleForAdmin(""))

		role, err := svc.EnsureUser(context.Background(), profile)
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, role)
		users.AssertExpectations(t)
	})

	t.Run("new user provisioned without credentials", func(t *testing.T) {
		users := new(UsersMock)
		users.On("GetUserByEmail", mock.Anything, profile.Email).
			Return(nil, storage.ErrNotFound).Once()
		users.On("CreateUser", mock.Anything, models.User{
			Email:     profile.Email,
			Role:      models.RoleUser,
			FirstName: profile.FirstName,
			LastName:  profile.LastName,
		}).Return("uid-1", nil).Once()
		svc := NewService(config.OAuth{}, users, roleForAdmin(""))

		role, err := svc.EnsureUser(context.Background(), profile)
		require.NoError(t, err)
		assert.Equal(t, models.RoleUser, role)
		users.AssertExpectations(t)
	})

	t.Run("admin email gets admin role", func(t *testing.T) {
		users := new(UsersMock)
		users.On("GetUserByEmail", mock.Anything, profile.Email).
			Return(nil, storage.ErrNotFound).Once()
		users.On("CreateUser", mock.Anything, mock.Anything).Return("uid-2", nil).Once()
		svc := NewService(config.OAuth{}, users, roleForAdmin(profile.Email))

		role, err := svc.EnsureUser(context.Background(), profile)
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, role)
	})

	t.Run("storage error is propagated", func(t *testing.T) {
		users := new(UsersMock)
		users.On("GetUserByEmail", mock.Anything, profile.Email).
			Return(nil, errors.New("connection refused")).Once()
		svc := NewService(config.OAuth{}, users, roleForAdmin(""))

		_, err := svc.EnsureUser(context.Background(), profile)
		assert.Error(t, err)
	})
}

func TestParseProfiles(t *testing.T) {
	t.Run("google", func(t *testing.T) {
		p, err := parseGoogle([]byte(`{"email":"a@b.c","given_name":"Anna","family_name":"Orlova"}`))
		require.NoError(t, err)
		assert.Equal(t, Profile{Email: "a@b.c", FirstName: "Anna", LastName: "Orlova"}, p)
	})

	t.Run("yandex", func(t *testing.T) {
		p, err := parseYandex([]byte(`{"default_email":"a@b.c","first_name":"Anna","last_name":"Orlova"}`))
		require.NoError(t, err)
		assert.Equal(t, Profile{Email: "a@b.c", FirstName: "Anna", LastName: "Orlova"}, p)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := parseGoogle([]byte("not json"))
		assert.Error(t, err)
	})
}
