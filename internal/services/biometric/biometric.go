// Package biometric реализует challenge-response обмен для регистрации и
// входа по биометрии устройства в духе WebAuthn.
//
// Машина состояний на сессию браузера: NoChallenge -> ChallengeIssued ->
// {Consumed | Expired}. Challenge живет в короткоживущей cookie; повторный
// запрос challenge перезаписывает предыдущий, действителен только последний.
// Проверка входа требует не только совпадения challenge, но и валидной
// подписи ECDSA P-256 над ним сохраненным публичным ключом устройства —
// совпадение challenge само по себе не доказывает владение ключом.
package biometric

import (
	"context"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/clinic-gate/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/clinic-gate/internal/models"
	"github.com/magabrotheeeer/clinic-gate/internal/storage"
)

// Ошибки уровня протокола.
var (
	// ErrChallengeMismatch — предъявленный challenge не совпал с выданным
	// или challenge истек.
	ErrChallengeMismatch = errors.New("challenge mismatch")
	// ErrNotEnabled — у пользователя нет ни одного зарегистрированного устройства.
	ErrNotEnabled = errors.New("biometrics not enabled")
	// ErrDeviceNotRecognized — пара (email, credential_id) не найдена.
	ErrDeviceNotRecognized = errors.New("device not recognized")
	// ErrBadSignature — подпись не проходит проверку сохраненным ключом.
	ErrBadSignature = errors.New("invalid assertion signature")
	// ErrInvalidKey — публичный ключ не парсится как ECDSA P-256.
	ErrInvalidKey = errors.New("invalid public key")
)

const challengeBytes = 32

// Repository описывает контракт для работы с биометрическими данными.
type Repository interface {
	UpsertBiometricCredential(ctx context.Context, cred models.BiometricCredential) error
	ListBiometricCredentialIDs(ctx context.Context, email string) ([]string, error)
	GetBiometricCredential(ctx context.Context, email, credentialID string) (*models.BiometricCredential, error)
}

// Service реализует обе стороны challenge-response обмена.
type Service struct {
	repo    Repository
	events  *rabbitmq.Publisher
	roleFor func(email string) string
}

// NewService создает новый экземпляр Service. roleFor отображает email
// владельца устройства в роль сессии.
func NewService(repo Repository, events *rabbitmq.Publisher, roleFor func(email string) string) *Service {
	return &Service{repo: repo, events: events, roleFor: roleFor}
}

// NewChallenge генерирует 32-байтовый случайный nonce в base64url.
func NewChallenge() (string, error) {
	const op = "biometric.NewChallenge"
	nonce := make([]byte, challengeBytes)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return base64.RawURLEncoding.EncodeToString(nonce), nil
}

// UserHandle возвращает стабильный идентификатор пользователя для
// аутентификатора, производный от email.
func UserHandle(email string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(storage.NormalizeEmail(email)))
}

// Register завершает регистрацию устройства: challenge из запроса должен
// в точности совпасть с выданным, ключ должен парситься как ECDSA P-256.
// Повторная регистрация того же credential_id обновляет ключ.
func (s *Service) Register(ctx context.Context, email, issued, presented, credentialID, publicKeyPEM, deviceName string) error {
	const op = "biometric.Register"

	if err := compareChallenges(issued, presented); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := parsePublicKey(publicKeyPEM); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	err := s.repo.UpsertBiometricCredential(ctx, models.BiometricCredential{
		UserEmail:    email,
		CredentialID: credentialID,
		PublicKey:    publicKeyPEM,
		DeviceName:   deviceName,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	_ = s.events.Publish(rabbitmq.KeyDeviceEnrolled, rabbitmq.Event{
		Email:      storage.NormalizeEmail(email),
		DeviceName: deviceName,
	})
	return nil
}

// LoginOptions возвращает список credential_id, которыми пользователь может
// войти. Пустой список означает, что биометрия не настроена.
func (s *Service) LoginOptions(ctx context.Context, email string) ([]string, error) {
	const op = "biometric.LoginOptions"

	ids, err := s.repo.ListBiometricCredentialIDs(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNotEnabled)
	}
	return ids, nil
}

// VerifyLogin завершает вход: challenge должен совпасть, устройство должно
// быть зарегистрировано за этим email, подпись signature (base64url,
// ASN.1 DER) должна быть валидна над SHA-256 от challenge. Возвращает роль
// для установки сессии.
func (s *Service) VerifyLogin(ctx context.Context, email, issued, presented, credentialID, signature string) (string, error) {
	const op = "biometric.VerifyLogin"

	if err := compareChallenges(issued, presented); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	cred, err := s.repo.GetBiometricCredential(ctx, email, credentialID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", op, ErrDeviceNotRecognized)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	key, err := parsePublicKey(cred.PublicKey)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	sig, err := base64.RawURLEncoding.DecodeString(signature)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrBadSignature)
	}
	digest := sha256.Sum256([]byte(presented))
	if !ecdsa.VerifyASN1(key, digest[:], sig) {
		return "", fmt.Errorf("%s: %w", op, ErrBadSignature)
	}
	return s.roleFor(email), nil
}

func compareChallenges(issued, presented string) error {
	if issued == "" || presented == "" {
		return ErrChallengeMismatch
	}
	if subtle.ConstantTimeCompare([]byte(issued), []byte(presented)) != 1 {
		return ErrChallengeMismatch
	}
	return nil
}

func parsePublicKey(pemData string) (*ecdsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, ErrInvalidKey
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, ErrInvalidKey
	}
	key, ok := parsed.(*ecdsa.PublicKey)
	if !ok {
		return nil, ErrInvalidKey
	}
	return key, nil
}
