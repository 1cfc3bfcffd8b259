// Package session управляет cookie, представляющими активную сессию.
//
// Все механизмы входа (пароль, PIN, OAuth, биометрия) сходятся в одной
// точке Establish, чтобы логика записи cookie не дублировалась по потокам.
// Каждый Establish и Terminate обязан сбросить серверный кэш страниц,
// содержимое которых зависит от роли и личности вызывающего, иначе
// устаревший кэш отдаст данные чужой роли.
package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/magabrotheeeer/clinic-gate/internal/lib/jwt"
	"github.com/magabrotheeeer/clinic-gate/internal/models"
)

// Имена cookie — часть контракта совместимости с фронтендом.
const (
	SessionCookie      = "clinic_session"
	AdminCookie        = "clinic_admin"
	EmailCookie        = "clinic_user_email"
	LoginChallengeName = "biometric_login_challenge"
	RegChallengeName   = "biometric_reg_challenge"
)

// ChallengeTTL время жизни challenge-cookie биометрического обмена.
const ChallengeTTL = 300 * time.Second

// PagePurger сбрасывает кэшированные рендеры страниц по префиксу ключа.
type PagePurger interface {
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// Префиксы ключей кэшированных страниц, зависящих от роли и личности.
var pagePrefixes = []string{"pages:patients:", "pages:calendar:", "pages:history:"}

// Manager записывает, читает и удаляет сессионные cookie.
type Manager struct {
	tokens   jwt.Maker
	pages    PagePurger
	userTTL  time.Duration
	adminTTL time.Duration
	secure   bool
}

// NewManager создает менеджер сессий. secure включает флаг Secure на cookie
// и должен быть истинным вне локального окружения.
func NewManager(tokens jwt.Maker, pages PagePurger, userTTL, adminTTL time.Duration, secure bool) *Manager {
	return &Manager{
		tokens:   tokens,
		pages:    pages,
		userTTL:  userTTL,
		adminTTL: adminTTL,
		secure:   secure,
	}
}

// Establish выпускает подписанный токен и записывает сессионные cookie.
// Для администратора ставится маркерная cookie; для обычного пользователя
// любой оставшийся маркер администратора явно удаляется, чтобы не оставить
// привилегий от предыдущей сессии.
func (m *Manager) Establish(ctx context.Context, w http.ResponseWriter, role, email string, remember bool) error {
	const op = "session.Establish"

	ttl := m.userTTL
	if role == models.RoleAdmin || remember {
		ttl = m.adminTTL
	}

	token, err := m.tokens.Generate(role, ttl)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	m.setCookie(w, SessionCookie, token, ttl)

	if role == models.RoleAdmin {
		m.setCookie(w, AdminCookie, "1", m.adminTTL)
	} else {
		m.deleteCookie(w, AdminCookie)
		m.setCookie(w, EmailCookie, email, ttl)
	}

	if err := m.purgePages(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Terminate удаляет все сессионные cookie и сбрасывает кэш страниц.
func (m *Manager) Terminate(ctx context.Context, w http.ResponseWriter) error {
	const op = "session.Terminate"
	m.deleteCookie(w, SessionCookie)
	m.deleteCookie(w, AdminCookie)
	m.deleteCookie(w, EmailCookie)

	if err := m.purgePages(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetChallenge записывает короткоживущую challenge-cookie. Повторный вызов
// перезаписывает предыдущий challenge: одновременно действителен только
// последний выданный.
func (m *Manager) SetChallenge(w http.ResponseWriter, name, value string) {
	m.setCookie(w, name, value, ChallengeTTL)
}

// ReadChallenge возвращает значение challenge-cookie или пустую строку.
func (m *Manager) ReadChallenge(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// DeleteChallenge удаляет challenge-cookie после использования.
func (m *Manager) DeleteChallenge(w http.ResponseWriter, name string) {
	m.deleteCookie(w, name)
}

func (m *Manager) purgePages(ctx context.Context) error {
	for _, prefix := range pagePrefixes {
		if err := m.pages.InvalidatePrefix(ctx, prefix); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) setCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) deleteCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
