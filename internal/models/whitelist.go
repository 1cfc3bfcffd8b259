package models

// Провайдеры, через которых запись белого списка разрешает вход.
const (
	ProviderGoogle = "google"
	ProviderYandex = "yandex"
	ProviderEmail  = "email"
)

// WhitelistEntry представляет запись белого списка: пара (email, provider)
// плюс необязательные списки врачей и медсестер, сужающие видимые данные.
type WhitelistEntry struct {
	ID       int      // Идентификатор записи
	Email    string   // Электронная почта, нормализованная
	Provider string   // google, yandex или email
	Doctors  []string // Видимые врачи, пустой список — без ограничений
	Nurses   []string // Видимые медсестры, пустой список — без ограничений
}

// KnownProvider сообщает, входит ли провайдер в закрытый список поддерживаемых.
func KnownProvider(provider string) bool {
	switch provider {
	case ProviderGoogle, ProviderYandex, ProviderEmail:
		return true
	}
	return false
}
