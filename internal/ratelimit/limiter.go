// Package ratelimit реализует счетчик запросов с фиксированным окном,
// ограничивающий попытки ввода учетных данных по идентификатору клиента.
//
// Разные логические операции должны использовать разные идентификаторы
// (например префикс "pin_login_" для входа по PIN), чтобы не делить общий
// бюджет попыток.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter описывает контракт лимитера, чтобы вызывающий код не зависел от
// конкретного хранилища счетчиков и позволял заменить его на распределенное.
type Limiter interface {
	// Check регистрирует попытку и сообщает, разрешена ли она.
	Check(identifier string, maxRequests int, window time.Duration) bool
	// ResetTime возвращает, сколько осталось до сброса окна идентификатора.
	ResetTime(identifier string) time.Duration
	// Reset удаляет счетчик идентификатора.
	Reset(identifier string)
}

type entry struct {
	count int
	reset time.Time
}

// MemoryLimiter хранит счетчики в памяти процесса. Проверка и инкремент
// выполняются под мьютексом: два конкурентных запроса не могут оба увидеть
// счетчик "под лимитом" до инкремента.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	done    chan struct{}
	once    sync.Once
}

const sweepInterval = 60 * time.Second

// NewMemory создает лимитер и запускает фоновую очистку истекших окон,
// ограничивающую рост карты.
func NewMemory() *MemoryLimiter {
	l := &MemoryLimiter{
		entries: map[string]*entry{},
		done:    make(chan struct{}),
	}
	go l.sweep()
	return l
}

// Check регистрирует попытку для идентификатора. Первая попытка в окне
// создает счетчик и разрешается, попытки сверх maxRequests отклоняются.
func (l *MemoryLimiter) Check(identifier string, maxRequests int, window time.Duration) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[identifier]
	if !ok || now.After(e.reset) {
		l.entries[identifier] = &entry{count: 1, reset: now.Add(window)}
		return true
	}
	if e.count >= maxRequests {
		return false
	}
	e.count++
	return true
}

// ResetTime возвращает оставшееся время окна идентификатора, ноль если
// окно отсутствует или уже истекло.
func (l *MemoryLimiter) ResetTime(identifier string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[identifier]
	if !ok {
		return 0
	}
	remaining := time.Until(e.reset)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Reset удаляет счетчик идентификатора.
func (l *MemoryLimiter) Reset(identifier string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, identifier)
}

// Stop останавливает фоновую очистку.
func (l *MemoryLimiter) Stop() {
	l.once.Do(func() { close(l.done) })
}

func (l *MemoryLimiter) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-l.done:
			return
		case now := <-ticker.C:
			l.mu.Lock()
			for k, e := range l.entries {
				if now.After(e.reset) {
					delete(l.entries, k)
				}
			}
			l.mu.Unlock()
		}
	}
}
