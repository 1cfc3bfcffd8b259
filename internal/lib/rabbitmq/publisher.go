// Package rabbitmq публикует события безопасности подсистемы аутентификации
// (регистрация пользователя, привязка устройства, изменение белого списка)
// во внешнюю очередь. Издатель необязателен: при nil-канале публикация
// пропускается.
package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Exchange и ключи маршрутизации событий аутентификации.
const (
	Exchange            = "clinic.auth"
	KeyUserRegistered   = "auth.user_registered"
	KeyDeviceEnrolled   = "auth.device_enrolled"
	KeyWhitelistChanged = "auth.whitelist_changed"
)

// Event описывает одно событие безопасности.
type Event struct {
	Email      string    `json:"email"`
	Provider   string    `json:"provider,omitempty"`
	DeviceName string    `json:"device_name,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher публикует события в RabbitMQ.
type Publisher struct {
	ch *amqp.Channel
}

// New создает издателя и объявляет exchange. conn == nil дает издателя,
// который молча пропускает публикации.
func New(conn *amqp.Connection) (*Publisher, error) {
	const op = "rabbitmq.New"
	if conn == nil {
		return &Publisher{}, nil
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.ExchangeDeclare(Exchange, "direct", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Publisher{ch: ch}, nil
}

// Publish публикует событие с заданным ключом маршрутизации.
func (p *Publisher) Publish(routingKey string, event Event) error {
	const op = "rabbitmq.Publish"
	if p == nil || p.ch == nil {
		return nil
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = p.ch.Publish(
		Exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
