package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType определяет тип события для уведомления пользователя
type EventType string

const (
	EventMatchFound       EventType = "match_found"
	EventExchangeRealized EventType = "exchange_realized"
	EventChatArchived     EventType = "chat_archived"
	EventNewMessage       EventType = "new_message"
)

// Event представляет событие, публикуемое во внешний pub/sub.
// Доставка до клиента — забота внешнего транспорта.
type Event struct {
	Type       EventType  `json:"type"`
	ChatID     *uuid.UUID `json:"chat_id,omitempty"`
	InterestID *uuid.UUID `json:"interest_id,omitempty"`
	MessageID  *uuid.UUID `json:"message_id,omitempty"`
	FromUserID *uuid.UUID `json:"from_user_id,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

// Publisher публикует события для пользователей. Ошибки публикации
// логируются реализацией и не влияют на исход операции.
type Publisher interface {
	Publish(ctx context.Context, userID uuid.UUID, event Event)
	Close() error
}

// NopPublisher — заглушка для тестов и окружений без Redis
type NopPublisher struct{}

// Publish ничего не делает
func (NopPublisher) Publish(ctx context.Context, userID uuid.UUID, event Event) {}

// Close ничего не делает
func (NopPublisher) Close() error { return nil }
