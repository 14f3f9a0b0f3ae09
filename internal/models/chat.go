package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ChatStatus описывает состояние чата
type ChatStatus string

const (
	ChatActive   ChatStatus = "active"
	ChatArchived ChatStatus = "archived"
)

// Chat представляет единственный чат для пары пользователей.
// Пара хранится канонически: user_a < user_b по строковому сравнению UUID,
// на пару действует уникальный ключ.
type Chat struct {
	ID              uuid.UUID  `json:"id"`
	UserA           uuid.UUID  `json:"user_a"`
	UserB           uuid.UUID  `json:"user_b"`
	Status          ChatStatus `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	LastMessageText string     `json:"last_message_text,omitempty"`
	LastMessageTime *time.Time `json:"last_message_time,omitempty"`

	// Дополнительные поля для API
	Peer        *User `json:"peer,omitempty"`
	UnreadCount int   `json:"unread_count,omitempty"`
	IsLocked    bool  `json:"is_locked"`
}

// HasParticipant проверяет, что пользователь является участником чата
func (c *Chat) HasParticipant(userID uuid.UUID) bool {
	return c.UserA == userID || c.UserB == userID
}

// OtherParticipant возвращает второго участника чата
func (c *Chat) OtherParticipant(userID uuid.UUID) uuid.UUID {
	if c.UserA == userID {
		return c.UserB
	}
	return c.UserA
}

// CanonicalPair приводит пару пользователей к каноническому порядку
func CanonicalPair(x, y uuid.UUID) (uuid.UUID, uuid.UUID) {
	if strings.Compare(x.String(), y.String()) < 0 {
		return x, y
	}
	return y, x
}

// Message представляет сообщение в чате
type Message struct {
	ID        uuid.UUID `json:"id"`
	ChatID    uuid.UUID `json:"chat_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Text      string    `json:"text"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Дополнительные поля для API
	Sender *User `json:"sender,omitempty"`
}
