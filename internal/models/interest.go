package models

import (
	"time"

	"github.com/google/uuid"
)

// InterestStatus описывает статус интереса в жизненном цикле обмена.
// Переходы между статусами проверяются через CanTransitionTo —
// сравнение «голых» строк в коде сервисов недопустимо.
type InterestStatus string

const (
	// InterestProposed — интерес создан, взаимного интереса пока нет
	InterestProposed InterestStatus = "proposed"
	// InterestAccepted — найден взаимный интерес, чат создан
	InterestAccepted InterestStatus = "accepted"
	// InterestWaiting — одна сторона подтвердила обмен, ждём вторую
	InterestWaiting InterestStatus = "waiting"
	// InterestRealized — обе стороны подтвердили обмен, терминальный статус
	InterestRealized InterestStatus = "realized"
)

// Valid проверяет, что статус принадлежит закрытому множеству
func (s InterestStatus) Valid() bool {
	switch s {
	case InterestProposed, InterestAccepted, InterestWaiting, InterestRealized:
		return true
	}
	return false
}

// CanTransitionTo проверяет допустимость перехода по таблице жизненного цикла
func (s InterestStatus) CanTransitionTo(next InterestStatus) bool {
	switch s {
	case InterestProposed:
		return next == InterestAccepted
	case InterestAccepted:
		return next == InterestWaiting || next == InterestRealized
	case InterestWaiting:
		return next == InterestRealized || next == InterestAccepted
	case InterestRealized:
		// терминальный статус, выхода нет
		return false
	}
	return false
}

// Terminal сообщает, является ли статус конечным
func (s InterestStatus) Terminal() bool {
	return s == InterestRealized
}

// Interest представляет интерес пользователя к чужому объявлению
type Interest struct {
	ID         uuid.UUID      `json:"id"`
	OfferID    uuid.UUID      `json:"offer_id"`
	UserID     uuid.UUID      `json:"user_id"`
	Status     InterestStatus `json:"status"`
	ChatID     *uuid.UUID     `json:"chat_id,omitempty"`
	RealizedAt *time.Time     `json:"realized_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`

	// Дополнительные поля для API
	Offer *Offer `json:"offer,omitempty"`
	User  *User  `json:"user,omitempty"`
}
