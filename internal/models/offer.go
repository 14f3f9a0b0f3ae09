package models

import (
	"time"

	"github.com/google/uuid"
)

// OfferStatus описывает состояние объявления
type OfferStatus string

const (
	OfferActive  OfferStatus = "active"
	OfferRemoved OfferStatus = "removed"
)

// Offer представляет объявление о предмете для обмена
type Offer struct {
	ID        uuid.UUID   `json:"id"`
	UserID    uuid.UUID   `json:"user_id"`
	Title     string      `json:"title"`
	Status    OfferStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
