package models

import (
	"time"

	"github.com/google/uuid"
)

// ExchangeHistoryRecord — неизменяемая запись о завершённом обмене.
// Названия объявлений и имена участников копируются на момент обмена,
// последующее удаление объявлений историю не затрагивает.
type ExchangeHistoryRecord struct {
	ID          uuid.UUID `json:"id"`
	ChatID      uuid.UUID `json:"chat_id"`
	OfferAID    uuid.UUID `json:"offer_a_id"`
	OfferATitle string    `json:"offer_a_title"`
	OfferBID    uuid.UUID `json:"offer_b_id"`
	OfferBTitle string    `json:"offer_b_title"`
	UserAID     uuid.UUID `json:"user_a_id"`
	UserAName   string    `json:"user_a_name"`
	UserBID     uuid.UUID `json:"user_b_id"`
	UserBName   string    `json:"user_b_name"`
	RealizedAt  time.Time `json:"realized_at"`
}
