package exchange

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rajivgeraev/barterhub-api/internal/models"
)

// archiveExchange создаёт неизменяемую запись о завершённом обмене
// и архивирует чат. Вызывается ровно один раз на обмен — из двойного
// перехода в realized, внутри той же транзакции. Названия объявлений
// и имена участников копируются: последующее удаление объявлений
// или переименование пользователей историю не меняет.
func (s *Service) archiveExchange(ctx context.Context, tx Store, interest, counterpart *models.Interest, realizedAt time.Time) (*models.ExchangeHistoryRecord, error) {
	chat, err := tx.GetChat(ctx, *interest.ChatID)
	if err != nil {
		return nil, err
	}

	// Интерес пользователя X указывает на объявление, которым владеет Y:
	// объявление стороны A обмена несёт интерес участника B, и наоборот
	offerOfA, offerOfB := counterpart, interest
	if interest.UserID == chat.UserB {
		offerOfA, offerOfB = interest, counterpart
	}

	offerA, err := tx.GetOffer(ctx, offerOfA.OfferID)
	if err != nil {
		return nil, err
	}
	offerB, err := tx.GetOffer(ctx, offerOfB.OfferID)
	if err != nil {
		return nil, err
	}

	userA, err := tx.GetUser(ctx, chat.UserA)
	if err != nil {
		return nil, err
	}
	userB, err := tx.GetUser(ctx, chat.UserB)
	if err != nil {
		return nil, err
	}

	record := &models.ExchangeHistoryRecord{
		ID:          uuid.New(),
		ChatID:      chat.ID,
		OfferAID:    offerA.ID,
		OfferATitle: offerA.Title,
		OfferBID:    offerB.ID,
		OfferBTitle: offerB.Title,
		UserAID:     chat.UserA,
		UserAName:   userA.DisplayName(),
		UserBID:     chat.UserB,
		UserBName:   userB.DisplayName(),
		RealizedAt:  realizedAt,
	}

	if err := tx.InsertHistory(ctx, record); err != nil {
		return nil, err
	}
	if err := tx.SetChatStatus(ctx, chat.ID, models.ChatArchived); err != nil {
		return nil, err
	}

	return record, nil
}
