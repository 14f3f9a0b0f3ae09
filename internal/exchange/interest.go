package exchange

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rajivgeraev/barterhub-api/internal/events"
	"github.com/rajivgeraev/barterhub-api/internal/models"
)

// ExpressInterest регистрирует интерес пользователя к чужому объявлению.
// Если у владельца объявления уже есть встречный интерес со статусом
// proposed к одному из активных объявлений инициатора, обе стороны
// атомарно переводятся в accepted и пара получает общий чат.
func (s *Service) ExpressInterest(ctx context.Context, requesterID, offerID uuid.UUID) (*models.Interest, error) {
	offer, err := s.store.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	// Удалённое объявление не участвует в новых матчах
	if offer.Status != models.OfferActive {
		return nil, ErrNotFound
	}
	if offer.UserID == requesterID {
		return nil, ErrOwnOffer
	}

	interest := &models.Interest{
		ID:        uuid.New(),
		OfferID:   offerID,
		UserID:    requesterID,
		Status:    models.InterestProposed,
		CreatedAt: s.now(),
	}

	var matchedUsers []uuid.UUID

	err = s.store.WithTx(ctx, func(tx Store) error {
		if err := tx.InsertInterest(ctx, interest); err != nil {
			return err
		}

		// Взаимный матч: у владельца объявления есть proposed-интерес
		// к одному из активных объявлений инициатора
		myOffers, err := tx.ListActiveOfferIDs(ctx, requesterID)
		if err != nil {
			return err
		}

		reciprocal, err := tx.FindReciprocal(ctx, offer.UserID, myOffers)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		chatID, err := s.ensureChatForMatch(ctx, tx, requesterID, offer.UserID)
		if err != nil {
			return err
		}

		if err := setStatus(reciprocal, models.InterestAccepted); err != nil {
			return err
		}
		reciprocal.ChatID = &chatID
		if err := tx.UpdateInterest(ctx, reciprocal); err != nil {
			return err
		}

		if err := setStatus(interest, models.InterestAccepted); err != nil {
			return err
		}
		interest.ChatID = &chatID
		if err := tx.UpdateInterest(ctx, interest); err != nil {
			return err
		}

		matchedUsers = []uuid.UUID{requesterID, offer.UserID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(matchedUsers) > 0 {
		s.log.Info("найден взаимный интерес",
			zap.String("interest_id", interest.ID.String()),
			zap.String("chat_id", interest.ChatID.String()))
		for _, userID := range matchedUsers {
			s.events.Publish(ctx, userID, events.Event{
				Type:       events.EventMatchFound,
				ChatID:     interest.ChatID,
				InterestID: &interest.ID,
			})
		}
	}

	return interest, nil
}

// ensureChatForMatch создает чат для пары или переиспользует существующий.
// Гонка создания разрешается уникальным ключом пары: проигравшая сторона
// получает errChatExists и реактивирует чат победителя. Перед привязкой
// новых интересов от переиспользуемого чата отцепляются реализованные
// интересы предыдущего обмена этой же пары.
func (s *Service) ensureChatForMatch(ctx context.Context, tx Store, userX, userY uuid.UUID) (uuid.UUID, error) {
	userA, userB := models.CanonicalPair(userX, userY)

	now := s.now()
	chat := &models.Chat{
		ID:        uuid.New(),
		UserA:     userA,
		UserB:     userB,
		Status:    models.ChatActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := tx.InsertChat(ctx, chat)
	if err == nil {
		return chat.ID, nil
	}
	if !errors.Is(err, errChatExists) {
		return uuid.Nil, err
	}

	existing, err := tx.GetChatByPair(ctx, userA, userB)
	if err != nil {
		return uuid.Nil, err
	}

	if err := tx.SetChatStatus(ctx, existing.ID, models.ChatActive); err != nil {
		return uuid.Nil, err
	}
	if err := tx.DetachRealizedInterests(ctx, existing.ID); err != nil {
		return uuid.Nil, err
	}

	s.log.Info("чат пары переиспользован",
		zap.String("chat_id", existing.ID.String()))
	return existing.ID, nil
}

// CancelInterest удаляет интерес. Доступно только владельцу интереса
// и только до матча: удаление одной стороны сматченной пары оставило бы
// встречный интерес и чат в подвешенном состоянии.
func (s *Service) CancelInterest(ctx context.Context, requesterID, interestID uuid.UUID) error {
	return s.store.WithTx(ctx, func(tx Store) error {
		interest, err := tx.GetInterestForUpdate(ctx, interestID)
		if err != nil {
			return err
		}
		if interest.UserID != requesterID {
			return ErrForbidden
		}
		// статус перепроверяется под блокировкой строки: параллельный матч
		// мог успеть перевести интерес в accepted
		if interest.Status != models.InterestProposed {
			return ErrBadStatus
		}
		return tx.DeleteInterest(ctx, interestID)
	})
}

// OfferRemoved помечает объявление удалённым и каскадно удаляет
// несматченные интересы к нему. Чаты, в которых это объявление было
// репрезентативным, становятся заблокированными через политику блокировки.
func (s *Service) OfferRemoved(ctx context.Context, ownerID, offerID uuid.UUID) error {
	offer, err := s.store.GetOffer(ctx, offerID)
	if err != nil {
		return err
	}
	if offer.UserID != ownerID {
		return ErrForbidden
	}

	return s.store.WithTx(ctx, func(tx Store) error {
		if err := tx.SetOfferStatus(ctx, offerID, models.OfferRemoved); err != nil {
			return err
		}
		return tx.DeleteProposedByOffer(ctx, offerID)
	})
}
