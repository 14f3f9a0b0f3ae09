package exchange

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rajivgeraev/barterhub-api/internal/events"
	"github.com/rajivgeraev/barterhub-api/internal/models"
)

// Realize подтверждает обмен со стороны участника. Первая сторона
// переходит accepted → waiting; вторая, увидев встречный waiting,
// переводит оба интереса в realized с одинаковым realized_at, создаёт
// запись истории и архивирует чат. Вся последовательность выполняется
// в одной транзакции с блокировкой строк, поэтому при одновременных
// вызовах двойной переход срабатывает ровно один раз.
func (s *Service) Realize(ctx context.Context, actorID, interestID uuid.UUID) (*models.Interest, error) {
	var (
		result   *models.Interest
		archived *models.ExchangeHistoryRecord
	)

	err := s.store.WithTx(ctx, func(tx Store) error {
		interest, counterpart, err := s.lockExchangePair(ctx, tx, interestID)
		if err != nil {
			return err
		}

		if err := s.authorizeParticipant(ctx, tx, actorID, interest); err != nil {
			return err
		}

		switch interest.Status {
		case models.InterestWaiting, models.InterestRealized:
			// подтверждение уже учтено — сообщаем явно, не молчим
			return ErrAlreadyRealized
		case models.InterestAccepted:
			// допустимый исходный статус
		default:
			return ErrBadStatus
		}

		if interest.ChatID == nil {
			s.log.Error("у принятого интереса отсутствует чат",
				zap.String("interest_id", interest.ID.String()))
			return ErrStorage
		}

		if counterpart == nil {
			s.log.Error("у принятого интереса отсутствует встречный",
				zap.String("interest_id", interest.ID.String()),
				zap.String("chat_id", interest.ChatID.String()))
			return ErrStorage
		}

		now := s.now()

		if counterpart.Status == models.InterestWaiting {
			// обе стороны подтвердили: двойной переход + архив
			if err := setStatus(interest, models.InterestRealized); err != nil {
				return err
			}
			if err := setStatus(counterpart, models.InterestRealized); err != nil {
				return err
			}
			interest.RealizedAt = &now
			counterpart.RealizedAt = &now

			if err := tx.UpdateInterest(ctx, interest); err != nil {
				return err
			}
			if err := tx.UpdateInterest(ctx, counterpart); err != nil {
				return err
			}

			record, err := s.archiveExchange(ctx, tx, interest, counterpart, now)
			if err != nil {
				return err
			}
			archived = record
		} else {
			if err := setStatus(interest, models.InterestWaiting); err != nil {
				return err
			}
			interest.RealizedAt = &now
			if err := tx.UpdateInterest(ctx, interest); err != nil {
				return err
			}
		}

		result = interest
		return nil
	})
	if err != nil {
		return nil, err
	}

	if archived != nil {
		s.log.Info("обмен завершён",
			zap.String("chat_id", archived.ChatID.String()),
			zap.String("history_id", archived.ID.String()))
		for _, userID := range []uuid.UUID{archived.UserAID, archived.UserBID} {
			s.events.Publish(ctx, userID, events.Event{
				Type:   events.EventExchangeRealized,
				ChatID: &archived.ChatID,
			})
			s.events.Publish(ctx, userID, events.Event{
				Type:   events.EventChatArchived,
				ChatID: &archived.ChatID,
			})
		}
	}

	return result, nil
}

// Unrealize отзывает подтверждение обмена: waiting → accepted,
// realized_at очищается. Из realized выхода нет.
func (s *Service) Unrealize(ctx context.Context, actorID, interestID uuid.UUID) (*models.Interest, error) {
	var result *models.Interest

	err := s.store.WithTx(ctx, func(tx Store) error {
		interest, err := tx.GetInterestForUpdate(ctx, interestID)
		if err != nil {
			return err
		}

		if err := s.authorizeParticipant(ctx, tx, actorID, interest); err != nil {
			return err
		}

		switch interest.Status {
		case models.InterestRealized:
			return ErrAlreadyRealized
		case models.InterestWaiting:
			// допустимый исходный статус
		default:
			return ErrBadStatus
		}

		if err := setStatus(interest, models.InterestAccepted); err != nil {
			return err
		}
		interest.RealizedAt = nil
		if err := tx.UpdateInterest(ctx, interest); err != nil {
			return err
		}

		result = interest
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// lockExchangePair блокирует интерес и его встречный в порядке
// возрастания id. Одновременные подтверждения противоположных сторон
// берут блокировки в одном порядке и не взаимоблокируются. Между
// предварительным чтением и блокировкой состояние может измениться,
// поэтому пара перепроверяется по заблокированным строкам.
func (s *Service) lockExchangePair(ctx context.Context, tx Store, interestID uuid.UUID) (*models.Interest, *models.Interest, error) {
	peek, err := tx.GetInterest(ctx, interestID)
	if err != nil {
		return nil, nil, err
	}

	var counterpart *models.Interest
	if peek.ChatID != nil {
		other, err := tx.Counterpart(ctx, *peek.ChatID, interestID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, nil, err
		}
		if other != nil && other.ID.String() < interestID.String() {
			counterpart, err = tx.GetInterestForUpdate(ctx, other.ID)
			if err != nil && !errors.Is(err, ErrNotFound) {
				return nil, nil, err
			}
		}
	}

	interest, err := tx.GetInterestForUpdate(ctx, interestID)
	if err != nil {
		return nil, nil, err
	}

	if counterpart != nil && !pairedWith(counterpart, interest) {
		counterpart = nil
	}
	if counterpart == nil && interest.ChatID != nil {
		counterpart, err = tx.CounterpartForUpdate(ctx, *interest.ChatID, interest.ID)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				return nil, nil, err
			}
			counterpart = nil
		}
	}

	return interest, counterpart, nil
}

// pairedWith проверяет, что встречный интерес всё ещё привязан к тому же
// чату и участвует в обмене
func pairedWith(counterpart, interest *models.Interest) bool {
	if counterpart.ChatID == nil || interest.ChatID == nil || *counterpart.ChatID != *interest.ChatID {
		return false
	}
	return counterpart.Status == models.InterestAccepted || counterpart.Status == models.InterestWaiting
}

// authorizeParticipant пропускает только стороны обмена: владельца
// интереса либо владельца объявления, на которое интерес указывает
func (s *Service) authorizeParticipant(ctx context.Context, tx Store, actorID uuid.UUID, interest *models.Interest) error {
	if interest.UserID == actorID {
		return nil
	}

	offer, err := tx.GetOffer(ctx, interest.OfferID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.log.Error("объявление интереса не найдено",
				zap.String("interest_id", interest.ID.String()),
				zap.String("offer_id", interest.OfferID.String()))
			return ErrStorage
		}
		return err
	}
	if offer.UserID != actorID {
		return ErrForbidden
	}
	return nil
}
