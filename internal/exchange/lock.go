package exchange

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rajivgeraev/barterhub-api/internal/models"
)

// IsChatLocked вычисляет, доступен ли чат только для чтения. Значение
// не хранится — вычисляется при каждом обращении. Любая внутренняя
// ошибка трактуется как «заблокирован».
//
// Чат заблокирован, если он архивирован, если хотя бы в одном
// направлении нет репрезентативного интереса, если репрезентативное
// объявление хотя бы одной стороны удалено, либо если оба
// репрезентативных интереса уже realized (обмен завершён, чат должен
// был быть архивирован — страховка на случай рассинхронизации).
func (s *Service) IsChatLocked(ctx context.Context, chatID uuid.UUID) bool {
	chat, err := s.store.GetChat(ctx, chatID)
	if err != nil {
		s.log.Warn("блокировка чата: чат недоступен",
			zap.String("chat_id", chatID.String()), zap.Error(err))
		return true
	}

	if chat.Status == models.ChatArchived {
		return true
	}

	dirAB, err := s.store.ListDirectedInterests(ctx, chat.UserA, chat.UserB)
	if err != nil {
		s.log.Warn("блокировка чата: ошибка выборки интересов",
			zap.String("chat_id", chatID.String()), zap.Error(err))
		return true
	}
	dirBA, err := s.store.ListDirectedInterests(ctx, chat.UserB, chat.UserA)
	if err != nil {
		s.log.Warn("блокировка чата: ошибка выборки интересов",
			zap.String("chat_id", chatID.String()), zap.Error(err))
		return true
	}

	repA := representative(dirAB)
	repB := representative(dirBA)
	if repA == nil || repB == nil {
		// в одном из направлений нет живого взаимного интереса
		return true
	}

	if repA.OfferStatus == models.OfferRemoved || repB.OfferStatus == models.OfferRemoved {
		return true
	}

	if repA.Interest.Status == models.InterestRealized && repB.Interest.Status == models.InterestRealized {
		return true
	}

	return false
}

// statusPriority задаёт приоритет статуса при выборе репрезентативного
// интереса направления
func statusPriority(s models.InterestStatus) int {
	switch s {
	case models.InterestRealized:
		return 3
	case models.InterestWaiting:
		return 2
	case models.InterestAccepted:
		return 1
	case models.InterestProposed:
		return 0
	}
	return -1
}

// representative выбирает репрезентативный интерес направления:
// интерес к активному объявлению предпочтительнее интереса к удалённому,
// при равенстве побеждает больший приоритет статуса. Так удаление
// объявления из старой, уже обменянной пары не ломает блокировку нового
// обмена между теми же пользователями.
func representative(interests []DirectedInterest) *DirectedInterest {
	var best *DirectedInterest
	for i := range interests {
		candidate := &interests[i]
		if best == nil {
			best = candidate
			continue
		}

		bestActive := best.OfferStatus == models.OfferActive
		candActive := candidate.OfferStatus == models.OfferActive
		if candActive != bestActive {
			if candActive {
				best = candidate
			}
			continue
		}

		if statusPriority(candidate.Interest.Status) > statusPriority(best.Interest.Status) {
			best = candidate
		}
	}
	return best
}
