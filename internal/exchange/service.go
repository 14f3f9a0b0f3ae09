package exchange

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rajivgeraev/barterhub-api/internal/events"
	"github.com/rajivgeraev/barterhub-api/internal/models"
)

// Service — ядро обменов: взаимный матчинг интересов, единственный чат
// на пару пользователей, двухстороннее подтверждение и архив обменов.
// Вся синхронизация конкурентных запросов делегирована хранилищу:
// уникальные ключи плюс транзакции через Store.WithTx.
type Service struct {
	store  Store
	log    *zap.Logger
	events events.Publisher
	now    func() time.Time
}

// NewService создает новый экземпляр Service
func NewService(store Store, log *zap.Logger, pub events.Publisher) *Service {
	return &Service{
		store:  store,
		log:    log,
		events: pub,
		now:    time.Now,
	}
}

// setStatus переводит интерес в следующий статус, сверяясь с таблицей
// жизненного цикла. Недопустимый переход — ошибка гарда, не паника.
func setStatus(interest *models.Interest, next models.InterestStatus) error {
	if !interest.Status.CanTransitionTo(next) {
		return ErrBadStatus
	}
	interest.Status = next
	return nil
}

// ListHistory возвращает завершённые обмены пользователя
func (s *Service) ListHistory(ctx context.Context, userID uuid.UUID) ([]models.ExchangeHistoryRecord, error) {
	return s.store.ListHistoryByUser(ctx, userID)
}

// ListInterests возвращает исходящие интересы пользователя
func (s *Service) ListInterests(ctx context.Context, userID uuid.UUID) ([]models.Interest, error) {
	return s.store.ListInterestsByUser(ctx, userID)
}

// ListIncomingInterests возвращает интересы других пользователей
// к объявлениям userID
func (s *Service) ListIncomingInterests(ctx context.Context, userID uuid.UUID) ([]models.Interest, error) {
	return s.store.ListInterestsByOfferOwner(ctx, userID)
}
