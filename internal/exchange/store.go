package exchange

import (
	"context"

	"github.com/google/uuid"

	"github.com/rajivgeraev/barterhub-api/internal/models"
)

// DirectedInterest — интерес пользователя X к объявлению пользователя Y
// вместе с текущим статусом объявления. Используется политикой блокировки
// чата для выбора репрезентативного интереса в каждом направлении.
type DirectedInterest struct {
	Interest    models.Interest
	OfferStatus models.OfferStatus
}

// Store — узкий интерфейс хранилища ядра обменов. Реализуется поверх
// PostgreSQL (PGStore); в тестах подменяется in-memory фейком.
//
// Методы с суффиксом ForUpdate берут блокировку строки и имеют смысл
// только внутри WithTx.
type Store interface {
	// WithTx выполняет fn в одной транзакции. Store, переданный в fn,
	// работает поверх транзакции; ошибка fn откатывает все изменения.
	WithTx(ctx context.Context, fn func(Store) error) error

	GetOffer(ctx context.Context, id uuid.UUID) (*models.Offer, error)
	SetOfferStatus(ctx context.Context, id uuid.UUID, status models.OfferStatus) error
	ListActiveOfferIDs(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error)

	GetInterest(ctx context.Context, id uuid.UUID) (*models.Interest, error)
	GetInterestForUpdate(ctx context.Context, id uuid.UUID) (*models.Interest, error)
	InsertInterest(ctx context.Context, interest *models.Interest) error
	UpdateInterest(ctx context.Context, interest *models.Interest) error
	DeleteInterest(ctx context.Context, id uuid.UUID) error
	DeleteProposedByOffer(ctx context.Context, offerID uuid.UUID) error
	ListInterestsByUser(ctx context.Context, userID uuid.UUID) ([]models.Interest, error)

	// ListInterestsByOfferOwner возвращает интересы других пользователей
	// к объявлениям владельца ownerID (входящее направление)
	ListInterestsByOfferOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Interest, error)

	// FindReciprocal ищет встречный интерес: интерес пользователя ownerID
	// со статусом proposed к одному из объявлений offerIDs. При нескольких
	// кандидатах побеждает самый ранний по created_at.
	FindReciprocal(ctx context.Context, ownerID uuid.UUID, offerIDs []uuid.UUID) (*models.Interest, error)

	// Counterpart ищет встречный интерес той же пары по общему чату,
	// в статусе accepted или waiting, исключая excludeID. Без блокировки.
	Counterpart(ctx context.Context, chatID, excludeID uuid.UUID) (*models.Interest, error)

	// CounterpartForUpdate — то же, но с блокировкой строки
	CounterpartForUpdate(ctx context.Context, chatID, excludeID uuid.UUID) (*models.Interest, error)

	InsertChat(ctx context.Context, chat *models.Chat) error
	GetChat(ctx context.Context, id uuid.UUID) (*models.Chat, error)
	GetChatByPair(ctx context.Context, userA, userB uuid.UUID) (*models.Chat, error)
	SetChatStatus(ctx context.Context, id uuid.UUID, status models.ChatStatus) error

	// DetachRealizedInterests очищает chat_id у реализованных интересов,
	// оставшихся от предыдущего завершённого обмена этой же пары
	DetachRealizedInterests(ctx context.Context, chatID uuid.UUID) error

	// ListDirectedInterests возвращает все интересы пользователя from
	// к объявлениям пользователя to вместе со статусами объявлений
	ListDirectedInterests(ctx context.Context, from, to uuid.UUID) ([]DirectedInterest, error)

	InsertHistory(ctx context.Context, record *models.ExchangeHistoryRecord) error
	ListHistoryByUser(ctx context.Context, userID uuid.UUID) ([]models.ExchangeHistoryRecord, error)

	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}
