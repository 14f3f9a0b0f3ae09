package exchange

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/rajivgeraev/barterhub-api/internal/models"
)

// memStore — in-memory реализация Store для тестов ядра.
// Повторяет семантику уникальных ключей PostgreSQL: дубликат
// (offer_id, user_id) даёт ErrDuplicate, занятая пара чата — errChatExists.
type memStore struct {
	offers    map[uuid.UUID]*models.Offer
	interests map[uuid.UUID]*models.Interest
	chats     map[uuid.UUID]*models.Chat
	users     map[uuid.UUID]*models.User
	history   []models.ExchangeHistoryRecord

	// beforeTx выполняется один раз перед началом следующей транзакции:
	// имитирует конкурентную операцию, успевшую раньше
	beforeTx func()

	// locked накапливает порядок взятия блокировок строк интересов
	locked []uuid.UUID
}

func newMemStore() *memStore {
	return &memStore{
		offers:    make(map[uuid.UUID]*models.Offer),
		interests: make(map[uuid.UUID]*models.Interest),
		chats:     make(map[uuid.UUID]*models.Chat),
		users:     make(map[uuid.UUID]*models.User),
	}
}

func (m *memStore) WithTx(ctx context.Context, fn func(Store) error) error {
	if m.beforeTx != nil {
		hook := m.beforeTx
		m.beforeTx = nil
		hook()
	}
	return fn(m)
}

func (m *memStore) GetOffer(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	offer, ok := m.offers[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *offer
	return &copied, nil
}

func (m *memStore) SetOfferStatus(ctx context.Context, id uuid.UUID, status models.OfferStatus) error {
	offer, ok := m.offers[id]
	if !ok {
		return ErrNotFound
	}
	offer.Status = status
	return nil
}

func (m *memStore) ListActiveOfferIDs(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, offer := range m.offers {
		if offer.UserID == ownerID && offer.Status == models.OfferActive {
			ids = append(ids, offer.ID)
		}
	}
	return ids, nil
}

func (m *memStore) GetInterest(ctx context.Context, id uuid.UUID) (*models.Interest, error) {
	interest, ok := m.interests[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *interest
	return &copied, nil
}

func (m *memStore) GetInterestForUpdate(ctx context.Context, id uuid.UUID) (*models.Interest, error) {
	m.locked = append(m.locked, id)
	return m.GetInterest(ctx, id)
}

func (m *memStore) InsertInterest(ctx context.Context, interest *models.Interest) error {
	for _, existing := range m.interests {
		if existing.OfferID == interest.OfferID && existing.UserID == interest.UserID {
			return ErrDuplicate
		}
	}
	copied := *interest
	m.interests[interest.ID] = &copied
	return nil
}

func (m *memStore) UpdateInterest(ctx context.Context, interest *models.Interest) error {
	if _, ok := m.interests[interest.ID]; !ok {
		return ErrNotFound
	}
	copied := *interest
	m.interests[interest.ID] = &copied
	return nil
}

func (m *memStore) DeleteInterest(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.interests[id]; !ok {
		return ErrNotFound
	}
	delete(m.interests, id)
	return nil
}

func (m *memStore) DeleteProposedByOffer(ctx context.Context, offerID uuid.UUID) error {
	for id, interest := range m.interests {
		if interest.OfferID == offerID && interest.Status == models.InterestProposed {
			delete(m.interests, id)
		}
	}
	return nil
}

func (m *memStore) ListInterestsByUser(ctx context.Context, userID uuid.UUID) ([]models.Interest, error) {
	var result []models.Interest
	for _, interest := range m.interests {
		if interest.UserID == userID {
			result = append(result, *interest)
		}
	}
	return result, nil
}

func (m *memStore) ListInterestsByOfferOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Interest, error) {
	var result []models.Interest
	for _, interest := range m.interests {
		offer, ok := m.offers[interest.OfferID]
		if ok && offer.UserID == ownerID {
			result = append(result, *interest)
		}
	}
	return result, nil
}

func (m *memStore) FindReciprocal(ctx context.Context, ownerID uuid.UUID, offerIDs []uuid.UUID) (*models.Interest, error) {
	inSet := make(map[uuid.UUID]bool, len(offerIDs))
	for _, id := range offerIDs {
		inSet[id] = true
	}

	var candidates []*models.Interest
	for _, interest := range m.interests {
		if interest.UserID == ownerID && interest.Status == models.InterestProposed && inSet[interest.OfferID] {
			candidates = append(candidates, interest)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNotFound
	}

	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].CreatedAt.Equal(candidates[j].CreatedAt) {
			return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
		}
		return strings.Compare(candidates[i].ID.String(), candidates[j].ID.String()) < 0
	})

	copied := *candidates[0]
	return &copied, nil
}

func (m *memStore) Counterpart(ctx context.Context, chatID, excludeID uuid.UUID) (*models.Interest, error) {
	for _, interest := range m.interests {
		if interest.ID == excludeID || interest.ChatID == nil || *interest.ChatID != chatID {
			continue
		}
		if interest.Status == models.InterestAccepted || interest.Status == models.InterestWaiting {
			copied := *interest
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) CounterpartForUpdate(ctx context.Context, chatID, excludeID uuid.UUID) (*models.Interest, error) {
	counterpart, err := m.Counterpart(ctx, chatID, excludeID)
	if err != nil {
		return nil, err
	}
	m.locked = append(m.locked, counterpart.ID)
	return counterpart, nil
}

func (m *memStore) InsertChat(ctx context.Context, chat *models.Chat) error {
	for _, existing := range m.chats {
		if existing.UserA == chat.UserA && existing.UserB == chat.UserB {
			return errChatExists
		}
	}
	copied := *chat
	m.chats[chat.ID] = &copied
	return nil
}

func (m *memStore) GetChat(ctx context.Context, id uuid.UUID) (*models.Chat, error) {
	chat, ok := m.chats[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *chat
	return &copied, nil
}

func (m *memStore) GetChatByPair(ctx context.Context, userA, userB uuid.UUID) (*models.Chat, error) {
	for _, chat := range m.chats {
		if chat.UserA == userA && chat.UserB == userB {
			copied := *chat
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) SetChatStatus(ctx context.Context, id uuid.UUID, status models.ChatStatus) error {
	chat, ok := m.chats[id]
	if !ok {
		return ErrNotFound
	}
	chat.Status = status
	return nil
}

func (m *memStore) DetachRealizedInterests(ctx context.Context, chatID uuid.UUID) error {
	for _, interest := range m.interests {
		if interest.ChatID != nil && *interest.ChatID == chatID && interest.Status == models.InterestRealized {
			interest.ChatID = nil
		}
	}
	return nil
}

func (m *memStore) ListDirectedInterests(ctx context.Context, from, to uuid.UUID) ([]DirectedInterest, error) {
	var result []DirectedInterest
	for _, interest := range m.interests {
		if interest.UserID != from {
			continue
		}
		offer, ok := m.offers[interest.OfferID]
		if !ok || offer.UserID != to {
			continue
		}
		result = append(result, DirectedInterest{
			Interest:    *interest,
			OfferStatus: offer.Status,
		})
	}
	return result, nil
}

func (m *memStore) InsertHistory(ctx context.Context, record *models.ExchangeHistoryRecord) error {
	m.history = append(m.history, *record)
	return nil
}

func (m *memStore) ListHistoryByUser(ctx context.Context, userID uuid.UUID) ([]models.ExchangeHistoryRecord, error) {
	var result []models.ExchangeHistoryRecord
	for _, record := range m.history {
		if record.UserAID == userID || record.UserBID == userID {
			result = append(result, record)
		}
	}
	return result, nil
}

func (m *memStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}
