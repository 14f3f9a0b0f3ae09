package exchange

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/barterhub-api/internal/models"
)

// addChat создает чат пары с заданным статусом напрямую в хранилище
func (f *fixture) addChat(t *testing.T, status models.ChatStatus) uuid.UUID {
	t.Helper()
	userA, userB := models.CanonicalPair(f.userA, f.userB)
	chat := &models.Chat{
		ID:     uuid.New(),
		UserA:  userA,
		UserB:  userB,
		Status: status,
	}
	require.NoError(t, f.store.InsertChat(context.Background(), chat))
	return chat.ID
}

// addInterest создает интерес напрямую в хранилище
func (f *fixture) addInterest(t *testing.T, userID, offerID uuid.UUID, status models.InterestStatus, chatID *uuid.UUID) uuid.UUID {
	t.Helper()
	interest := &models.Interest{
		ID:      uuid.New(),
		OfferID: offerID,
		UserID:  userID,
		Status:  status,
		ChatID:  chatID,
	}
	require.NoError(t, f.store.InsertInterest(context.Background(), interest))
	return interest.ID
}

func TestChatLockedWhenMissing(t *testing.T) {
	f := newFixture(t)

	assert.True(t, f.svc.IsChatLocked(context.Background(), uuid.New()))
}

func TestChatLockedWhenArchived(t *testing.T) {
	f := newFixture(t)
	chatID := f.addChat(t, models.ChatArchived)

	assert.True(t, f.svc.IsChatLocked(context.Background(), chatID))
}

func TestChatUnlockedForActiveMatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, interestA := f.match(t)

	assert.False(t, f.svc.IsChatLocked(ctx, *interestA.ChatID))
}

func TestChatLockedWithoutReciprocalInterest(t *testing.T) {
	f := newFixture(t)
	chatID := f.addChat(t, models.ChatActive)

	// интерес есть только в одном направлении
	f.addInterest(t, f.userB, f.offerA, models.InterestAccepted, &chatID)

	assert.True(t, f.svc.IsChatLocked(context.Background(), chatID))
}

func TestChatLockedWhenRepresentativeOfferRemoved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, interestA := f.match(t)
	chatID := *interestA.ChatID
	require.False(t, f.svc.IsChatLocked(ctx, chatID))

	// удаление объявления одной из сторон блокирует чат
	require.NoError(t, f.store.SetOfferStatus(ctx, f.offerA, models.OfferRemoved))

	assert.True(t, f.svc.IsChatLocked(ctx, chatID))
}

func TestChatLockedWhenBothRealized(t *testing.T) {
	f := newFixture(t)
	chatID := f.addChat(t, models.ChatActive)

	// обмен завершён, но чат почему-то не архивирован — страховка
	f.addInterest(t, f.userB, f.offerA, models.InterestRealized, &chatID)
	f.addInterest(t, f.userA, f.offerB, models.InterestRealized, &chatID)

	assert.True(t, f.svc.IsChatLocked(context.Background(), chatID))
}

func TestLockPrefersActiveOfferOverRemoved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	chatID := f.addChat(t, models.ChatActive)

	// старый завершённый обмен: объявления сняты, интересы realized
	oldOfferA := f.addOffer(f.userA, "Старый стол", models.OfferRemoved)
	oldOfferB := f.addOffer(f.userB, "Старый стул", models.OfferRemoved)
	f.addInterest(t, f.userB, oldOfferA, models.InterestRealized, nil)
	f.addInterest(t, f.userA, oldOfferB, models.InterestRealized, nil)

	// новый обмен: интересы к активным объявлениям
	f.addInterest(t, f.userB, f.offerA, models.InterestAccepted, &chatID)
	f.addInterest(t, f.userA, f.offerB, models.InterestAccepted, &chatID)

	// репрезентативными становятся интересы к активным объявлениям,
	// старый завершённый обмен чат не блокирует
	assert.False(t, f.svc.IsChatLocked(ctx, chatID))
}

func TestLockStatusPriorityWithinSameActivity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	chatID := f.addChat(t, models.ChatActive)

	secondOfferA := f.addOffer(f.userA, "Коньки", models.OfferActive)

	// в направлении B→A два кандидата к активным объявлениям:
	// waiting приоритетнее proposed
	f.addInterest(t, f.userB, f.offerA, models.InterestWaiting, &chatID)
	f.addInterest(t, f.userB, secondOfferA, models.InterestProposed, nil)

	f.addInterest(t, f.userA, f.offerB, models.InterestAccepted, &chatID)

	assert.False(t, f.svc.IsChatLocked(ctx, chatID))
}
