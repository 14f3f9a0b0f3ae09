package exchange

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rajivgeraev/barterhub-api/internal/models"
)

// querier покрывает общие методы pgxpool.Pool и pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGStore реализует Store поверх PostgreSQL
type PGStore struct {
	pool *pgxpool.Pool
	db   querier
}

// NewPGStore создает новый экземпляр PGStore
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool, db: pool}
}

// WithTx выполняет fn в транзакции. Вложенный вызов выполняется
// в уже открытой транзакции.
func (s *PGStore) WithTx(ctx context.Context, fn func(Store) error) error {
	if s.pool == nil {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&PGStore{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return nil
}

// isUniqueViolation проверяет нарушение уникального ключа
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// GetOffer возвращает объявление по ID
func (s *PGStore) GetOffer(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	err := s.db.QueryRow(ctx, `
        SELECT id, user_id, title, status, created_at, updated_at
        FROM offers
        WHERE id = $1
    `, id).Scan(&offer.ID, &offer.UserID, &offer.Title, &offer.Status, &offer.CreatedAt, &offer.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return &offer, nil
}

// SetOfferStatus обновляет статус объявления
func (s *PGStore) SetOfferStatus(ctx context.Context, id uuid.UUID, status models.OfferStatus) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE offers
        SET status = $1, updated_at = NOW()
        WHERE id = $2
    `, status, id)

	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListActiveOfferIDs возвращает ID активных объявлений пользователя
func (s *PGStore) ListActiveOfferIDs(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id FROM offers
        WHERE user_id = $1 AND status = 'active'
    `, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const interestColumns = `id, offer_id, user_id, status, chat_id, realized_at, created_at`

func scanInterest(row pgx.Row) (*models.Interest, error) {
	var interest models.Interest
	err := row.Scan(
		&interest.ID,
		&interest.OfferID,
		&interest.UserID,
		&interest.Status,
		&interest.ChatID,
		&interest.RealizedAt,
		&interest.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return &interest, nil
}

// GetInterest возвращает интерес по ID
func (s *PGStore) GetInterest(ctx context.Context, id uuid.UUID) (*models.Interest, error) {
	return scanInterest(s.db.QueryRow(ctx, `
        SELECT `+interestColumns+` FROM interests WHERE id = $1
    `, id))
}

// GetInterestForUpdate возвращает интерес по ID с блокировкой строки
func (s *PGStore) GetInterestForUpdate(ctx context.Context, id uuid.UUID) (*models.Interest, error) {
	return scanInterest(s.db.QueryRow(ctx, `
        SELECT `+interestColumns+` FROM interests WHERE id = $1 FOR UPDATE
    `, id))
}

// InsertInterest вставляет новый интерес. Нарушение уникального ключа
// (offer_id, user_id) отображается в ErrDuplicate.
func (s *PGStore) InsertInterest(ctx context.Context, interest *models.Interest) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO interests (id, offer_id, user_id, status, chat_id, realized_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, interest.ID, interest.OfferID, interest.UserID, interest.Status, interest.ChatID, interest.RealizedAt, interest.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

// UpdateInterest сохраняет изменяемые поля интереса
func (s *PGStore) UpdateInterest(ctx context.Context, interest *models.Interest) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE interests
        SET status = $1, chat_id = $2, realized_at = $3
        WHERE id = $4
    `, interest.Status, interest.ChatID, interest.RealizedAt, interest.ID)

	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteInterest удаляет интерес
func (s *PGStore) DeleteInterest(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM interests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteProposedByOffer удаляет несматченные интересы к объявлению
func (s *PGStore) DeleteProposedByOffer(ctx context.Context, offerID uuid.UUID) error {
	_, err := s.db.Exec(ctx, `
        DELETE FROM interests WHERE offer_id = $1 AND status = 'proposed'
    `, offerID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

// ListInterestsByUser возвращает интересы пользователя
func (s *PGStore) ListInterestsByUser(ctx context.Context, userID uuid.UUID) ([]models.Interest, error) {
	rows, err := s.db.Query(ctx, `
        SELECT `+interestColumns+` FROM interests
        WHERE user_id = $1
        ORDER BY created_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer rows.Close()

	var interests []models.Interest
	for rows.Next() {
		var interest models.Interest
		if err := rows.Scan(
			&interest.ID,
			&interest.OfferID,
			&interest.UserID,
			&interest.Status,
			&interest.ChatID,
			&interest.RealizedAt,
			&interest.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		interests = append(interests, interest)
	}
	return interests, rows.Err()
}

// ListInterestsByOfferOwner возвращает интересы других пользователей
// к объявлениям владельца ownerID
func (s *PGStore) ListInterestsByOfferOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Interest, error) {
	rows, err := s.db.Query(ctx, `
        SELECT i.id, i.offer_id, i.user_id, i.status, i.chat_id, i.realized_at, i.created_at
        FROM interests i
        JOIN offers o ON o.id = i.offer_id
        WHERE o.user_id = $1
        ORDER BY i.created_at DESC
    `, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer rows.Close()

	var interests []models.Interest
	for rows.Next() {
		var interest models.Interest
		if err := rows.Scan(
			&interest.ID,
			&interest.OfferID,
			&interest.UserID,
			&interest.Status,
			&interest.ChatID,
			&interest.RealizedAt,
			&interest.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		interests = append(interests, interest)
	}
	return interests, rows.Err()
}

// FindReciprocal ищет встречный интерес со статусом proposed.
// Тай-брейк детерминированный: побеждает самый ранний интерес.
func (s *PGStore) FindReciprocal(ctx context.Context, ownerID uuid.UUID, offerIDs []uuid.UUID) (*models.Interest, error) {
	if len(offerIDs) == 0 {
		return nil, ErrNotFound
	}
	return scanInterest(s.db.QueryRow(ctx, `
        SELECT `+interestColumns+` FROM interests
        WHERE user_id = $1 AND status = 'proposed' AND offer_id = ANY($2)
        ORDER BY created_at ASC, id ASC
        LIMIT 1
        FOR UPDATE
    `, ownerID, offerIDs))
}

// Counterpart ищет встречный интерес пары по общему чату без блокировки
func (s *PGStore) Counterpart(ctx context.Context, chatID, excludeID uuid.UUID) (*models.Interest, error) {
	return scanInterest(s.db.QueryRow(ctx, `
        SELECT `+interestColumns+` FROM interests
        WHERE chat_id = $1 AND id <> $2 AND status IN ('accepted', 'waiting')
        LIMIT 1
    `, chatID, excludeID))
}

// CounterpartForUpdate ищет встречный интерес пары по общему чату
func (s *PGStore) CounterpartForUpdate(ctx context.Context, chatID, excludeID uuid.UUID) (*models.Interest, error) {
	return scanInterest(s.db.QueryRow(ctx, `
        SELECT `+interestColumns+` FROM interests
        WHERE chat_id = $1 AND id <> $2 AND status IN ('accepted', 'waiting')
        LIMIT 1
        FOR UPDATE
    `, chatID, excludeID))
}

// InsertChat вставляет новый чат. Занятая пара отображается в
// errChatExists — сигнал переиспользовать существующий чат. Конфликт
// гасится через ON CONFLICT DO NOTHING: ошибка оператора абортировала бы
// всю транзакцию, и путь переиспользования не смог бы продолжить работу.
func (s *PGStore) InsertChat(ctx context.Context, chat *models.Chat) error {
	tag, err := s.db.Exec(ctx, `
        INSERT INTO chats (id, user_a, user_b, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (user_a, user_b) DO NOTHING
    `, chat.ID, chat.UserA, chat.UserB, chat.Status, chat.CreatedAt, chat.UpdatedAt)

	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if tag.RowsAffected() == 0 {
		return errChatExists
	}
	return nil
}

func scanChat(row pgx.Row) (*models.Chat, error) {
	var chat models.Chat
	err := row.Scan(&chat.ID, &chat.UserA, &chat.UserB, &chat.Status, &chat.CreatedAt, &chat.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return &chat, nil
}

// GetChat возвращает чат по ID
func (s *PGStore) GetChat(ctx context.Context, id uuid.UUID) (*models.Chat, error) {
	return scanChat(s.db.QueryRow(ctx, `
        SELECT id, user_a, user_b, status, created_at, updated_at
        FROM chats
        WHERE id = $1
    `, id))
}

// GetChatByPair возвращает чат по канонической паре участников
func (s *PGStore) GetChatByPair(ctx context.Context, userA, userB uuid.UUID) (*models.Chat, error) {
	return scanChat(s.db.QueryRow(ctx, `
        SELECT id, user_a, user_b, status, created_at, updated_at
        FROM chats
        WHERE user_a = $1 AND user_b = $2
    `, userA, userB))
}

// SetChatStatus обновляет статус чата
func (s *PGStore) SetChatStatus(ctx context.Context, id uuid.UUID, status models.ChatStatus) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE chats
        SET status = $1, updated_at = NOW()
        WHERE id = $2
    `, status, id)

	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DetachRealizedInterests очищает chat_id у интересов предыдущего
// завершённого обмена пары
func (s *PGStore) DetachRealizedInterests(ctx context.Context, chatID uuid.UUID) error {
	_, err := s.db.Exec(ctx, `
        UPDATE interests
        SET chat_id = NULL
        WHERE chat_id = $1 AND status = 'realized'
    `, chatID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

// ListDirectedInterests возвращает интересы from к объявлениям to
func (s *PGStore) ListDirectedInterests(ctx context.Context, from, to uuid.UUID) ([]DirectedInterest, error) {
	rows, err := s.db.Query(ctx, `
        SELECT i.id, i.offer_id, i.user_id, i.status, i.chat_id, i.realized_at, i.created_at, o.status
        FROM interests i
        JOIN offers o ON o.id = i.offer_id
        WHERE i.user_id = $1 AND o.user_id = $2
    `, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer rows.Close()

	var result []DirectedInterest
	for rows.Next() {
		var di DirectedInterest
		if err := rows.Scan(
			&di.Interest.ID,
			&di.Interest.OfferID,
			&di.Interest.UserID,
			&di.Interest.Status,
			&di.Interest.ChatID,
			&di.Interest.RealizedAt,
			&di.Interest.CreatedAt,
			&di.OfferStatus,
		); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		result = append(result, di)
	}
	return result, rows.Err()
}

// InsertHistory вставляет неизменяемую запись истории обмена
func (s *PGStore) InsertHistory(ctx context.Context, record *models.ExchangeHistoryRecord) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO exchange_history
            (id, chat_id, offer_a_id, offer_a_title, offer_b_id, offer_b_title,
             user_a_id, user_a_name, user_b_id, user_b_name, realized_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `, record.ID, record.ChatID,
		record.OfferAID, record.OfferATitle,
		record.OfferBID, record.OfferBTitle,
		record.UserAID, record.UserAName,
		record.UserBID, record.UserBName,
		record.RealizedAt)

	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

// ListHistoryByUser возвращает завершённые обмены пользователя
func (s *PGStore) ListHistoryByUser(ctx context.Context, userID uuid.UUID) ([]models.ExchangeHistoryRecord, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, chat_id, offer_a_id, offer_a_title, offer_b_id, offer_b_title,
               user_a_id, user_a_name, user_b_id, user_b_name, realized_at
        FROM exchange_history
        WHERE user_a_id = $1 OR user_b_id = $1
        ORDER BY realized_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer rows.Close()

	var records []models.ExchangeHistoryRecord
	for rows.Next() {
		var r models.ExchangeHistoryRecord
		if err := rows.Scan(
			&r.ID, &r.ChatID,
			&r.OfferAID, &r.OfferATitle,
			&r.OfferBID, &r.OfferBTitle,
			&r.UserAID, &r.UserAName,
			&r.UserBID, &r.UserBName,
			&r.RealizedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetUser возвращает пользователя по ID
func (s *PGStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.QueryRow(ctx, `
        SELECT id, username, first_name, last_name, avatar_url
        FROM users
        WHERE id = $1
    `, id).Scan(&user.ID, &user.Username, &user.FirstName, &user.LastName, &user.AvatarURL)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return &user, nil
}
