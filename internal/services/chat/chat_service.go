package chat

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rajivgeraev/barterhub-api/internal/config"
	"github.com/rajivgeraev/barterhub-api/internal/db"
	"github.com/rajivgeraev/barterhub-api/internal/events"
	"github.com/rajivgeraev/barterhub-api/internal/exchange"
	"github.com/rajivgeraev/barterhub-api/internal/models"
	"github.com/rajivgeraev/barterhub-api/internal/utils"
)

// ChatService представляет сервис для работы с чатами
type ChatService struct {
	cfg        *config.Config
	core       *exchange.Service
	pub        events.Publisher
	jwtService *utils.JWTService
}

// NewChatService создает новый экземпляр ChatService
func NewChatService(cfg *config.Config, core *exchange.Service, pub events.Publisher) *ChatService {
	return &ChatService{
		cfg:        cfg,
		core:       core,
		pub:        pub,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// GetChats возвращает список чатов пользователя
func (s *ChatService) GetChats(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	// Запрос списка чатов с количеством непрочитанных сообщений
	query := `
        SELECT c.id, c.user_a, c.user_b, c.status, c.created_at, c.updated_at,
               c.last_message_text, c.last_message_time,
               COUNT(m.id) FILTER (WHERE m.sender_id != $1 AND m.is_read = false) AS unread_count
        FROM chats c
        LEFT JOIN messages m ON c.id = m.chat_id
        WHERE c.user_a = $1 OR c.user_b = $1
        GROUP BY c.id
        ORDER BY c.last_message_time DESC NULLS LAST, c.created_at DESC
    `

	rows, err := db.Pool.Query(ctx, query, userUUID)
	if err != nil {
		log.Printf("Ошибка запроса чатов: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения чатов"})
	}
	defer rows.Close()

	// Обрабатываем результаты
	var chats []models.Chat
	for rows.Next() {
		var chat models.Chat
		var lastMessageText *string
		var lastMessageTime *time.Time
		var unreadCount int

		if err := rows.Scan(
			&chat.ID,
			&chat.UserA,
			&chat.UserB,
			&chat.Status,
			&chat.CreatedAt,
			&chat.UpdatedAt,
			&lastMessageText,
			&lastMessageTime,
			&unreadCount,
		); err != nil {
			log.Printf("Ошибка сканирования строки: %v", err)
			continue
		}

		if lastMessageText != nil {
			chat.LastMessageText = *lastMessageText
		}
		chat.LastMessageTime = lastMessageTime
		chat.UnreadCount = unreadCount

		// Получаем данные о втором участнике чата
		chat.Peer = getUserInfo(ctx, chat.OtherParticipant(userUUID))

		// Политика блокировки вычисляется на каждом чтении
		chat.IsLocked = s.core.IsChatLocked(ctx, chat.ID)

		chats = append(chats, chat)
	}

	return c.JSON(fiber.Map{
		"chats": chats,
		"count": len(chats),
	})
}

// GetChatMessages возвращает сообщения конкретного чата
func (s *ChatService) GetChatMessages(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	chatUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID чата"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	// Проверяем, имеет ли пользователь доступ к этому чату
	chat, err := s.loadChatForParticipant(ctx, chatUUID, userUUID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "У вас нет доступа к этому чату"})
		}
		log.Printf("Ошибка проверки доступа к чату: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка проверки доступа к чату"})
	}

	// Получаем сообщения
	limit := 50 // Ограничение количества сообщений

	// Обрабатываем пагинацию
	before := c.Query("before")
	var query string
	var queryArgs []interface{}

	if before != "" {
		beforeUUID, err := uuid.Parse(before)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID сообщения"})
		}

		// курсор сравнивается по (created_at, id): порядок случайных id
		// не совпадает с порядком по времени
		query = `
            SELECT m.id, m.chat_id, m.sender_id, m.text, m.is_read, m.created_at, m.updated_at
            FROM messages m
            WHERE m.chat_id = $1
              AND (m.created_at, m.id) < (SELECT created_at, id FROM messages WHERE id = $2)
            ORDER BY m.created_at DESC, m.id DESC
            LIMIT $3
        `
		queryArgs = []interface{}{chatUUID, beforeUUID, limit}
	} else {
		query = `
            SELECT m.id, m.chat_id, m.sender_id, m.text, m.is_read, m.created_at, m.updated_at
            FROM messages m
            WHERE m.chat_id = $1
            ORDER BY m.created_at DESC, m.id DESC
            LIMIT $2
        `
		queryArgs = []interface{}{chatUUID, limit}
	}

	rows, err := db.Pool.Query(ctx, query, queryArgs...)
	if err != nil {
		log.Printf("Ошибка запроса сообщений: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения сообщений"})
	}
	defer rows.Close()

	// Обрабатываем результаты
	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.ChatID,
			&msg.SenderID,
			&msg.Text,
			&msg.IsRead,
			&msg.CreatedAt,
			&msg.UpdatedAt,
		); err != nil {
			log.Printf("Ошибка сканирования сообщения: %v", err)
			continue
		}

		// Добавляем информацию об отправителе
		msg.Sender = getUserInfo(ctx, msg.SenderID)
		messages = append(messages, msg)
	}

	// Отмечаем сообщения как прочитанные
	_, err = db.Pool.Exec(ctx, `
        UPDATE messages
        SET is_read = true
        WHERE chat_id = $1 AND sender_id != $2 AND is_read = false
    `, chatUUID, userUUID)

	if err != nil {
		log.Printf("Ошибка обновления статуса прочтения: %v", err)
		// Не возвращаем ошибку, т.к. основная функциональность выполнена
	}

	return c.JSON(fiber.Map{
		"messages":  messages,
		"has_more":  len(messages) == limit,
		"is_locked": s.core.IsChatLocked(ctx, chat.ID),
	})
}

// SendMessage отправляет новое сообщение
func (s *ChatService) SendMessage(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	chatUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID чата"})
	}

	// Получаем данные запроса
	var requestData struct {
		Text string `json:"text"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка чтения тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if requestData.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Текст сообщения не может быть пустым"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	// Проверяем, имеет ли пользователь доступ к этому чату
	chat, err := s.loadChatForParticipant(ctx, chatUUID, userUUID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "У вас нет доступа к этому чату"})
		}
		log.Printf("Ошибка проверки доступа к чату: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка проверки доступа к чату"})
	}

	// Заблокированный чат доступен только для чтения
	if s.core.IsChatLocked(ctx, chat.ID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Чат доступен только для чтения"})
	}

	// Начинаем транзакцию
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("Ошибка начала транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	defer tx.Rollback(ctx)

	// Создаем новое сообщение
	messageID := uuid.New()
	now := time.Now()

	_, err = tx.Exec(ctx, `
        INSERT INTO messages (id, chat_id, sender_id, text, is_read, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, messageID, chatUUID, userUUID, requestData.Text, false, now, now)

	if err != nil {
		log.Printf("Ошибка создания сообщения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка сохранения сообщения"})
	}

	// Обновляем информацию о чате
	_, err = tx.Exec(ctx, `
        UPDATE chats
        SET last_message_text = $1, last_message_time = $2, updated_at = $3
        WHERE id = $4
    `, requestData.Text, now, now, chatUUID)

	if err != nil {
		log.Printf("Ошибка обновления информации о чате: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления информации о чате"})
	}

	// Фиксируем транзакцию
	if err = tx.Commit(ctx); err != nil {
		log.Printf("Ошибка фиксации транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}

	// Уведомляем второго участника через внешний pub/sub
	s.pub.Publish(ctx, chat.OtherParticipant(userUUID), events.Event{
		Type:       events.EventNewMessage,
		ChatID:     &chatUUID,
		MessageID:  &messageID,
		FromUserID: &userUUID,
	})

	// Создаем объект сообщения для ответа
	message := models.Message{
		ID:        messageID,
		ChatID:    chatUUID,
		SenderID:  userUUID,
		Text:      requestData.Text,
		IsRead:    false,
		CreatedAt: now,
		UpdatedAt: now,
		Sender:    getUserInfo(ctx, userUUID),
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": message,
		"success": true,
	})
}

// loadChatForParticipant загружает чат, проверяя участие пользователя
func (s *ChatService) loadChatForParticipant(ctx context.Context, chatID, userID uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	err := db.Pool.QueryRow(ctx, `
        SELECT id, user_a, user_b, status FROM chats
        WHERE id = $1
    `, chatID).Scan(&chat.ID, &chat.UserA, &chat.UserB, &chat.Status)

	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(userID) {
		return nil, pgx.ErrNoRows
	}
	return &chat, nil
}

// getUserInfo получает базовую информацию о пользователе
func getUserInfo(ctx context.Context, userID uuid.UUID) *models.User {
	var user models.User
	err := db.Pool.QueryRow(ctx, `
        SELECT id, username, first_name, last_name, avatar_url
        FROM users
        WHERE id = $1
    `, userID).Scan(
		&user.ID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.AvatarURL,
	)

	if err != nil {
		log.Printf("Ошибка получения данных пользователя %s: %v", userID, err)
		return nil
	}

	return &user
}
