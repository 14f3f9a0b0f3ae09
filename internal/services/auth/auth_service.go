package auth

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"github.com/rajivgeraev/barterhub-api/internal/config"
	"github.com/rajivgeraev/barterhub-api/internal/db"
	"github.com/rajivgeraev/barterhub-api/internal/utils"
)

// AuthService – структура для обработки авторизации
type AuthService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewAuthService – конструктор AuthService
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// GetJWTService возвращает JWT сервис
func (s *AuthService) GetJWTService() *utils.JWTService {
	return s.jwtService
}

// TelegramAuthHandler проверяет initData, создает JWT и возвращает его
func (s *AuthService) TelegramAuthHandler(c fiber.Ctx) error {
	var payload struct {
		InitData string `json:"init_data"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	// Проверяем initData
	expiration := 24 * time.Hour
	if err := initdata.Validate(payload.InitData, s.cfg.TelegramBotToken, expiration); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid Telegram data"})
	}

	// Парсим данные
	data, err := initdata.Parse(payload.InitData)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to parse initData"})
	}

	// Создаем или обновляем пользователя
	userID, err := s.upsertTelegramUser(data.User.ID, data.User.Username,
		data.User.FirstName, data.User.LastName, data.User.PhotoURL)
	if err != nil {
		log.Printf("Ошибка сохранения пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save user"})
	}

	// Генерируем JWT
	jwtToken, err := s.jwtService.GenerateToken(userID.String())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate JWT"})
	}

	return c.JSON(fiber.Map{
		"token": jwtToken,
		"user": fiber.Map{
			"id":         userID,
			"first_name": data.User.FirstName,
			"last_name":  data.User.LastName,
			"username":   data.User.Username,
			"photo_url":  data.User.PhotoURL,
		},
	})
}

// upsertTelegramUser создает нового пользователя Telegram или обновляет
// данные существующего
func (s *AuthService) upsertTelegramUser(telegramID int64, username, firstName, lastName, photoURL string) (uuid.UUID, error) {
	ctx, cancel := db.GetContext()
	defer cancel()

	var userID uuid.UUID
	err := db.Pool.QueryRow(ctx, `
        INSERT INTO users (telegram_id, username, first_name, last_name, avatar_url, last_login_at)
        VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
        ON CONFLICT (telegram_id) DO UPDATE
        SET username = EXCLUDED.username,
            first_name = EXCLUDED.first_name,
            last_name = EXCLUDED.last_name,
            avatar_url = EXCLUDED.avatar_url,
            last_login_at = CURRENT_TIMESTAMP
        RETURNING id
    `, telegramID, username, firstName, lastName, photoURL).Scan(&userID)

	if err != nil {
		return uuid.Nil, err
	}
	return userID, nil
}
