package history

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/barterhub-api/internal/config"
	"github.com/rajivgeraev/barterhub-api/internal/db"
	"github.com/rajivgeraev/barterhub-api/internal/exchange"
	"github.com/rajivgeraev/barterhub-api/internal/utils"
)

// HistoryService представляет сервис для работы с историей обменов
type HistoryService struct {
	cfg        *config.Config
	core       *exchange.Service
	jwtService *utils.JWTService
}

// NewHistoryService создает новый экземпляр HistoryService
func NewHistoryService(cfg *config.Config, core *exchange.Service) *HistoryService {
	return &HistoryService{
		cfg:        cfg,
		core:       core,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// GetMyHistory возвращает завершённые обмены пользователя
func (s *HistoryService) GetMyHistory(c fiber.Ctx) error {
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

	records, err := s.core.ListHistory(ctx, userUUID)
	if err != nil {
		log.Printf("Ошибка запроса истории обменов: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения истории обменов"})
	}

	return c.JSON(fiber.Map{
		"history": records,
		"count":   len(records),
	})
}
