package offer

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/barterhub-api/internal/config"
	"github.com/rajivgeraev/barterhub-api/internal/db"
	"github.com/rajivgeraev/barterhub-api/internal/exchange"
	"github.com/rajivgeraev/barterhub-api/internal/models"
	"github.com/rajivgeraev/barterhub-api/internal/utils"
)

// OfferService представляет сервис для работы с объявлениями
type OfferService struct {
	cfg        *config.Config
	core       *exchange.Service
	jwtService *utils.JWTService
}

// NewOfferService создает новый экземпляр OfferService
func NewOfferService(cfg *config.Config, core *exchange.Service) *OfferService {
	return &OfferService{
		cfg:        cfg,
		core:       core,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// RemoveOffer помечает объявление удалённым. Несматченные интересы
// к нему удаляются каскадно, чтобы удалённое объявление не участвовало
// в новых матчах.
func (s *OfferService) RemoveOffer(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	ownerID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	offerID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID объявления"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	if err := s.core.OfferRemoved(ctx, ownerID, offerID); err != nil {
		switch {
		case errors.Is(err, exchange.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Объявление не найдено"})
		case errors.Is(err, exchange.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Вы не являетесь владельцем объявления"})
		default:
			log.Printf("Ошибка удаления объявления: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка удаления объявления"})
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Объявление удалено",
	})
}

// GetMyOffers возвращает активные объявления пользователя
func (s *OfferService) GetMyOffers(c fiber.Ctx) error {
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

	rows, err := db.Pool.Query(ctx, `
        SELECT id, user_id, title, status, created_at, updated_at
        FROM offers
        WHERE user_id = $1 AND status = 'active'
        ORDER BY created_at DESC
    `, userUUID)

	if err != nil {
		log.Printf("Ошибка запроса объявлений: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения объявлений"})
	}
	defer rows.Close()

	var offers []models.Offer
	for rows.Next() {
		var offer models.Offer
		if err := rows.Scan(
			&offer.ID,
			&offer.UserID,
			&offer.Title,
			&offer.Status,
			&offer.CreatedAt,
			&offer.UpdatedAt,
		); err != nil {
			log.Printf("Ошибка сканирования строки: %v", err)
			continue
		}
		offers = append(offers, offer)
	}

	return c.JSON(fiber.Map{
		"offers": offers,
		"count":  len(offers),
	})
}
