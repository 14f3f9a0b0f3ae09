package interest

import (
	"context"
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

// InterestService представляет сервис для работы с интересами
type InterestService struct {
	cfg        *config.Config
	core       *exchange.Service
	jwtService *utils.JWTService
}

// NewInterestService создает новый экземпляр InterestService
func NewInterestService(cfg *config.Config, core *exchange.Service) *InterestService {
	return &InterestService{
		cfg:        cfg,
		core:       core,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// ExpressInterest регистрирует интерес к объявлению
func (s *InterestService) ExpressInterest(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	requesterID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	// Извлекаем данные из запроса
	var requestData struct {
		OfferID string `json:"offer_id"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if requestData.OfferID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Необходимо указать ID объявления"})
	}

	offerID, err := uuid.Parse(requestData.OfferID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID объявления"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	interest, err := s.core.ExpressInterest(ctx, requesterID, offerID)
	if err != nil {
		return errorResponse(c, err)
	}

	response := fiber.Map{
		"success":     true,
		"interest_id": interest.ID,
		"status":      interest.Status,
	}
	if interest.ChatID != nil {
		// Найден взаимный интерес, пара получила чат
		response["chat_id"] = interest.ChatID
		response["matched"] = true
	}

	return c.Status(fiber.StatusCreated).JSON(response)
}

// CancelInterest удаляет несматченный интерес
func (s *InterestService) CancelInterest(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	requesterID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	interestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID интереса"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	if err := s.core.CancelInterest(ctx, requesterID, interestID); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Интерес отменён",
	})
}

// Realize подтверждает обмен со стороны участника
func (s *InterestService) Realize(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	actorID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	interestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID интереса"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	interest, err := s.core.Realize(ctx, actorID, interestID)
	if err != nil {
		return errorResponse(c, err)
	}

	response := fiber.Map{
		"success": true,
		"status":  interest.Status,
	}
	if interest.RealizedAt != nil {
		response["realized_at"] = interest.RealizedAt
	}
	if interest.Status == models.InterestRealized {
		response["message"] = "Обмен завершён"
	} else {
		response["message"] = "Подтверждение учтено, ждём вторую сторону"
	}

	return c.JSON(response)
}

// Unrealize отзывает подтверждение обмена
func (s *InterestService) Unrealize(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	actorID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	interestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID интереса"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	interest, err := s.core.Unrealize(ctx, actorID, interestID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"status":  interest.Status,
		"message": "Подтверждение отозвано",
	})
}

// GetMyInterests возвращает список интересов пользователя.
// Параметр type выбирает направление: all, incoming или outgoing.
func (s *InterestService) GetMyInterests(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	interestType := c.Query("type", "all")
	if interestType != "all" && interestType != "incoming" && interestType != "outgoing" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверное значение параметра type"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var interests []models.Interest

	if interestType == "outgoing" || interestType == "all" {
		outgoing, err := s.core.ListInterests(ctx, userUUID)
		if err != nil {
			return errorResponse(c, err)
		}
		interests = append(interests, outgoing...)
	}

	if interestType == "incoming" || interestType == "all" {
		incoming, err := s.core.ListIncomingInterests(ctx, userUUID)
		if err != nil {
			return errorResponse(c, err)
		}
		interests = append(interests, incoming...)
	}

	// Загружаем дополнительную информацию об объявлениях
	for i := range interests {
		interests[i].Offer = getOfferInfo(ctx, interests[i].OfferID)
	}

	return c.JSON(fiber.Map{
		"interests": interests,
		"count":     len(interests),
		"type":      interestType,
	})
}

// errorResponse отображает типизированные ошибки ядра в HTTP-статусы
func errorResponse(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, exchange.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Объект не найден"})
	case errors.Is(err, exchange.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Действие доступно только участнику обмена"})
	case errors.Is(err, exchange.ErrOwnOffer):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Нельзя проявить интерес к собственному объявлению"})
	case errors.Is(err, exchange.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Вы уже проявили интерес к этому объявлению"})
	case errors.Is(err, exchange.ErrBadStatus):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Операция недоступна в текущем статусе"})
	case errors.Is(err, exchange.ErrAlreadyRealized):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Обмен уже подтверждён"})
	default:
		log.Printf("Внутренняя ошибка ядра обменов: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Внутренняя ошибка сервера"})
	}
}

// getOfferInfo получает базовую информацию об объявлении
func getOfferInfo(ctx context.Context, offerID uuid.UUID) *models.Offer {
	var offer models.Offer
	err := db.Pool.QueryRow(ctx, `
        SELECT id, user_id, title, status, created_at, updated_at
        FROM offers
        WHERE id = $1
    `, offerID).Scan(
		&offer.ID,
		&offer.UserID,
		&offer.Title,
		&offer.Status,
		&offer.CreatedAt,
		&offer.UpdatedAt,
	)

	if err != nil {
		log.Printf("Ошибка получения объявления %s: %v", offerID, err)
		return nil
	}

	return &offer
}
