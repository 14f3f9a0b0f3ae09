package offer

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/barterhub-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API объявлений
func (s *OfferService) SetupRoutes(app *fiber.App) {
	// Группа для API объявлений
	api := app.Group("/api/offers")

	// Защищенные маршруты (требуют авторизации)
	api.Use(middleware.AuthMiddleware(s.jwtService))

	// Маршрут для получения своих активных объявлений
	api.Get("/my", s.GetMyOffers)

	// Маршрут для удаления объявления
	api.Delete("/:id", s.RemoveOffer)
}
