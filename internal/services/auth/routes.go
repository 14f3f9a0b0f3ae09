package auth

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes настраивает маршруты для авторизации
func (s *AuthService) SetupRoutes(app *fiber.App) {
	api := app.Group("/auth")

	// Маршрут для входа через Telegram Mini App
	api.Post("/telegram", s.TelegramAuthHandler)
}
