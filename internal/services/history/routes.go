package history

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/barterhub-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API истории обменов
func (s *HistoryService) SetupRoutes(app *fiber.App) {
	// Группа для API истории обменов
	api := app.Group("/api/history")

	// Защищенные маршруты (требуют авторизации)
	api.Use(middleware.AuthMiddleware(s.jwtService))

	// Маршрут для получения завершённых обменов пользователя
	api.Get("/", s.GetMyHistory)
}
