package interest

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/barterhub-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API интересов
func (s *InterestService) SetupRoutes(app *fiber.App) {
	// Группа для API интересов
	api := app.Group("/api/interests")

	// Защищенные маршруты (требуют авторизации)
	api.Use(middleware.AuthMiddleware(s.jwtService))

	// Маршрут для регистрации интереса к объявлению
	api.Post("/", s.ExpressInterest)

	// Маршрут для получения списка интересов пользователя
	api.Get("/", s.GetMyInterests)

	// Маршрут для отмены несматченного интереса
	api.Delete("/:id", s.CancelInterest)

	// Маршруты протокола подтверждения обмена
	api.Post("/:id/realize", s.Realize)
	api.Post("/:id/unrealize", s.Unrealize)
}
