package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/zap"

	"github.com/rajivgeraev/barterhub-api/internal/config"
	"github.com/rajivgeraev/barterhub-api/internal/db"
	"github.com/rajivgeraev/barterhub-api/internal/events"
	"github.com/rajivgeraev/barterhub-api/internal/exchange"
	applogger "github.com/rajivgeraev/barterhub-api/internal/logger"
	"github.com/rajivgeraev/barterhub-api/internal/services/auth"
	"github.com/rajivgeraev/barterhub-api/internal/services/chat"
	"github.com/rajivgeraev/barterhub-api/internal/services/history"
	"github.com/rajivgeraev/barterhub-api/internal/services/interest"
	"github.com/rajivgeraev/barterhub-api/internal/services/offer"
)

func main() {
	// Загружаем конфигурацию
	cfg := config.LoadConfig()

	// Инициализируем логгер
	zapLogger, err := applogger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("❌ Ошибка при инициализации логгера: %v", err)
	}
	defer zapLogger.Sync()

	// Инициализируем базу данных
	if err := db.InitDB(cfg, zapLogger); err != nil {
		zapLogger.Fatal("ошибка при инициализации базы данных", zap.Error(err))
	}
	defer db.CloseDB()

	// Инициализируем издателя событий
	pub, err := events.NewRedisPublisher(context.Background(), cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("ошибка при инициализации издателя событий", zap.Error(err))
	}
	defer pub.Close()

	// Создаём ядро обменов
	store := exchange.NewPGStore(db.Pool)
	core := exchange.NewService(store, zapLogger, pub)

	// Создаём экземпляр Fiber
	app := fiber.New(fiber.Config{
		AppName:      "BarterHub API",
		ErrorHandler: errorHandler,
	})

	// Добавляем middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: false,
	}))

	// Создаём сервисы
	authService := auth.NewAuthService(cfg)
	interestService := interest.NewInterestService(cfg, core)
	chatService := chat.NewChatService(cfg, core, pub)
	offerService := offer.NewOfferService(cfg, core)
	historyService := history.NewHistoryService(cfg, core)

	// Регистрируем маршруты
	authService.SetupRoutes(app)
	interestService.SetupRoutes(app)
	chatService.SetupRoutes(app)
	offerService.SetupRoutes(app)
	historyService.SetupRoutes(app)

	// Запускаем сервер
	zapLogger.Info("BarterHub API запущен", zap.String("port", "8080"))
	if err := app.Listen(":8080"); err != nil {
		zapLogger.Fatal("ошибка сервера", zap.Error(err))
	}
}

// errorHandler обрабатывает ошибки Fiber
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	// Проверяем, является ли ошибка из Fiber
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	// Отправляем ошибку в JSON
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
