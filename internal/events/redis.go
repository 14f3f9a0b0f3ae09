package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rajivgeraev/barterhub-api/internal/config"
)

// RedisPublisher публикует события в каналы Redis Pub/Sub вида
// events:user:<id>. Внешний шлюз уведомлений подписывается на эти каналы.
type RedisPublisher struct {
	client *redis.Client
	log    *zap.Logger
}

// NewRedisPublisher создает издателя событий и проверяет соединение
func NewRedisPublisher(ctx context.Context, cfg *config.Config, log *zap.Logger) (*RedisPublisher, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisConfig.Addr(),
		Password: cfg.RedisConfig.Password,
		DB:       cfg.RedisConfig.DB,

		PoolSize:     10,
		MinIdleConns: 2,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ошибка подключения к Redis %s: %w", cfg.RedisConfig.Addr(), err)
	}

	log.Info("успешное подключение к Redis", zap.String("addr", cfg.RedisConfig.Addr()))

	return &RedisPublisher{client: rdb, log: log}, nil
}

// Publish отправляет событие в канал пользователя
func (p *RedisPublisher) Publish(ctx context.Context, userID uuid.UUID, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.log.Error("ошибка сериализации события", zap.Error(err), zap.String("type", string(event.Type)))
		return
	}

	channel := fmt.Sprintf("events:user:%s", userID)
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		p.log.Error("ошибка публикации события",
			zap.Error(err),
			zap.String("channel", channel),
			zap.String("type", string(event.Type)))
	}
}

// Close закрывает соединение с Redis
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
