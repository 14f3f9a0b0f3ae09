package logger

import (
	"go.uber.org/zap"
)

// New создаёт логгер в зависимости от окружения приложения
func New(appEnv string) (*zap.Logger, error) {
	if appEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
