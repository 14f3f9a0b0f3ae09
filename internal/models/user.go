package models

import (
	"time"

	"github.com/google/uuid"
)

// User представляет минимальную информацию о пользователе для API
type User struct {
	ID         uuid.UUID `json:"id"`
	TelegramID int64     `json:"telegram_id,omitempty"`
	Username   string    `json:"username,omitempty"`
	FirstName  string    `json:"first_name,omitempty"`
	LastName   string    `json:"last_name,omitempty"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

// DisplayName возвращает отображаемое имя пользователя
func (u *User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	if u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.FirstName
}
