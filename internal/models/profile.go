package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile — настройки персонализации пользователя.
// UserID приходит из внешнего identity-провайдера (claim sub).
type Profile struct {
	UserID uuid.UUID
	// Mood == nil — фильтр по тональности выключен.
	Mood      *Sentiment
	Blocklist []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileUpdate — частичный апдейт профиля.
//
// Особенности:
//   - Mood == nil — не трогаем; *Mood == "" — сбрасываем настроение;
//   - Blocklist == nil — не трогаем; пустой срез — очищаем.
type ProfileUpdate struct {
	Mood      *Sentiment
	Blocklist *[]string
}
