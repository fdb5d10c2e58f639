package models

import "time"

// ChatMessage is a clan-scoped message. Content is sanitized before storage.
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ClanID    uint      `gorm:"index;not null" json:"clan_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
}
