package models

import "time"

// Clan groups users; a user belongs to at most one clan (User.ClanID).
type Clan struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:64;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	LeaderID    uint      `gorm:"not null" json:"leader_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Members []User `gorm:"foreignKey:ClanID" json:"-"`
}
