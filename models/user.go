package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a player account. Passwords are stored as bcrypt hashes only.
// XP is the spendable balance mutated by rewards, wager stakes/payouts and peer transfers.
type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Username      string         `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email         string         `gorm:"size:255" json:"email"`
	PasswordHash  string         `gorm:"size:255" json:"-"`
	Provider      string         `gorm:"size:32" json:"provider"`
	ProviderID    string         `gorm:"size:255" json:"provider_id"`
	RegisterIP    string         `gorm:"size:45" json:"register_ip"`
	AvatarURL     string         `gorm:"size:512" json:"avatar_url"`
	Bio           string         `gorm:"size:255" json:"bio"`
	XP            int            `gorm:"column:xp;default:0" json:"xp"`
	OverallStreak int            `gorm:"default:0" json:"overall_streak"`
	LastLoginDate *time.Time     `json:"last_login_date"`
	ClanID        *uint          `gorm:"index" json:"clan_id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	SeasonStreaks    []SeasonStreak    `json:"-"`
	UnclaimedRewards []UnclaimedReward `json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
