package models

import "time"

// SeasonStreak tracks a user's consecutive check-in days inside one season.
// Created lazily on the first check-in to that season; unique per (user, season).
type SeasonStreak struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"index:idx_user_season,unique;not null" json:"user_id"`
	SeasonID      uint      `gorm:"index:idx_user_season,unique;not null" json:"season_id"`
	Streak        int       `gorm:"default:0" json:"streak"`
	LastLoginDate time.Time `gorm:"not null" json:"last_login_date"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UnclaimedReward is a pending XP credit queued by milestone logic and
// drained by the explicit claim action.
type UnclaimedReward struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	XP        int       `gorm:"column:xp;not null" json:"xp"`
	Reason    string    `gorm:"size:128" json:"reason"`
	Date      time.Time `gorm:"not null" json:"date"`
	CreatedAt time.Time `json:"created_at"`
}
