package models

import "time"

// XPTransfer is an audit record of a peer-to-peer XP movement between friends.
type XPTransfer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FromUserID uint      `gorm:"index;not null" json:"from_user_id"`
	ToUserID   uint      `gorm:"index;not null" json:"to_user_id"`
	Amount     int       `gorm:"not null" json:"amount"`
	Note       string    `gorm:"size:255" json:"note"`
	CreatedAt  time.Time `json:"created_at"`
}
