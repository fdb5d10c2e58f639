package models

import "time"

// FriendshipStatus is the lifecycle of a friend request.
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipDeclined FriendshipStatus = "declined"
)

// Friendship links two users. UserID is the requester. A single row per pair;
// lookups check both orientations.
type Friendship struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"index:idx_friend_pair,unique;not null" json:"user_id"`
	FriendID  uint             `gorm:"index:idx_friend_pair,unique;not null" json:"friend_id"`
	Status    FriendshipStatus `gorm:"size:16;default:'pending'" json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
