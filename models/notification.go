package models

import "time"

// Notification kinds emitted by the engines and social flows.
const (
	NotifyBetLost           = "bet_lost"
	NotifyBetWon            = "bet_won"
	NotifyChallengeReceived = "challenge_received"
	NotifyChallengeAccepted = "challenge_accepted"
	NotifyChallengeDeclined = "challenge_declined"
	NotifyChallengeWon      = "challenge_won"
	NotifyChallengeLost     = "challenge_lost"
	NotifyChallengeTied     = "challenge_tied"
	NotifyFriendRequest     = "friend_request"
	NotifyFriendAccepted    = "friend_accepted"
	NotifyXPReceived        = "xp_received"
)

// Notification is a stored, fire-and-forget message to a user.
// Data holds optional JSON payload for the client.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Kind      string    `gorm:"size:32;not null" json:"kind"`
	Message   string    `gorm:"size:255" json:"message"`
	Data      string    `gorm:"type:text" json:"data"`
	Read      bool      `gorm:"default:false;index" json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
