package models

import (
	"fmt"
	"time"
)

// WagerStatus is the settlement state shared by both wager kinds.
type WagerStatus string

const (
	WagerActive WagerStatus = "active"
	WagerWon    WagerStatus = "won"
	WagerLost   WagerStatus = "lost"
	WagerTied   WagerStatus = "tied"
)

// ChallengeStatus tracks the handshake lifecycle of a friend challenge.
type ChallengeStatus string

const (
	ChallengePending   ChallengeStatus = "pending"
	ChallengeAccepted  ChallengeStatus = "accepted"
	ChallengeDeclined  ChallengeStatus = "declined"
	ChallengeActive    ChallengeStatus = "active"
	ChallengeCompleted ChallengeStatus = "completed"
)

// WagerHeader carries the fields common to solo bets and friend challenges.
// UserID is the creator (the challenger for challenges). Status transitions
// are one-directional: a resolved wager can never go back to active.
type WagerHeader struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Reference   string      `gorm:"size:36;uniqueIndex" json:"reference"`
	UserID      uint        `gorm:"index;not null" json:"user_id"`
	Amount      int         `gorm:"not null" json:"amount"`
	Multiplier  int         `gorm:"default:2" json:"multiplier"`
	BetEndDate  time.Time   `gorm:"not null" json:"bet_end_date"`
	StreakAtBet int         `json:"streak_at_bet"`
	Status      WagerStatus `gorm:"size:16;index;default:'active'" json:"status"`
	ResolvedAt  *time.Time  `json:"resolved_at"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Resolve moves the wager into a terminal status. It refuses to resurrect an
// already-resolved wager.
func (h *WagerHeader) Resolve(status WagerStatus, at time.Time) error {
	if h.Status != WagerActive {
		return fmt.Errorf("wager %d already resolved as %s", h.ID, h.Status)
	}
	if status == WagerActive {
		return fmt.Errorf("cannot resolve wager %d back to active", h.ID)
	}
	h.Status = status
	h.ResolvedAt = &at
	return nil
}

// Payout is the amount credited to the winning side.
func (h *WagerHeader) Payout() int {
	return h.Amount * h.Multiplier
}

// SoloBet is a stake placed by one user against their own streak surviving
// to BetEndDate. The stake is debited at creation time.
type SoloBet struct {
	WagerHeader
}

// Challenge is a two-party wager: the first participant to break their streak
// forfeits the pot to the other. Stakes are debited from both sides only on
// acceptance, never at send time.
type Challenge struct {
	WagerHeader
	OpponentID      uint            `gorm:"index;not null" json:"opponent_id"`
	ChallengeStatus ChallengeStatus `gorm:"size:16;index;default:'pending'" json:"challenge_status"`
	WinnerID        *uint           `json:"winner_id"`
}

// Counterpart returns the other participant relative to userID.
func (c *Challenge) Counterpart(userID uint) uint {
	if userID == c.UserID {
		return c.OpponentID
	}
	return c.UserID
}

// Involves reports whether userID is a participant of the challenge.
func (c *Challenge) Involves(userID uint) bool {
	return userID == c.UserID || userID == c.OpponentID
}
