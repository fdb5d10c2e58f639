package services

import "errors"

// Service errors are sentinels so controllers can map them onto HTTP codes.
var (
	// Not found
	ErrUserNotFound   = errors.New("user not found")
	ErrSeasonNotFound = errors.New("season not found")
	ErrWagerNotFound  = errors.New("wager not found")

	// Invalid state
	ErrSeasonClosed        = errors.New("season is not open on that date")
	ErrWagerNotActive      = errors.New("wager is not active")
	ErrDuplicateSoloBet    = errors.New("an active solo bet already exists")
	ErrChallengeNotPending = errors.New("challenge is not pending")
	ErrNotParticipant      = errors.New("user is not part of this wager")
	ErrNotFriends          = errors.New("users are not friends")

	// Validation
	ErrStakeTooSmall  = errors.New("stake is below the minimum amount")
	ErrStakeTooLarge  = errors.New("stake exceeds half of the current XP balance")
	ErrBadBetWindow   = errors.New("bet end date must be in the future and within the allowed range")
	ErrInsufficientXP = errors.New("insufficient XP balance")
	ErrSelfChallenge  = errors.New("cannot challenge yourself")
)
