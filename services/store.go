package services

import (
	"context"
	"time"

	"github.com/streakmate/streakmate/models"
)

// Store is the persistence boundary the engines operate on. Implementations
// must make Atomically run fn inside a single transaction and serialize
// concurrent mutations of the same user: user reads inside a transaction
// take row locks, so two check-ins (or a check-in racing a settlement) for
// the same user are strictly ordered.
type Store interface {
	// Atomically runs fn inside one transaction; the Store passed to fn
	// performs all reads and writes within that transaction.
	Atomically(ctx context.Context, fn func(tx Store) error) error

	GetUser(ctx context.Context, id uint) (*models.User, error)
	// GetUsersForUpdate locks and returns several users. Implementations
	// acquire the locks in ascending id order to avoid deadlocks between
	// cross-user operations.
	GetUsersForUpdate(ctx context.Context, ids ...uint) (map[uint]*models.User, error)
	SaveUser(ctx context.Context, u *models.User) error

	GetSeason(ctx context.Context, id uint) (*models.Season, error)
	// GetSeasonStreak returns nil (no error) when the user has no entry for
	// the season yet.
	GetSeasonStreak(ctx context.Context, userID, seasonID uint) (*models.SeasonStreak, error)
	SaveSeasonStreak(ctx context.Context, entry *models.SeasonStreak) error

	AppendReward(ctx context.Context, r *models.UnclaimedReward) error
	ListRewards(ctx context.Context, userID uint) ([]models.UnclaimedReward, error)
	DeleteRewards(ctx context.Context, userID uint) error

	GetSoloBet(ctx context.Context, id uint) (*models.SoloBet, error)
	ActiveSoloBets(ctx context.Context, userID uint) ([]*models.SoloBet, error)
	ExpiredActiveSoloBets(ctx context.Context, before time.Time) ([]*models.SoloBet, error)
	SaveSoloBet(ctx context.Context, b *models.SoloBet) error

	GetChallenge(ctx context.Context, id uint) (*models.Challenge, error)
	// ActiveChallengesFor returns challenges with challenge status "active"
	// where the user is either side.
	ActiveChallengesFor(ctx context.Context, userID uint) ([]*models.Challenge, error)
	ExpiredActiveChallenges(ctx context.Context, before time.Time) ([]*models.Challenge, error)
	SaveChallenge(ctx context.Context, c *models.Challenge) error

	AreFriends(ctx context.Context, a, b uint) (bool, error)
}

// Notifier delivers a fire-and-forget notification. Implementations must not
// return delivery failures to the caller; they log and move on, so a failed
// notification can never abort the mutation that triggered it.
type Notifier interface {
	Notify(ctx context.Context, userID uint, kind, message string, data map[string]any)
}
