package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/streakmate/streakmate/models"
	"github.com/streakmate/streakmate/services"
)

// GormStore implements services.Store on top of GORM/MySQL. Inside a
// transaction user reads take SELECT ... FOR UPDATE row locks, which gives
// the per-user serialization the engines rely on; multi-user locks are taken
// in ascending id order.
type GormStore struct {
	db   *gorm.DB
	inTx bool
}

// NewGormStore wraps a gorm handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Atomically runs fn in a single database transaction.
func (s *GormStore) Atomically(ctx context.Context, fn func(tx services.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, inTx: true})
	})
}

func (s *GormStore) userQuery(ctx context.Context) *gorm.DB {
	q := s.db.WithContext(ctx)
	if s.inTx {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.userQuery(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) GetUsersForUpdate(ctx context.Context, ids ...uint) (map[uint]*models.User, error) {
	var users []models.User
	// ORDER BY id makes the lock acquisition order deterministic.
	if err := s.userQuery(ctx).Where("id IN ?", ids).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]*models.User, len(users))
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			return nil, services.ErrUserNotFound
		}
	}
	return out, nil
}

func (s *GormStore) SaveUser(ctx context.Context, u *models.User) error {
	return s.db.WithContext(ctx).Save(u).Error
}

func (s *GormStore) GetSeason(ctx context.Context, id uint) (*models.Season, error) {
	var season models.Season
	if err := s.db.WithContext(ctx).First(&season, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrSeasonNotFound
		}
		return nil, err
	}
	return &season, nil
}

func (s *GormStore) GetSeasonStreak(ctx context.Context, userID, seasonID uint) (*models.SeasonStreak, error) {
	var entry models.SeasonStreak
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND season_id = ?", userID, seasonID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (s *GormStore) SaveSeasonStreak(ctx context.Context, entry *models.SeasonStreak) error {
	return s.db.WithContext(ctx).Save(entry).Error
}

func (s *GormStore) AppendReward(ctx context.Context, r *models.UnclaimedReward) error {
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *GormStore) ListRewards(ctx context.Context, userID uint) ([]models.UnclaimedReward, error) {
	var rewards []models.UnclaimedReward
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rewards).Error
	return rewards, err
}

func (s *GormStore) DeleteRewards(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.UnclaimedReward{}).Error
}

func (s *GormStore) GetSoloBet(ctx context.Context, id uint) (*models.SoloBet, error) {
	var bet models.SoloBet
	if err := s.db.WithContext(ctx).First(&bet, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrWagerNotFound
		}
		return nil, err
	}
	return &bet, nil
}

func (s *GormStore) ActiveSoloBets(ctx context.Context, userID uint) ([]*models.SoloBet, error) {
	var bets []*models.SoloBet
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.WagerActive).
		Find(&bets).Error
	return bets, err
}

func (s *GormStore) ExpiredActiveSoloBets(ctx context.Context, before time.Time) ([]*models.SoloBet, error) {
	var bets []*models.SoloBet
	err := s.db.WithContext(ctx).
		Where("status = ? AND bet_end_date < ?", models.WagerActive, before).
		Limit(100).
		Find(&bets).Error
	return bets, err
}

func (s *GormStore) SaveSoloBet(ctx context.Context, b *models.SoloBet) error {
	return s.db.WithContext(ctx).Save(b).Error
}

func (s *GormStore) GetChallenge(ctx context.Context, id uint) (*models.Challenge, error) {
	var ch models.Challenge
	if err := s.db.WithContext(ctx).First(&ch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrWagerNotFound
		}
		return nil, err
	}
	return &ch, nil
}

func (s *GormStore) ActiveChallengesFor(ctx context.Context, userID uint) ([]*models.Challenge, error) {
	var chs []*models.Challenge
	err := s.db.WithContext(ctx).
		Where("challenge_status = ? AND (user_id = ? OR opponent_id = ?)",
			models.ChallengeActive, userID, userID).
		Find(&chs).Error
	return chs, err
}

func (s *GormStore) ExpiredActiveChallenges(ctx context.Context, before time.Time) ([]*models.Challenge, error) {
	var chs []*models.Challenge
	err := s.db.WithContext(ctx).
		Where("challenge_status = ? AND bet_end_date < ?", models.ChallengeActive, before).
		Limit(100).
		Find(&chs).Error
	return chs, err
}

func (s *GormStore) SaveChallenge(ctx context.Context, c *models.Challenge) error {
	return s.db.WithContext(ctx).Save(c).Error
}

func (s *GormStore) AreFriends(ctx context.Context, a, b uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Friendship{}).
		Where("status = ? AND ((user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?))",
			models.FriendshipAccepted, a, b, b, a).
		Count(&count).Error
	return count > 0, err
}
