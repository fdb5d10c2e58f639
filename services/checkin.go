package services

import (
	"context"
	"time"

	"github.com/streakmate/streakmate/models"
)

// CheckInStatus lets callers distinguish outcomes without parsing messages.
type CheckInStatus string

const (
	StatusCheckedIn        CheckInStatus = "checked_in"
	StatusAlreadyCheckedIn CheckInStatus = "already_checked_in"
	StatusStreakBroken     CheckInStatus = "streak_broken"
)

// CheckInResult is returned to the HTTP layer. XPGained is always zero:
// milestone rewards are queued to the unclaimed list, never auto-credited.
type CheckInResult struct {
	Status   CheckInStatus `json:"status"`
	Message  string        `json:"message"`
	Streak   int           `json:"streak"`
	XPGained int           `json:"xp_gained"`
	TotalXP  int           `json:"total_xp"`
}

// RewardRules holds the milestone XP amounts. The three rules overlap on
// purpose: a streak of 30 queues only the every-3-days reward, a streak of 10
// queues only the 10-day reward. This mirrors the original product behavior
// and must not be "fixed" without product guidance.
type RewardRules struct {
	ThreeDayXP int
	FiveDayXP  int
	TenDayXP   int
}

// CheckInService decides whether a check-in is a no-op, a streak increment or
// a streak reset, queues milestone rewards, and triggers wager settlement on
// breaks. The whole sequence runs in one transaction per check-in.
type CheckInService struct {
	store  Store
	wagers *WagerService
	rules  RewardRules
	now    func() time.Time
}

// NewCheckInService wires the engine with its collaborators.
func NewCheckInService(store Store, wagers *WagerService, rules RewardRules) *CheckInService {
	return &CheckInService{store: store, wagers: wagers, rules: rules, now: time.Now}
}

// CheckIn records daily activity for userID against seasonID. When at is nil
// the current time is used; a supplied date outside the season window fails
// with ErrSeasonClosed.
func (s *CheckInService) CheckIn(ctx context.Context, userID, seasonID uint, at *time.Time) (*CheckInResult, error) {
	when := s.now()
	if at != nil {
		when = *at
	}

	var res *CheckInResult
	err := s.store.Atomically(ctx, func(tx Store) error {
		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		season, err := tx.GetSeason(ctx, seasonID)
		if err != nil {
			return err
		}
		if !season.IsActive || !season.InWindow(when) {
			return ErrSeasonClosed
		}

		today := models.DayStart(when)

		// Any check-in counts as daily activity: advance the global
		// last-login date and overall streak, monotonically.
		s.touchGlobalActivity(user, when, today)

		entry, err := tx.GetSeasonStreak(ctx, userID, seasonID)
		if err != nil {
			return err
		}

		broke := false
		if entry == nil {
			entry = &models.SeasonStreak{
				UserID:        userID,
				SeasonID:      seasonID,
				Streak:        1,
				LastLoginDate: when,
			}
			res = &CheckInResult{Status: StatusCheckedIn, Message: "Checked in successfully."}
		} else {
			switch diff := models.DiffDays(today, entry.LastLoginDate); {
			case diff == 0:
				// Idempotent no-op: nothing is persisted, no cascade runs.
				res = &CheckInResult{
					Status:  StatusAlreadyCheckedIn,
					Message: "Already checked in today.",
					Streak:  entry.Streak,
					TotalXP: user.XP,
				}
				return nil
			case diff == 1:
				entry.Streak++
				entry.LastLoginDate = when
				res = &CheckInResult{Status: StatusCheckedIn, Message: "Checked in successfully."}
			default:
				entry.Streak = 1
				entry.LastLoginDate = when
				broke = true
				res = &CheckInResult{Status: StatusStreakBroken, Message: "Streak broken but checked in."}
			}
		}

		if broke {
			if err := s.wagers.settleOnBreak(ctx, tx, user, when); err != nil {
				return err
			}
		}

		if err := s.queueMilestones(ctx, tx, user.ID, entry.Streak, when); err != nil {
			return err
		}

		if err := tx.SaveSeasonStreak(ctx, entry); err != nil {
			return err
		}
		if err := tx.SaveUser(ctx, user); err != nil {
			return err
		}

		res.Streak = entry.Streak
		res.TotalXP = user.XP
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// touchGlobalActivity updates the user's global last-login date and overall
// streak. The date never moves backwards; a second check-in on the same
// calendar day changes nothing.
func (s *CheckInService) touchGlobalActivity(user *models.User, when, today time.Time) {
	if user.LastLoginDate == nil {
		user.OverallStreak = 1
		t := when
		user.LastLoginDate = &t
		return
	}
	switch diff := models.DiffDays(today, *user.LastLoginDate); {
	case diff == 0:
		return
	case diff == 1:
		user.OverallStreak++
	default:
		user.OverallStreak = 1
	}
	t := when
	user.LastLoginDate = &t
}

// queueMilestones appends pending rewards for the resulting streak value.
// All matching rules fire independently; overlaps are intentional.
func (s *CheckInService) queueMilestones(ctx context.Context, tx Store, userID uint, streak int, when time.Time) error {
	if streak == 5 {
		if err := tx.AppendReward(ctx, &models.UnclaimedReward{
			UserID: userID, XP: s.rules.FiveDayXP, Reason: "5 Day Season Streak", Date: when,
		}); err != nil {
			return err
		}
	}
	if streak == 10 {
		if err := tx.AppendReward(ctx, &models.UnclaimedReward{
			UserID: userID, XP: s.rules.TenDayXP, Reason: "10 Day Season Streak", Date: when,
		}); err != nil {
			return err
		}
	}
	if streak > 0 && streak%3 == 0 {
		if err := tx.AppendReward(ctx, &models.UnclaimedReward{
			UserID: userID, XP: s.rules.ThreeDayXP, Reason: "3 Day Season Streak", Date: when,
		}); err != nil {
			return err
		}
	}
	return nil
}
