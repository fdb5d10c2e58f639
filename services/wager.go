package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/streakmate/streakmate/metrics"
	"github.com/streakmate/streakmate/models"
)

// WagerRules are the validation bounds for stakes. A stake must be at least
// MinAmount and at most half the owner's XP at creation time; the end date
// must lie strictly in the future and at most MaxDays out.
type WagerRules struct {
	MinAmount  int
	Multiplier int
	MaxDays    int
}

// WagerService owns the lifecycle of solo bets and friend challenges,
// including the settlement cascade triggered by streak breaks.
type WagerService struct {
	store    Store
	notifier Notifier
	rules    WagerRules
	now      func() time.Time
}

// NewWagerService wires the engine with its collaborators.
func NewWagerService(store Store, notifier Notifier, rules WagerRules) *WagerService {
	return &WagerService{store: store, notifier: notifier, rules: rules, now: time.Now}
}

// CreateSoloBet places a stake against the caller's own streak. The stake is
// debited immediately; at most one active solo bet per user.
func (s *WagerService) CreateSoloBet(ctx context.Context, userID uint, amount int, endDate time.Time) (*models.SoloBet, error) {
	var bet *models.SoloBet
	err := s.store.Atomically(ctx, func(tx Store) error {
		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		if err := s.validateStake(amount, endDate, user.XP); err != nil {
			return err
		}
		open, err := tx.ActiveSoloBets(ctx, userID)
		if err != nil {
			return err
		}
		if len(open) > 0 {
			return ErrDuplicateSoloBet
		}

		user.XP -= amount
		bet = &models.SoloBet{WagerHeader: models.WagerHeader{
			Reference:   uuid.NewString(),
			UserID:      userID,
			Amount:      amount,
			Multiplier:  s.rules.Multiplier,
			BetEndDate:  endDate,
			StreakAtBet: user.OverallStreak,
			Status:      models.WagerActive,
		}}
		if err := tx.SaveSoloBet(ctx, bet); err != nil {
			return err
		}
		return tx.SaveUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return bet, nil
}

// ResolveSoloBet settles a solo bet with the given outcome. The guard is
// idempotent: a wager that is no longer active reports resolved=false with no
// error and no mutation. A win credits amount*multiplier; a loss moves no XP
// since the stake was debited at creation.
func (s *WagerService) ResolveSoloBet(ctx context.Context, betID uint, outcome models.WagerStatus) (bool, error) {
	resolved := false
	err := s.store.Atomically(ctx, func(tx Store) error {
		bet, err := tx.GetSoloBet(ctx, betID)
		if err != nil {
			return err
		}
		if bet.Status != models.WagerActive {
			return nil
		}
		user, err := tx.GetUser(ctx, bet.UserID)
		if err != nil {
			return err
		}
		now := s.now()
		if err := bet.Resolve(outcome, now); err != nil {
			return err
		}
		if outcome == models.WagerWon {
			user.XP += bet.Payout()
			if err := tx.SaveUser(ctx, user); err != nil {
				return err
			}
		}
		if err := tx.SaveSoloBet(ctx, bet); err != nil {
			return err
		}
		resolved = true
		metrics.WagersSettled.WithLabelValues("solo", string(outcome)).Inc()
		s.notifyBetOutcome(ctx, bet, outcome)
		return nil
	})
	return resolved, err
}

// SendChallenge creates a pending friend challenge. No XP moves at send time;
// solvency and bounds are validated against the challenger's balance.
func (s *WagerService) SendChallenge(ctx context.Context, challengerID, opponentID uint, amount int, endDate time.Time) (*models.Challenge, error) {
	if challengerID == opponentID {
		return nil, ErrSelfChallenge
	}
	var ch *models.Challenge
	err := s.store.Atomically(ctx, func(tx Store) error {
		friends, err := tx.AreFriends(ctx, challengerID, opponentID)
		if err != nil {
			return err
		}
		if !friends {
			return ErrNotFriends
		}
		challenger, err := tx.GetUser(ctx, challengerID)
		if err != nil {
			return err
		}
		if _, err := tx.GetUser(ctx, opponentID); err != nil {
			return err
		}
		if err := s.validateStake(amount, endDate, challenger.XP); err != nil {
			return err
		}

		ch = &models.Challenge{
			WagerHeader: models.WagerHeader{
				Reference:   uuid.NewString(),
				UserID:      challengerID,
				Amount:      amount,
				Multiplier:  s.rules.Multiplier,
				BetEndDate:  endDate,
				StreakAtBet: challenger.OverallStreak,
				Status:      models.WagerActive,
			},
			OpponentID:      opponentID,
			ChallengeStatus: models.ChallengePending,
		}
		return tx.SaveChallenge(ctx, ch)
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, opponentID, models.NotifyChallengeReceived,
		fmt.Sprintf("You received a streak challenge for %d XP", amount),
		map[string]any{"challenge_id": ch.ID, "amount": amount})
	return ch, nil
}

// AcceptChallenge activates a pending challenge and debits the stake from
// both participants. Funds move exactly once, here.
func (s *WagerService) AcceptChallenge(ctx context.Context, challengeID, userID uint) (*models.Challenge, error) {
	var ch *models.Challenge
	err := s.store.Atomically(ctx, func(tx Store) error {
		var err error
		ch, err = tx.GetChallenge(ctx, challengeID)
		if err != nil {
			return err
		}
		if ch.OpponentID != userID {
			return ErrNotParticipant
		}
		if ch.ChallengeStatus != models.ChallengePending {
			return ErrChallengeNotPending
		}

		users, err := tx.GetUsersForUpdate(ctx, ch.UserID, ch.OpponentID)
		if err != nil {
			return err
		}
		challenger, opponent := users[ch.UserID], users[ch.OpponentID]
		if challenger.XP < ch.Amount || opponent.XP < ch.Amount {
			return ErrInsufficientXP
		}

		challenger.XP -= ch.Amount
		opponent.XP -= ch.Amount
		ch.ChallengeStatus = models.ChallengeActive
		if err := tx.SaveUser(ctx, challenger); err != nil {
			return err
		}
		if err := tx.SaveUser(ctx, opponent); err != nil {
			return err
		}
		return tx.SaveChallenge(ctx, ch)
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, ch.UserID, models.NotifyChallengeAccepted,
		"Your streak challenge was accepted", map[string]any{"challenge_id": ch.ID})
	return ch, nil
}

// DeclineChallenge rejects a pending challenge. No funds were taken at send
// time, so none move here.
func (s *WagerService) DeclineChallenge(ctx context.Context, challengeID, userID uint) (*models.Challenge, error) {
	var ch *models.Challenge
	err := s.store.Atomically(ctx, func(tx Store) error {
		var err error
		ch, err = tx.GetChallenge(ctx, challengeID)
		if err != nil {
			return err
		}
		if ch.OpponentID != userID {
			return ErrNotParticipant
		}
		if ch.ChallengeStatus != models.ChallengePending {
			return ErrChallengeNotPending
		}
		ch.ChallengeStatus = models.ChallengeDeclined
		if err := ch.Resolve(models.WagerLost, s.now()); err != nil {
			return err
		}
		return tx.SaveChallenge(ctx, ch)
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, ch.UserID, models.NotifyChallengeDeclined,
		"Your streak challenge was declined", map[string]any{"challenge_id": ch.ID})
	return ch, nil
}

// settleOnBreak is invoked from the check-in engine's break branch, inside
// the same transaction, scoped to the breaking user. Solo bets become losses
// with no XP movement; active challenges complete with the counterpart as
// winner, credited amount*multiplier.
func (s *WagerService) settleOnBreak(ctx context.Context, tx Store, loser *models.User, now time.Time) error {
	bets, err := tx.ActiveSoloBets(ctx, loser.ID)
	if err != nil {
		return err
	}
	for _, bet := range bets {
		if err := bet.Resolve(models.WagerLost, now); err != nil {
			return err
		}
		if err := tx.SaveSoloBet(ctx, bet); err != nil {
			return err
		}
		metrics.WagersSettled.WithLabelValues("solo", string(models.WagerLost)).Inc()
		s.notifier.Notify(ctx, loser.ID, models.NotifyBetLost,
			fmt.Sprintf("Your streak broke and you lost a %d XP bet", bet.Amount),
			map[string]any{"bet_id": bet.ID, "amount": bet.Amount})
	}

	challenges, err := tx.ActiveChallengesFor(ctx, loser.ID)
	if err != nil {
		return err
	}
	for _, ch := range challenges {
		winnerID := ch.Counterpart(loser.ID)
		winner, err := tx.GetUser(ctx, winnerID)
		if err != nil {
			return err
		}
		if err := ch.Resolve(models.WagerWon, now); err != nil {
			return err
		}
		ch.ChallengeStatus = models.ChallengeCompleted
		ch.WinnerID = &winnerID
		winner.XP += ch.Payout()
		if err := tx.SaveUser(ctx, winner); err != nil {
			return err
		}
		if err := tx.SaveChallenge(ctx, ch); err != nil {
			return err
		}
		metrics.WagersSettled.WithLabelValues("challenge", string(models.WagerWon)).Inc()
		s.notifier.Notify(ctx, winnerID, models.NotifyChallengeWon,
			fmt.Sprintf("You won a streak challenge and %d XP", ch.Payout()),
			map[string]any{"challenge_id": ch.ID, "payout": ch.Payout()})
		s.notifier.Notify(ctx, loser.ID, models.NotifyChallengeLost,
			"Your streak broke and you lost a challenge",
			map[string]any{"challenge_id": ch.ID})
	}
	return nil
}

// SweepExpired settles wagers whose end date has passed while still active:
// the owner survived, so solo bets pay out as wins; challenges where neither
// side broke end tied with both stakes refunded. Returns the number of
// wagers settled.
func (s *WagerService) SweepExpired(ctx context.Context) (int, error) {
	now := s.now()
	settled := 0

	bets, err := s.store.ExpiredActiveSoloBets(ctx, now)
	if err != nil {
		return 0, err
	}
	for _, bet := range bets {
		ok, err := s.ResolveSoloBet(ctx, bet.ID, models.WagerWon)
		if err != nil {
			return settled, err
		}
		if ok {
			settled++
		}
	}

	challenges, err := s.store.ExpiredActiveChallenges(ctx, now)
	if err != nil {
		return settled, err
	}
	for _, ch := range challenges {
		chID := ch.ID
		err := s.store.Atomically(ctx, func(tx Store) error {
			ch, err := tx.GetChallenge(ctx, chID)
			if err != nil {
				return err
			}
			if ch.ChallengeStatus != models.ChallengeActive {
				return nil
			}
			users, err := tx.GetUsersForUpdate(ctx, ch.UserID, ch.OpponentID)
			if err != nil {
				return err
			}
			if err := ch.Resolve(models.WagerTied, now); err != nil {
				return err
			}
			ch.ChallengeStatus = models.ChallengeCompleted
			users[ch.UserID].XP += ch.Amount
			users[ch.OpponentID].XP += ch.Amount
			if err := tx.SaveUser(ctx, users[ch.UserID]); err != nil {
				return err
			}
			if err := tx.SaveUser(ctx, users[ch.OpponentID]); err != nil {
				return err
			}
			if err := tx.SaveChallenge(ctx, ch); err != nil {
				return err
			}
			settled++
			metrics.WagersSettled.WithLabelValues("challenge", string(models.WagerTied)).Inc()
			s.notifier.Notify(ctx, ch.UserID, models.NotifyChallengeTied,
				"Your streak challenge ended in a tie; stake refunded",
				map[string]any{"challenge_id": ch.ID})
			s.notifier.Notify(ctx, ch.OpponentID, models.NotifyChallengeTied,
				"Your streak challenge ended in a tie; stake refunded",
				map[string]any{"challenge_id": ch.ID})
			return nil
		})
		if err != nil {
			return settled, err
		}
	}
	return settled, nil
}

func (s *WagerService) validateStake(amount int, endDate time.Time, balance int) error {
	if amount < s.rules.MinAmount {
		return ErrStakeTooSmall
	}
	if amount > balance/2 {
		return ErrStakeTooLarge
	}
	now := s.now()
	if !endDate.After(now) || endDate.After(now.AddDate(0, 0, s.rules.MaxDays)) {
		return ErrBadBetWindow
	}
	return nil
}

func (s *WagerService) notifyBetOutcome(ctx context.Context, bet *models.SoloBet, outcome models.WagerStatus) {
	switch outcome {
	case models.WagerWon:
		s.notifier.Notify(ctx, bet.UserID, models.NotifyBetWon,
			fmt.Sprintf("You survived your bet and won %d XP", bet.Payout()),
			map[string]any{"bet_id": bet.ID, "payout": bet.Payout()})
	case models.WagerLost:
		s.notifier.Notify(ctx, bet.UserID, models.NotifyBetLost,
			fmt.Sprintf("You lost your %d XP bet", bet.Amount),
			map[string]any{"bet_id": bet.ID, "amount": bet.Amount})
	}
}
