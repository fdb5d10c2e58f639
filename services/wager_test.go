package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/streakmate/streakmate/models"
)

func TestCreateSoloBetValidation(t *testing.T) {
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	goodEnd := now.Add(10 * day)

	cases := []struct {
		name    string
		xp      int
		amount  int
		endDate time.Time
		wantErr error
	}{
		{"below minimum", 100, 5, goodEnd, ErrStakeTooSmall},
		{"over half balance", 100, 51, goodEnd, ErrStakeTooLarge},
		{"exactly half is allowed", 100, 50, goodEnd, nil},
		{"end date in the past", 100, 20, now.Add(-day), ErrBadBetWindow},
		{"end date equals now", 100, 20, now, ErrBadBetWindow},
		{"end date too far out", 100, 20, now.Add(45 * day), ErrBadBetWindow},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store, _, wagers, _ := newTestEngines(now)
			user := store.addUser(models.User{Username: "ada", XP: tc.xp})

			_, err := wagers.CreateSoloBet(context.Background(), user.ID, tc.amount, tc.endDate)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("err = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			// Failed validation must not touch the balance.
			if got := store.users[user.ID].XP; got != tc.xp {
				t.Errorf("xp = %d, want %d", got, tc.xp)
			}
		})
	}
}

func TestCreateSoloBetDebitsStake(t *testing.T) {
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	store, _, wagers, _ := newTestEngines(now)
	user := store.addUser(models.User{Username: "ada", XP: 100, OverallStreak: 4})

	bet, err := wagers.CreateSoloBet(context.Background(), user.ID, 40, now.Add(10*day))
	if err != nil {
		t.Fatalf("CreateSoloBet: %v", err)
	}
	if got := store.users[user.ID].XP; got != 60 {
		t.Errorf("xp = %d, want 60", got)
	}
	if bet.StreakAtBet != 4 {
		t.Errorf("streak_at_bet = %d, want 4", bet.StreakAtBet)
	}
	if bet.Multiplier != 2 {
		t.Errorf("multiplier = %d, want 2", bet.Multiplier)
	}
	if bet.Reference == "" {
		t.Error("reference not set")
	}
}

func TestCreateSoloBetRejectsSecondActive(t *testing.T) {
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	store, _, wagers, _ := newTestEngines(now)
	user := store.addUser(models.User{Username: "ada", XP: 200})

	if _, err := wagers.CreateSoloBet(context.Background(), user.ID, 40, now.Add(10*day)); err != nil {
		t.Fatalf("first bet: %v", err)
	}
	_, err := wagers.CreateSoloBet(context.Background(), user.ID, 20, now.Add(10*day))
	if !errors.Is(err, ErrDuplicateSoloBet) {
		t.Fatalf("err = %v, want ErrDuplicateSoloBet", err)
	}
}

func TestResolveSoloBetWinCreditsDouble(t *testing.T) {
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	store, notifier, wagers, _ := newTestEngines(now)
	user := store.addUser(models.User{Username: "ada", XP: 100})

	bet, err := wagers.CreateSoloBet(context.Background(), user.ID, 40, now.Add(10*day))
	if err != nil {
		t.Fatalf("CreateSoloBet: %v", err)
	}

	resolved, err := wagers.ResolveSoloBet(context.Background(), bet.ID, models.WagerWon)
	if err != nil {
		t.Fatalf("ResolveSoloBet: %v", err)
	}
	if !resolved {
		t.Fatal("resolved = false, want true")
	}
	// 100 - 40 stake + 80 payout.
	if got := store.users[user.ID].XP; got != 140 {
		t.Errorf("xp = %d, want 140", got)
	}
	if store.soloBets[bet.ID].ResolvedAt == nil {
		t.Error("resolved_at not set")
	}
	if notifier.countKind(models.NotifyBetWon) != 1 {
		t.Error("expected one bet_won notification")
	}
}

func TestResolveSoloBetIsIdempotent(t *testing.T) {
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	store, _, wagers, _ := newTestEngines(now)
	user := store.addUser(models.User{Username: "ada", XP: 100})

	bet, err := wagers.CreateSoloBet(context.Background(), user.ID, 40, now.Add(10*day))
	if err != nil {
		t.Fatalf("CreateSoloBet: %v", err)
	}
	if _, err := wagers.ResolveSoloBet(context.Background(), bet.ID, models.WagerWon); err != nil {
		t.Fatalf("first resolve: %v", err)
	}

	resolved, err := wagers.ResolveSoloBet(context.Background(), bet.ID, models.WagerWon)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if resolved {
		t.Error("second resolve reported resolved = true")
	}
	// No double credit.
	if got := store.users[user.ID].XP; got != 140 {
		t.Errorf("xp = %d, want 140", got)
	}
}

func TestSendChallengeRules(t *testing.T) {
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	store, notifier, wagers, _ := newTestEngines(now)
	ada := store.addUser(models.User{Username: "ada", XP: 100})
	bob := store.addUser(models.User{Username: "bob", XP: 100})
	eve := store.addUser(models.User{Username: "eve", XP: 100})
	store.befriend(ada.ID, bob.ID)

	if _, err := wagers.SendChallenge(context.Background(), ada.ID, ada.ID, 20, now.Add(10*day)); !errors.Is(err, ErrSelfChallenge) {
		t.Errorf("self challenge err = %v, want ErrSelfChallenge", err)
	}
	if _, err := wagers.SendChallenge(context.Background(), ada.ID, eve.ID, 20, now.Add(10*day)); !errors.Is(err, ErrNotFriends) {
		t.Errorf("stranger challenge err = %v, want ErrNotFriends", err)
	}

	ch, err := wagers.SendChallenge(context.Background(), ada.ID, bob.ID, 20, now.Add(10*day))
	if err != nil {
		t.Fatalf("SendChallenge: %v", err)
	}
	if ch.ChallengeStatus != models.ChallengePending {
		t.Errorf("status = %s, want pending", ch.ChallengeStatus)
	}
	// No XP moves at send time.
	if got := store.users[ada.ID].XP; got != 100 {
		t.Errorf("challenger xp = %d, want 100", got)
	}
	if notifier.countKind(models.NotifyChallengeReceived) != 1 {
		t.Error("expected one challenge_received notification")
	}
}

func TestAcceptChallengeDebitsBoth(t *testing.T) {
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	store, _, wagers, _ := newTestEngines(now)
	ada := store.addUser(models.User{Username: "ada", XP: 100})
	bob := store.addUser(models.User{Username: "bob", XP: 100})
	store.befriend(ada.ID, bob.ID)

	ch, err := wagers.SendChallenge(context.Background(), ada.ID, bob.ID, 30, now.Add(10*day))
	if err != nil {
		t.Fatalf("SendChallenge: %v", err)
	}

	// Only the opponent can accept.
	if _, err := wagers.AcceptChallenge(context.Background(), ch.ID, ada.ID); !errors.Is(err, ErrNotParticipant) {
		t.Errorf("challenger accept err = %v, want ErrNotParticipant", err)
	}

	got, err := wagers.AcceptChallenge(context.Background(), ch.ID, bob.ID)
	if err != nil {
		t.Fatalf("AcceptChallenge: %v", err)
	}
	if got.ChallengeStatus != models.ChallengeActive {
		t.Errorf("status = %s, want active", got.ChallengeStatus)
	}
	if xp := store.users[ada.ID].XP; xp != 70 {
		t.Errorf("challenger xp = %d, want 70", xp)
	}
	if xp := store.users[bob.ID].XP; xp != 70 {
		t.Errorf("opponent xp = %d, want 70", xp)
	}

	// Accepting twice fails: it is no longer pending.
	if _, err := wagers.AcceptChallenge(context.Background(), ch.ID, bob.ID); !errors.Is(err, ErrChallengeNotPending) {
		t.Errorf("second accept err = %v, want ErrChallengeNotPending", err)
	}
}

func TestAcceptChallengeInsufficientFunds(t *testing.T) {
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	store, _, wagers, _ := newTestEngines(now)
	ada := store.addUser(models.User{Username: "ada", XP: 100})
	bob := store.addUser(models.User{Username: "bob", XP: 100})
	store.befriend(ada.ID, bob.ID)

	ch, err := wagers.SendChallenge(context.Background(), ada.ID, bob.ID, 50, now.Add(10*day))
	if err != nil {
		t.Fatalf("SendChallenge: %v", err)
	}

	// The challenger spends down before the opponent answers.
	ada2, _ := store.GetUser(context.Background(), ada.ID)
	ada2.XP = 10
	_ = store.SaveUser(context.Background(), ada2)

	if _, err := wagers.AcceptChallenge(context.Background(), ch.ID, bob.ID); !errors.Is(err, ErrInsufficientXP) {
		t.Fatalf("err = %v, want ErrInsufficientXP", err)
	}
	// Nothing moved.
	if xp := store.users[bob.ID].XP; xp != 100 {
		t.Errorf("opponent xp = %d, want 100", xp)
	}
}

func TestDeclineChallengeMovesNoFunds(t *testing.T) {
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	store, notifier, wagers, _ := newTestEngines(now)
	ada := store.addUser(models.User{Username: "ada", XP: 100})
	bob := store.addUser(models.User{Username: "bob", XP: 100})
	store.befriend(ada.ID, bob.ID)

	ch, err := wagers.SendChallenge(context.Background(), ada.ID, bob.ID, 30, now.Add(10*day))
	if err != nil {
		t.Fatalf("SendChallenge: %v", err)
	}

	got, err := wagers.DeclineChallenge(context.Background(), ch.ID, bob.ID)
	if err != nil {
		t.Fatalf("DeclineChallenge: %v", err)
	}
	if got.ChallengeStatus != models.ChallengeDeclined {
		t.Errorf("status = %s, want declined", got.ChallengeStatus)
	}
	if xp := store.users[ada.ID].XP; xp != 100 {
		t.Errorf("challenger xp = %d, want 100", xp)
	}
	if xp := store.users[bob.ID].XP; xp != 100 {
		t.Errorf("opponent xp = %d, want 100", xp)
	}
	if notifier.countKind(models.NotifyChallengeDeclined) != 1 {
		t.Error("expected one challenge_declined notification")
	}
}

func TestSweepExpiredSoloBetPaysOut(t *testing.T) {
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	store, _, wagers, _ := newTestEngines(now)
	user := store.addUser(models.User{Username: "ada", XP: 100})

	bet, err := wagers.CreateSoloBet(context.Background(), user.ID, 40, now.Add(5*day))
	if err != nil {
		t.Fatalf("CreateSoloBet: %v", err)
	}

	// Advance the clock past the end date: the owner survived, the bet wins.
	wagers.now = testClock(now.Add(6 * day))
	settled, err := wagers.SweepExpired(context.Background())
	if err != nil {
		t.Fatalf("SweepExpired: %v", err)
	}
	if settled != 1 {
		t.Errorf("settled = %d, want 1", settled)
	}
	if store.soloBets[bet.ID].Status != models.WagerWon {
		t.Errorf("status = %s, want won", store.soloBets[bet.ID].Status)
	}
	if got := store.users[user.ID].XP; got != 140 {
		t.Errorf("xp = %d, want 140", got)
	}

	// Nothing left to sweep.
	settled, err = wagers.SweepExpired(context.Background())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if settled != 0 {
		t.Errorf("second sweep settled = %d, want 0", settled)
	}
}

func TestSweepExpiredChallengeTiesAndRefunds(t *testing.T) {
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	store, notifier, wagers, _ := newTestEngines(now)
	ada := store.addUser(models.User{Username: "ada", XP: 100})
	bob := store.addUser(models.User{Username: "bob", XP: 100})
	store.befriend(ada.ID, bob.ID)

	ch, err := wagers.SendChallenge(context.Background(), ada.ID, bob.ID, 30, now.Add(5*day))
	if err != nil {
		t.Fatalf("SendChallenge: %v", err)
	}
	if _, err := wagers.AcceptChallenge(context.Background(), ch.ID, bob.ID); err != nil {
		t.Fatalf("AcceptChallenge: %v", err)
	}

	wagers.now = testClock(now.Add(6 * day))
	settled, err := wagers.SweepExpired(context.Background())
	if err != nil {
		t.Fatalf("SweepExpired: %v", err)
	}
	if settled != 1 {
		t.Errorf("settled = %d, want 1", settled)
	}

	gotCh := store.challenges[ch.ID]
	if gotCh.Status != models.WagerTied || gotCh.ChallengeStatus != models.ChallengeCompleted {
		t.Errorf("challenge = %s/%s, want tied/completed", gotCh.Status, gotCh.ChallengeStatus)
	}
	if gotCh.WinnerID != nil {
		t.Errorf("winner id = %v, want nil on tie", gotCh.WinnerID)
	}
	// Both stakes come back.
	if xp := store.users[ada.ID].XP; xp != 100 {
		t.Errorf("challenger xp = %d, want 100", xp)
	}
	if xp := store.users[bob.ID].XP; xp != 100 {
		t.Errorf("opponent xp = %d, want 100", xp)
	}
	if notifier.countKind(models.NotifyChallengeTied) != 2 {
		t.Error("expected a tie notification for both sides")
	}
}

// Pending challenges never expire through the sweeper: the stake was never
// taken, so there is nothing to settle or refund.
func TestSweepIgnoresPendingChallenges(t *testing.T) {
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	store, _, wagers, _ := newTestEngines(now)
	ada := store.addUser(models.User{Username: "ada", XP: 100})
	bob := store.addUser(models.User{Username: "bob", XP: 100})
	store.befriend(ada.ID, bob.ID)

	ch, err := wagers.SendChallenge(context.Background(), ada.ID, bob.ID, 30, now.Add(5*day))
	if err != nil {
		t.Fatalf("SendChallenge: %v", err)
	}

	wagers.now = testClock(now.Add(6 * day))
	settled, err := wagers.SweepExpired(context.Background())
	if err != nil {
		t.Fatalf("SweepExpired: %v", err)
	}
	if settled != 0 {
		t.Errorf("settled = %d, want 0", settled)
	}
	if store.challenges[ch.ID].ChallengeStatus != models.ChallengePending {
		t.Errorf("status = %s, want pending", store.challenges[ch.ID].ChallengeStatus)
	}
}
