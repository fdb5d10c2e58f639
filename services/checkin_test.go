package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/streakmate/streakmate/models"
)

var day = 24 * time.Hour

func testClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestEngines(now time.Time) (*memStore, *recordingNotifier, *WagerService, *CheckInService) {
	store := newMemStore()
	notifier := &recordingNotifier{}
	wagers := NewWagerService(store, notifier, WagerRules{MinAmount: 10, Multiplier: 2, MaxDays: 30})
	wagers.now = testClock(now)
	checkins := NewCheckInService(store, wagers, RewardRules{ThreeDayXP: 30, FiveDayXP: 50, TenDayXP: 100})
	checkins.now = testClock(now)
	return store, notifier, wagers, checkins
}

func januarySeason(store *memStore) *models.Season {
	return store.addSeason(models.Season{
		Name:      "January",
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		IsActive:  true,
	})
}

func TestCheckInFirstTime(t *testing.T) {
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	store, _, _, checkins := newTestEngines(now)
	season := januarySeason(store)
	user := store.addUser(models.User{Username: "ada", XP: 100})

	res, err := checkins.CheckIn(context.Background(), user.ID, season.ID, nil)
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if res.Status != StatusCheckedIn {
		t.Errorf("status = %s, want %s", res.Status, StatusCheckedIn)
	}
	if res.Streak != 1 {
		t.Errorf("streak = %d, want 1", res.Streak)
	}
	if res.XPGained != 0 {
		t.Errorf("xp_gained = %d, want 0", res.XPGained)
	}
	if got := store.users[user.ID].OverallStreak; got != 1 {
		t.Errorf("overall streak = %d, want 1", got)
	}
}

func TestCheckInSameDayIsNoOp(t *testing.T) {
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	store, _, _, checkins := newTestEngines(now)
	season := januarySeason(store)
	user := store.addUser(models.User{Username: "ada", XP: 100})

	if _, err := checkins.CheckIn(context.Background(), user.ID, season.ID, nil); err != nil {
		t.Fatalf("first CheckIn: %v", err)
	}
	later := now.Add(5 * time.Hour)
	res, err := checkins.CheckIn(context.Background(), user.ID, season.ID, &later)
	if err != nil {
		t.Fatalf("second CheckIn: %v", err)
	}
	if res.Status != StatusAlreadyCheckedIn {
		t.Errorf("status = %s, want %s", res.Status, StatusAlreadyCheckedIn)
	}
	if res.Message != "Already checked in today." {
		t.Errorf("message = %q", res.Message)
	}
	if res.Streak != 1 {
		t.Errorf("streak = %d, want 1", res.Streak)
	}
	if len(store.rewards) != 0 {
		t.Errorf("rewards queued on no-op: %d", len(store.rewards))
	}
}

func TestCheckInConsecutiveDayIncrements(t *testing.T) {
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	store, _, _, checkins := newTestEngines(now)
	season := januarySeason(store)
	user := store.addUser(models.User{Username: "ada", XP: 100})

	if _, err := checkins.CheckIn(context.Background(), user.ID, season.ID, nil); err != nil {
		t.Fatalf("day 1: %v", err)
	}
	next := now.Add(day)
	res, err := checkins.CheckIn(context.Background(), user.ID, season.ID, &next)
	if err != nil {
		t.Fatalf("day 2: %v", err)
	}
	if res.Status != StatusCheckedIn || res.Streak != 2 {
		t.Errorf("got status=%s streak=%d, want checked_in streak=2", res.Status, res.Streak)
	}
	if got := store.users[user.ID].OverallStreak; got != 2 {
		t.Errorf("overall streak = %d, want 2", got)
	}
}

func TestCheckInGapResetsStreak(t *testing.T) {
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	store, _, _, checkins := newTestEngines(now)
	season := januarySeason(store)
	user := store.addUser(models.User{Username: "ada", XP: 100})

	for i := 0; i < 3; i++ {
		at := now.Add(time.Duration(i) * day)
		if _, err := checkins.CheckIn(context.Background(), user.ID, season.ID, &at); err != nil {
			t.Fatalf("day %d: %v", i+1, err)
		}
	}

	// Skip two days, streak of 3 collapses to 1.
	at := now.Add(5 * day)
	res, err := checkins.CheckIn(context.Background(), user.ID, season.ID, &at)
	if err != nil {
		t.Fatalf("after gap: %v", err)
	}
	if res.Status != StatusStreakBroken {
		t.Errorf("status = %s, want %s", res.Status, StatusStreakBroken)
	}
	if res.Message != "Streak broken but checked in." {
		t.Errorf("message = %q", res.Message)
	}
	if res.Streak != 1 {
		t.Errorf("streak = %d, want 1", res.Streak)
	}
	if got := store.users[user.ID].OverallStreak; got != 1 {
		t.Errorf("overall streak = %d, want 1", got)
	}
}

func TestCheckInOutsideSeasonWindow(t *testing.T) {
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	store, _, _, checkins := newTestEngines(now)
	season := januarySeason(store)
	user := store.addUser(models.User{Username: "ada", XP: 100})

	_, err := checkins.CheckIn(context.Background(), user.ID, season.ID, nil)
	if !errors.Is(err, ErrSeasonClosed) {
		t.Fatalf("err = %v, want ErrSeasonClosed", err)
	}
}

func TestCheckInInactiveSeason(t *testing.T) {
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	store, _, _, checkins := newTestEngines(now)
	season := store.addSeason(models.Season{
		Name:      "January",
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		IsActive:  false,
	})
	user := store.addUser(models.User{Username: "ada", XP: 100})

	if _, err := checkins.CheckIn(context.Background(), user.ID, season.ID, nil); !errors.Is(err, ErrSeasonClosed) {
		t.Fatalf("err = %v, want ErrSeasonClosed", err)
	}
}

func TestCheckInUnknownSeason(t *testing.T) {
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	store, _, _, checkins := newTestEngines(now)
	user := store.addUser(models.User{Username: "ada", XP: 100})

	if _, err := checkins.CheckIn(context.Background(), user.ID, 999, nil); !errors.Is(err, ErrSeasonNotFound) {
		t.Fatalf("err = %v, want ErrSeasonNotFound", err)
	}
}

// Milestones overlap by rule: 3/6/9... fire the every-3-days reward, 5 and 10
// fire their own rewards only. Streak 15 hits the %3 rule, not the 5-day one.
func TestMilestoneRewards(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	store, _, _, checkins := newTestEngines(now)
	season := januarySeason(store)
	user := store.addUser(models.User{Username: "ada", XP: 0})

	expected := map[int][]string{
		3:  {"3 Day Season Streak"},
		5:  {"5 Day Season Streak"},
		6:  {"3 Day Season Streak"},
		9:  {"3 Day Season Streak"},
		10: {"10 Day Season Streak"},
		12: {"3 Day Season Streak"},
	}

	seen := map[int][]string{}
	prev := 0
	for i := 0; i < 12; i++ {
		at := now.Add(time.Duration(i) * day)
		res, err := checkins.CheckIn(context.Background(), user.ID, season.ID, &at)
		if err != nil {
			t.Fatalf("day %d: %v", i+1, err)
		}
		for _, r := range store.rewards[prev:] {
			seen[res.Streak] = append(seen[res.Streak], r.Reason)
		}
		prev = len(store.rewards)
	}

	for streak, want := range expected {
		got := seen[streak]
		if len(got) != len(want) {
			t.Errorf("streak %d: rewards %v, want %v", streak, got, want)
			continue
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("streak %d: reward %q, want %q", streak, got[i], want[i])
			}
		}
	}

	// Rewards queue, they never credit XP directly.
	if got := store.users[user.ID].XP; got != 0 {
		t.Errorf("xp = %d, want 0 before claiming", got)
	}
}

func TestClaimRewards(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	store, _, _, checkins := newTestEngines(now)
	season := januarySeason(store)
	user := store.addUser(models.User{Username: "ada", XP: 10})

	for i := 0; i < 5; i++ {
		at := now.Add(time.Duration(i) * day)
		if _, err := checkins.CheckIn(context.Background(), user.ID, season.ID, &at); err != nil {
			t.Fatalf("day %d: %v", i+1, err)
		}
	}
	// Streak 3 queued 30, streak 5 queued 50.
	claimed, err := checkins.ClaimRewards(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ClaimRewards: %v", err)
	}
	if claimed != 80 {
		t.Errorf("claimed = %d, want 80", claimed)
	}
	if got := store.users[user.ID].XP; got != 90 {
		t.Errorf("xp = %d, want 90", got)
	}

	// Second claim finds an empty queue.
	claimed, err = checkins.ClaimRewards(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("second ClaimRewards: %v", err)
	}
	if claimed != 0 {
		t.Errorf("second claim = %d, want 0", claimed)
	}
}

// A streak break settles the user's wagers inside the same check-in: the solo
// stake is gone (it was debited at creation) and the challenge pot goes to
// the opponent.
func TestStreakBreakCascade(t *testing.T) {
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	store, notifier, wagers, checkins := newTestEngines(now)
	season := januarySeason(store)
	loser := store.addUser(models.User{Username: "ada", XP: 100})
	winner := store.addUser(models.User{Username: "bob", XP: 100})
	store.befriend(loser.ID, winner.ID)

	if _, err := checkins.CheckIn(context.Background(), loser.ID, season.ID, nil); err != nil {
		t.Fatalf("seed check-in: %v", err)
	}

	endDate := now.Add(20 * day)
	bet, err := wagers.CreateSoloBet(context.Background(), loser.ID, 40, endDate)
	if err != nil {
		t.Fatalf("CreateSoloBet: %v", err)
	}
	if got := store.users[loser.ID].XP; got != 60 {
		t.Fatalf("xp after stake = %d, want 60", got)
	}

	ch, err := wagers.SendChallenge(context.Background(), loser.ID, winner.ID, 20, endDate)
	if err != nil {
		t.Fatalf("SendChallenge: %v", err)
	}
	if _, err := wagers.AcceptChallenge(context.Background(), ch.ID, winner.ID); err != nil {
		t.Fatalf("AcceptChallenge: %v", err)
	}
	// Stakes debited on accept: loser 60-20=40, winner 100-20=80.
	if got := store.users[loser.ID].XP; got != 40 {
		t.Fatalf("loser xp after accept = %d, want 40", got)
	}
	if got := store.users[winner.ID].XP; got != 80 {
		t.Fatalf("winner xp after accept = %d, want 80", got)
	}

	// Miss two days.
	at := now.Add(3 * day)
	res, err := checkins.CheckIn(context.Background(), loser.ID, season.ID, &at)
	if err != nil {
		t.Fatalf("break check-in: %v", err)
	}
	if res.Status != StatusStreakBroken {
		t.Fatalf("status = %s, want %s", res.Status, StatusStreakBroken)
	}

	gotBet := store.soloBets[bet.ID]
	if gotBet.Status != models.WagerLost {
		t.Errorf("solo bet status = %s, want lost", gotBet.Status)
	}
	gotCh := store.challenges[ch.ID]
	if gotCh.Status != models.WagerWon || gotCh.ChallengeStatus != models.ChallengeCompleted {
		t.Errorf("challenge status = %s/%s, want won/completed", gotCh.Status, gotCh.ChallengeStatus)
	}
	if gotCh.WinnerID == nil || *gotCh.WinnerID != winner.ID {
		t.Errorf("winner id = %v, want %d", gotCh.WinnerID, winner.ID)
	}

	// Loser keeps 40: the solo loss moves nothing further. Winner gets the
	// 2x pot: 80+40=120.
	if got := store.users[loser.ID].XP; got != 40 {
		t.Errorf("loser xp = %d, want 40", got)
	}
	if got := store.users[winner.ID].XP; got != 120 {
		t.Errorf("winner xp = %d, want 120", got)
	}

	if notifier.countKind(models.NotifyBetLost) != 1 {
		t.Error("expected one bet_lost notification")
	}
	if notifier.countKind(models.NotifyChallengeWon) != 1 {
		t.Error("expected one challenge_won notification")
	}
	if notifier.countKind(models.NotifyChallengeLost) != 1 {
		t.Error("expected one challenge_lost notification")
	}
}
