package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/streakmate/streakmate/models"
)

// memStore is an in-memory Store for engine tests. It hands out copies so a
// mutation only sticks after the corresponding Save call, like a real row.
// Atomically runs fn directly; the engines validate before they mutate, so
// rollback behavior is not needed here.
type memStore struct {
	users      map[uint]*models.User
	seasons    map[uint]*models.Season
	streaks    map[string]*models.SeasonStreak
	rewards    []*models.UnclaimedReward
	soloBets   map[uint]*models.SoloBet
	challenges map[uint]*models.Challenge
	friends    map[string]bool
	nextID     uint
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[uint]*models.User{},
		seasons:    map[uint]*models.Season{},
		streaks:    map[string]*models.SeasonStreak{},
		soloBets:   map[uint]*models.SoloBet{},
		challenges: map[uint]*models.Challenge{},
		friends:    map[string]bool{},
	}
}

func (m *memStore) id() uint {
	m.nextID++
	return m.nextID
}

func pairKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

func streakKey(userID, seasonID uint) string {
	return fmt.Sprintf("%d:%d", userID, seasonID)
}

func (m *memStore) addUser(u models.User) *models.User {
	if u.ID == 0 {
		u.ID = m.id()
	}
	m.users[u.ID] = &u
	return &u
}

func (m *memStore) addSeason(s models.Season) *models.Season {
	if s.ID == 0 {
		s.ID = m.id()
	}
	m.seasons[s.ID] = &s
	return &s
}

func (m *memStore) befriend(a, b uint) {
	m.friends[pairKey(a, b)] = true
}

func (m *memStore) Atomically(ctx context.Context, fn func(tx Store) error) error {
	return fn(m)
}

func (m *memStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) GetUsersForUpdate(ctx context.Context, ids ...uint) (map[uint]*models.User, error) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make(map[uint]*models.User, len(ids))
	for _, id := range ids {
		u, err := m.GetUser(ctx, id)
		if err != nil {
			return nil, err
		}
		out[id] = u
	}
	return out, nil
}

func (m *memStore) SaveUser(ctx context.Context, u *models.User) error {
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memStore) GetSeason(ctx context.Context, id uint) (*models.Season, error) {
	s, ok := m.seasons[id]
	if !ok {
		return nil, ErrSeasonNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) GetSeasonStreak(ctx context.Context, userID, seasonID uint) (*models.SeasonStreak, error) {
	s, ok := m.streaks[streakKey(userID, seasonID)]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) SaveSeasonStreak(ctx context.Context, entry *models.SeasonStreak) error {
	if entry.ID == 0 {
		entry.ID = m.id()
	}
	cp := *entry
	m.streaks[streakKey(entry.UserID, entry.SeasonID)] = &cp
	return nil
}

func (m *memStore) AppendReward(ctx context.Context, r *models.UnclaimedReward) error {
	if r.ID == 0 {
		r.ID = m.id()
	}
	cp := *r
	m.rewards = append(m.rewards, &cp)
	return nil
}

func (m *memStore) ListRewards(ctx context.Context, userID uint) ([]models.UnclaimedReward, error) {
	var out []models.UnclaimedReward
	for _, r := range m.rewards {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memStore) DeleteRewards(ctx context.Context, userID uint) error {
	kept := m.rewards[:0]
	for _, r := range m.rewards {
		if r.UserID != userID {
			kept = append(kept, r)
		}
	}
	m.rewards = kept
	return nil
}

func (m *memStore) GetSoloBet(ctx context.Context, id uint) (*models.SoloBet, error) {
	b, ok := m.soloBets[id]
	if !ok {
		return nil, ErrWagerNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memStore) ActiveSoloBets(ctx context.Context, userID uint) ([]*models.SoloBet, error) {
	var out []*models.SoloBet
	for _, b := range m.soloBets {
		if b.UserID == userID && b.Status == models.WagerActive {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) ExpiredActiveSoloBets(ctx context.Context, before time.Time) ([]*models.SoloBet, error) {
	var out []*models.SoloBet
	for _, b := range m.soloBets {
		if b.Status == models.WagerActive && b.BetEndDate.Before(before) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) SaveSoloBet(ctx context.Context, b *models.SoloBet) error {
	if b.ID == 0 {
		b.ID = m.id()
	}
	cp := *b
	m.soloBets[b.ID] = &cp
	return nil
}

func (m *memStore) GetChallenge(ctx context.Context, id uint) (*models.Challenge, error) {
	c, ok := m.challenges[id]
	if !ok {
		return nil, ErrWagerNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) ActiveChallengesFor(ctx context.Context, userID uint) ([]*models.Challenge, error) {
	var out []*models.Challenge
	for _, c := range m.challenges {
		if c.Involves(userID) && c.ChallengeStatus == models.ChallengeActive {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) ExpiredActiveChallenges(ctx context.Context, before time.Time) ([]*models.Challenge, error) {
	var out []*models.Challenge
	for _, c := range m.challenges {
		if c.ChallengeStatus == models.ChallengeActive && c.BetEndDate.Before(before) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) SaveChallenge(ctx context.Context, c *models.Challenge) error {
	if c.ID == 0 {
		c.ID = m.id()
	}
	cp := *c
	m.challenges[c.ID] = &cp
	return nil
}

func (m *memStore) AreFriends(ctx context.Context, a, b uint) (bool, error) {
	return m.friends[pairKey(a, b)], nil
}

// recordingNotifier collects notifications for assertions.
type recordingNotifier struct {
	sent []sentNotification
}

type sentNotification struct {
	UserID uint
	Kind   string
}

func (n *recordingNotifier) Notify(ctx context.Context, userID uint, kind, message string, data map[string]any) {
	n.sent = append(n.sent, sentNotification{UserID: userID, Kind: kind})
}

func (n *recordingNotifier) countKind(kind string) int {
	c := 0
	for _, s := range n.sent {
		if s.Kind == kind {
			c++
		}
	}
	return c
}
