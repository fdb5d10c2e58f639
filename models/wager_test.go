package models

import (
	"testing"
	"time"
)

func TestWagerResolveTransitions(t *testing.T) {
	at := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	h := WagerHeader{ID: 1, Amount: 40, Multiplier: 2, Status: WagerActive}
	if err := h.Resolve(WagerWon, at); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if h.Status != WagerWon {
		t.Errorf("status = %s, want won", h.Status)
	}
	if h.ResolvedAt == nil || !h.ResolvedAt.Equal(at) {
		t.Errorf("resolved_at = %v, want %v", h.ResolvedAt, at)
	}

	// Terminal states are terminal.
	if err := h.Resolve(WagerLost, at); err == nil {
		t.Error("re-resolving a settled wager succeeded")
	}
	if h.Status != WagerWon {
		t.Errorf("status changed to %s after failed resolve", h.Status)
	}
}

func TestWagerResolveRejectsActive(t *testing.T) {
	h := WagerHeader{ID: 1, Status: WagerActive}
	if err := h.Resolve(WagerActive, time.Now()); err == nil {
		t.Error("resolving to active succeeded")
	}
}

func TestWagerPayout(t *testing.T) {
	h := WagerHeader{Amount: 40, Multiplier: 2}
	if got := h.Payout(); got != 80 {
		t.Errorf("payout = %d, want 80", got)
	}
}

func TestChallengeCounterpart(t *testing.T) {
	c := Challenge{WagerHeader: WagerHeader{UserID: 7}, OpponentID: 9}
	if got := c.Counterpart(7); got != 9 {
		t.Errorf("counterpart of 7 = %d, want 9", got)
	}
	if got := c.Counterpart(9); got != 7 {
		t.Errorf("counterpart of 9 = %d, want 7", got)
	}
	if !c.Involves(7) || !c.Involves(9) {
		t.Error("participants not recognized")
	}
	if c.Involves(8) {
		t.Error("stranger recognized as participant")
	}
}
