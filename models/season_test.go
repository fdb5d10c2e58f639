package models

import (
	"testing"
	"time"
)

func TestDiffDays(t *testing.T) {
	base := time.Date(2026, 1, 10, 23, 50, 0, 0, time.UTC)

	cases := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"same instant", base, base, 0},
		{"same day different hours", base, time.Date(2026, 1, 10, 0, 5, 0, 0, time.UTC), 0},
		{"adjacent days across midnight", time.Date(2026, 1, 11, 0, 5, 0, 0, time.UTC), base, 1},
		{"order does not matter", base, time.Date(2026, 1, 11, 0, 5, 0, 0, time.UTC), 1},
		{"two day gap", time.Date(2026, 1, 12, 1, 0, 0, 0, time.UTC), base, 2},
		{"across month boundary", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 31, 23, 0, 0, 0, time.UTC), 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DiffDays(tc.a, tc.b); got != tc.want {
				t.Errorf("DiffDays = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestSeasonInWindow(t *testing.T) {
	s := Season{
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
	}

	if !s.InWindow(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("first day excluded")
	}
	// End date is inclusive through its whole calendar day.
	if !s.InWindow(time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC)) {
		t.Error("last moment of end date excluded")
	}
	if s.InWindow(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("day after end date included")
	}
	if s.InWindow(time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)) {
		t.Error("day before start date included")
	}
}
