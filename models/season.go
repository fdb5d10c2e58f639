package models

import "time"

// Season is an administrator-defined date window gating which check-ins are valid.
type Season struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InWindow reports whether t falls inside [startOfDay(StartDate), endOfDay(EndDate)].
func (s *Season) InWindow(t time.Time) bool {
	return !t.Before(DayStart(s.StartDate)) && !t.After(DayEnd(s.EndDate))
}

// DayStart strips the time-of-day component, keeping the calendar day.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayEnd returns the last nanosecond of t's calendar day.
func DayEnd(t time.Time) time.Time {
	return DayStart(t).Add(24*time.Hour - time.Nanosecond)
}

// DiffDays returns the absolute number of whole calendar days between a and b.
func DiffDays(a, b time.Time) int {
	da, db := DayStart(a), DayStart(b)
	d := da.Sub(db)
	if d < 0 {
		d = -d
	}
	return int(d / (24 * time.Hour))
}
