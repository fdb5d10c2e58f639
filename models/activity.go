package models

import "time"

// DailyActivity stores aggregated API hit counts per day and route,
// feeding the admin stats endpoint.
type DailyActivity struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      time.Time `gorm:"index:idx_activity_date_route,unique;type:date;not null" json:"date"`
	Route     string    `gorm:"index;index:idx_activity_date_route,unique;size:255;not null" json:"route"`
	Count     int64     `gorm:"not null;default:0" json:"count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
