package models

import "time"

// DailyCount tallies conversation starts per calendar day. Date carries no
// time component; the store truncates it to midnight UTC before writing.
type DailyCount struct {
	Date  time.Time `gorm:"primaryKey;type:date"`
	Count int       `gorm:"not null;default:0"`
}

func (DailyCount) TableName() string {
	return "daily_counts"
}

// MonthlyCount tallies conversation starts per (year, month).
type MonthlyCount struct {
	Year  int `gorm:"primaryKey"`
	Month int `gorm:"primaryKey"`
	Count int `gorm:"not null;default:0"`
}

func (MonthlyCount) TableName() string {
	return "monthly_counts"
}
