package services

import (
	"context"
	"time"

	"surcan_assistant_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultUsageCounter implements UsageCounter on GORM. Both tallies are
// plain upserts: insert with count = 1, or bump the existing row by one.
type DefaultUsageCounter struct {
	db *gorm.DB
}

// NewUsageCounterDB creates a new DefaultUsageCounter
func NewUsageCounterDB(db *gorm.DB) UsageCounter {
	return &DefaultUsageCounter{db: db}
}

func (s *DefaultUsageCounter) Increment(ctx context.Context, now time.Time) error {
	now = now.UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	daily := models.DailyCount{Date: day, Count: 1}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("daily_counts.count + 1")}),
	}).Create(&daily).Error
	if err != nil {
		return err
	}

	monthly := models.MonthlyCount{Year: now.Year(), Month: int(now.Month()), Count: 1}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "year"}, {Name: "month"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("monthly_counts.count + 1")}),
	}).Create(&monthly).Error
}

// Counts returns the tallies for the day and month containing now. Missing
// rows read as zero.
func (s *DefaultUsageCounter) Counts(ctx context.Context, now time.Time) (daily int, monthly int, err error) {
	now = now.UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var dailyRow models.DailyCount
	res := s.db.WithContext(ctx).Where("date = ?", day).Limit(1).Find(&dailyRow)
	if res.Error != nil {
		return 0, 0, res.Error
	}

	var monthlyRow models.MonthlyCount
	res = s.db.WithContext(ctx).
		Where("year = ? AND month = ?", now.Year(), int(now.Month())).
		Limit(1).Find(&monthlyRow)
	if res.Error != nil {
		return 0, 0, res.Error
	}

	return dailyRow.Count, monthlyRow.Count, nil
}
