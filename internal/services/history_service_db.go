package services

import (
	"context"
	"encoding/json"
	"errors"

	"surcan_assistant_backend/internal/models"

	"gorm.io/gorm"
)

// DefaultHistoryStore implements HistoryStore on GORM, one row per user
// holding the JSON-encoded turn list. This replaces the cookie-backed
// session dict the web widget formerly relied on.
type DefaultHistoryStore struct {
	db *gorm.DB
}

// NewHistoryStoreDB creates a new DefaultHistoryStore
func NewHistoryStoreDB(db *gorm.DB) HistoryStore {
	return &DefaultHistoryStore{db: db}
}

func (s *DefaultHistoryStore) Turns(ctx context.Context, userID string) ([]models.Turn, error) {
	var row models.ChatHistory
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(row.Turns) == 0 {
		return nil, nil
	}

	var turns []models.Turn
	if err := json.Unmarshal(row.Turns, &turns); err != nil {
		return nil, err
	}
	return turns, nil
}

func (s *DefaultHistoryStore) Append(ctx context.Context, userID string, turns ...models.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.ChatHistory
		err := tx.Where("user_id = ?", userID).First(&row).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var existing []models.Turn
		if len(row.Turns) > 0 {
			if err := json.Unmarshal(row.Turns, &existing); err != nil {
				return err
			}
		}

		encoded, err := json.Marshal(append(existing, turns...))
		if err != nil {
			return err
		}

		row.UserID = userID
		row.Turns = encoded
		return tx.Save(&row).Error
	})
}

func (s *DefaultHistoryStore) Reset(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.ChatHistory{}).Error
}
