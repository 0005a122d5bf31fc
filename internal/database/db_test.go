package database_test

import (
	"testing"
	"time"

	"surcan_assistant_backend/internal/database"
	"surcan_assistant_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:migrate_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db))

	conv := models.Conversation{UserID: "user-a", StartedAt: time.Now().UTC()}
	require.NoError(t, db.Create(&conv).Error)
	require.NoError(t, db.Create(&models.DailyCount{
		Date:  time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		Count: 3,
	}).Error)

	// Running the migration again must not touch existing rows.
	require.NoError(t, database.Migrate(db))

	var convCount, dailyCount int64
	require.NoError(t, db.Model(&models.Conversation{}).Count(&convCount).Error)
	require.NoError(t, db.Model(&models.DailyCount{}).Count(&dailyCount).Error)
	assert.Equal(t, int64(1), convCount)
	assert.Equal(t, int64(1), dailyCount)

	var daily models.DailyCount
	require.NoError(t, db.First(&daily).Error)
	assert.Equal(t, 3, daily.Count)
}

func TestChatHistoryUniquePerUser(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:history_unique_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	require.NoError(t, db.Create(&models.ChatHistory{UserID: "user-a", Turns: []byte("[]")}).Error)
	assert.Error(t, db.Create(&models.ChatHistory{UserID: "user-a", Turns: []byte("[]")}).Error)

	// Deleting frees the slot for a fresh row.
	require.NoError(t, db.Where("user_id = ?", "user-a").Delete(&models.ChatHistory{}).Error)
	assert.NoError(t, db.Create(&models.ChatHistory{UserID: "user-a", Turns: []byte("[]")}).Error)
}
