package database

import (
	"fmt"
	"log"
	"os"

	"surcan_assistant_backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {

	// TimeZone=UTC so every timestamp is normalized at the persistence
	// boundary; business logic never sees a naive or local time.
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		sslMode(),
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to auto migrate:", err)
	}
}

// Migrate ensures the schema exists. Safe to call any number of times;
// existing rows are left untouched.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Conversation{},
		&models.DailyCount{},
		&models.MonthlyCount{},
		&models.ChatHistory{},
	)
}

func sslMode() string {
	if mode := os.Getenv("DB_SSLMODE"); mode != "" {
		return mode
	}
	return "require"
}
