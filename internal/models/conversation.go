package models

import (
	"time"
)

// Conversation is a bounded span of activity from one user. A null EndedAt
// means the conversation is still open; at most one open conversation may
// exist per user at any instant.
type Conversation struct {
	ID        uint       `gorm:"primarykey"`
	UserID    string     `gorm:"index;not null"`
	StartedAt time.Time  `gorm:"index;not null"`
	EndedAt   *time.Time `gorm:"index"`
}
