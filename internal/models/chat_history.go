package models

import "time"

// ChatHistory holds the accumulated turns of one user's conversation with
// the assistant. Turns is a JSON-encoded []Turn. No soft delete: reset
// removes the row outright so the unique user index stays usable.
type ChatHistory struct {
	ID        uint   `gorm:"primarykey"`
	UserID    string `gorm:"uniqueIndex;not null"`
	Turns     []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Turn is a single exchange entry in a chat history.
type Turn struct {
	Role    string `json:"role"` // "user" or "model"
	Content string `json:"content"`
}
