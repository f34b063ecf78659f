package models

import "time"

// HistoryEntry records one operation triggered from the bot
type HistoryEntry struct {
	UserID    int64     `bson:"user_id"`
	Username  string    `bson:"username"`
	Operation string    `bson:"operation"`
	Title     string    `bson:"title,omitempty"`
	Outcome   string    `bson:"outcome"`
	CreatedAt time.Time `bson:"created_at"`
}
