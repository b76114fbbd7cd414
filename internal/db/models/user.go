package models

import (
	"time"

	"github.com/google/uuid"
)

// User is one member's registration in one guild, plus both streak models.
// The day-based counters are the legacy model; the session-based counters
// replace them over time, so both are stored independently.
type User struct {
	UserID     string    `db:"user_id"`
	GuildID    string    `db:"guild_id"`
	Username   string    `db:"username"`
	Registered bool      `db:"registered"`
	CreatedAt  time.Time `db:"created_at"`

	CurrentStreak      int        `db:"current_streak"`
	LongestStreak      int        `db:"longest_streak"`
	LastCompletionDate *time.Time `db:"last_completion_date"`

	SessionStreak        int        `db:"session_streak"`
	LongestSessionStreak int        `db:"longest_session_streak"`
	LastCompletedSession *uuid.UUID `db:"last_completed_session"`
}
