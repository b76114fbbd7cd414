package models

import (
	"time"

	"github.com/google/uuid"
)

// Completion is one member marking one unit as read. Rows are append-only;
// IsLate marks records made against a session other than the active one.
type Completion struct {
	ID             uuid.UUID `db:"id"`
	UserID         string    `db:"user_id"`
	GuildID        string    `db:"guild_id"`
	UnitIndex      int       `db:"unit_index"`
	CompletionDate time.Time `db:"completion_date"`
	SessionID      uuid.UUID `db:"session_id"`
	IsLate         bool      `db:"is_late"`
	CreatedAt      time.Time `db:"created_at"`
}
