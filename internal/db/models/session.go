package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Session is one day's reading assignment for one guild: an inclusive range
// of unit indices that may wrap past the end of the content set back to 0.
// TotalUnits is snapshotted at creation so the range stays interpretable if
// the guild's configuration changes later.
type Session struct {
	ID          uuid.UUID      `db:"id"`
	GuildID     string         `db:"guild_id"`
	SessionDate time.Time      `db:"session_date"`
	StartUnit   int            `db:"start_unit"`
	EndUnit     int            `db:"end_unit"`
	TotalUnits  int            `db:"total_units"`
	MessageIDs  pq.StringArray `db:"message_ids"`
	IsCompleted bool           `db:"is_completed"`
	CompletedAt *time.Time     `db:"completed_at"`
	CreatedAt   time.Time      `db:"created_at"`
}

// UnitCount returns the number of units in the session's range.
func (s *Session) UnitCount() int {
	return (s.EndUnit-s.StartUnit+s.TotalUnits)%s.TotalUnits + 1
}

// Units returns the unit indices in delivery order, wrapping modulo TotalUnits.
func (s *Session) Units() []int {
	units := make([]int, s.UnitCount())
	for i := range units {
		units[i] = (s.StartUnit + i) % s.TotalUnits
	}
	return units
}

// Contains reports whether unit falls inside the session's range.
func (s *Session) Contains(unit int) bool {
	if unit < 0 || unit >= s.TotalUnits {
		return false
	}
	offset := (unit - s.StartUnit + s.TotalUnits) % s.TotalUnits
	return offset < s.UnitCount()
}
