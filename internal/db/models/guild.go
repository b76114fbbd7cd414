package models

import (
	"time"
)

// GuildConfig is the per-guild reading configuration. CurrentUnit is the
// cursor into the content set; it only moves inside the same transaction
// that creates a session.
type GuildConfig struct {
	GuildID       string    `db:"guild_id"`
	ChannelID     string    `db:"channel_id"`
	ContentSource string    `db:"content_source"`
	UnitsPerDay   int       `db:"units_per_day"`
	CurrentUnit   int       `db:"current_unit"`
	TotalUnits    int       `db:"total_units"`
	MosqueID      string    `db:"mosque_id"`
	Configured    bool      `db:"configured"`
	SummaryOnDone bool      `db:"summary_on_done"`
	CreatedAt     time.Time `db:"created_at"`
}
