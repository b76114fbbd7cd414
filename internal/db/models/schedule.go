package models

import (
	"time"

	"github.com/google/uuid"
)

// Schedule entry types. A fixed entry fires at TimeValue ("HH:MM" UTC);
// any other type names a prayer event resolved through the clock source.
const (
	TimeTypeFixed = "fixed"

	EventFajr    = "fajr"
	EventDhuhr   = "dhuhr"
	EventAsr     = "asr"
	EventMaghrib = "maghrib"
	EventIsha    = "isha"
)

// PrayerEvents lists the schedule entry types resolved via the clock source.
var PrayerEvents = []string{EventFajr, EventDhuhr, EventAsr, EventMaghrib, EventIsha}

// ScheduleEntry is one configured send time for a guild.
type ScheduleEntry struct {
	ID        uuid.UUID `db:"id"`
	GuildID   string    `db:"guild_id"`
	TimeType  string    `db:"time_type"`
	TimeValue string    `db:"time_value"`
	Enabled   bool      `db:"enabled"`
	CreatedAt time.Time `db:"created_at"`
}
