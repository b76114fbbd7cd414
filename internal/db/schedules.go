package db

import (
	"context"
	"time"

	"wirdbot/internal/db/models"

	"github.com/google/uuid"
)

// AddScheduleEntry adds a send time for a guild
func (db *DB) AddScheduleEntry(ctx context.Context, entry *models.ScheduleEntry) error {
	query := `
		INSERT INTO schedule_entries (id, guild_id, time_type, time_value, enabled, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := db.Exec(ctx, query,
		entry.ID.String(),
		entry.GuildID,
		entry.TimeType,
		entry.TimeValue,
		entry.Enabled,
		entry.CreatedAt,
	)
	return err
}

// GetScheduleEntries lists all schedule entries for a guild, enabled or not
func (db *DB) GetScheduleEntries(ctx context.Context, guildID string) ([]*models.ScheduleEntry, error) {
	query := `
		SELECT id, guild_id, time_type, time_value, enabled, created_at
		FROM schedule_entries
		WHERE guild_id = $1
		ORDER BY created_at`

	rows, err := db.Query(ctx, query, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.ScheduleEntry
	for rows.Next() {
		entry := &models.ScheduleEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.GuildID,
			&entry.TimeType,
			&entry.TimeValue,
			&entry.Enabled,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// RemoveScheduleEntry deletes a schedule entry
func (db *DB) RemoveScheduleEntry(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM schedule_entries WHERE id = $1`

	_, err := db.Exec(ctx, query, id.String())
	return err
}

// SetScheduleEntryEnabled toggles a schedule entry without removing it
func (db *DB) SetScheduleEntryEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	query := `
		UPDATE schedule_entries
		SET enabled = $1
		WHERE id = $2`

	_, err := db.Exec(ctx, query, enabled, id.String())
	return err
}

// NewScheduleEntry builds a schedule entry row
func NewScheduleEntry(guildID, timeType, timeValue string) *models.ScheduleEntry {
	return &models.ScheduleEntry{
		ID:        uuid.New(),
		GuildID:   guildID,
		TimeType:  timeType,
		TimeValue: timeValue,
		Enabled:   true,
		CreatedAt: time.Now().UTC(),
	}
}
