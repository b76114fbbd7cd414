package db

import (
	"context"

	"wirdbot/internal/db/models"

	"github.com/jackc/pgx/v5"
)

// GetGuildConfig retrieves a guild's reading configuration
func (db *DB) GetGuildConfig(ctx context.Context, guildID string) (*models.GuildConfig, error) {
	query := `
		SELECT guild_id, channel_id, content_source, units_per_day, current_unit,
		       total_units, mosque_id, configured, summary_on_done, created_at
		FROM guilds
		WHERE guild_id = $1`

	guild := &models.GuildConfig{}
	err := db.QueryRow(ctx, query, guildID).Scan(
		&guild.GuildID,
		&guild.ChannelID,
		&guild.ContentSource,
		&guild.UnitsPerDay,
		&guild.CurrentUnit,
		&guild.TotalUnits,
		&guild.MosqueID,
		&guild.Configured,
		&guild.SummaryOnDone,
		&guild.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return guild, nil
}

// UpsertGuildConfig creates or replaces a guild's reading configuration
func (db *DB) UpsertGuildConfig(ctx context.Context, guild *models.GuildConfig) error {
	query := `
		INSERT INTO guilds (guild_id, channel_id, content_source, units_per_day, current_unit,
		                    total_units, mosque_id, configured, summary_on_done, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (guild_id) DO UPDATE SET
			channel_id = EXCLUDED.channel_id,
			content_source = EXCLUDED.content_source,
			units_per_day = EXCLUDED.units_per_day,
			current_unit = EXCLUDED.current_unit,
			total_units = EXCLUDED.total_units,
			mosque_id = EXCLUDED.mosque_id,
			configured = EXCLUDED.configured,
			summary_on_done = EXCLUDED.summary_on_done`

	_, err := db.Exec(ctx, query,
		guild.GuildID,
		guild.ChannelID,
		guild.ContentSource,
		guild.UnitsPerDay,
		guild.CurrentUnit,
		guild.TotalUnits,
		guild.MosqueID,
		guild.Configured,
		guild.SummaryOnDone,
		guild.CreatedAt,
	)
	return err
}

// GetConfiguredGuildIDs lists the guilds the scheduler should evaluate
func (db *DB) GetConfiguredGuildIDs(ctx context.Context) ([]string, error) {
	query := `SELECT guild_id FROM guilds WHERE configured = TRUE`

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
