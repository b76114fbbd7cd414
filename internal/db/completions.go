package db

import (
	"context"

	"wirdbot/internal/db/models"

	"github.com/google/uuid"
)

// InsertCompletion records one completion. The unique constraint on
// (user_id, guild_id, unit_index, session_id) makes resubmission a no-op;
// the return value reports whether a new row landed.
func (db *DB) InsertCompletion(ctx context.Context, completion *models.Completion) (bool, error) {
	query := `
		INSERT INTO completions (id, user_id, guild_id, unit_index, completion_date, session_id, is_late, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, guild_id, unit_index, session_id) DO NOTHING`

	tag, err := db.Exec(ctx, query,
		completion.ID.String(),
		completion.UserID,
		completion.GuildID,
		completion.UnitIndex,
		completion.CompletionDate,
		completion.SessionID.String(),
		completion.IsLate,
		completion.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// GetUserSessionUnits lists the units a member has completed for a session
func (db *DB) GetUserSessionUnits(ctx context.Context, userID string, sessionID uuid.UUID) ([]int, error) {
	query := `
		SELECT unit_index
		FROM completions
		WHERE user_id = $1 AND session_id = $2
		ORDER BY unit_index`

	rows, err := db.Query(ctx, query, userID, sessionID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []int
	for rows.Next() {
		var unit int
		if err := rows.Scan(&unit); err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	return units, rows.Err()
}

// CountSessionCompletions counts completion rows for a session made by
// currently registered members
func (db *DB) CountSessionCompletions(ctx context.Context, sessionID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM completions c
		JOIN users u ON u.user_id = c.user_id AND u.guild_id = c.guild_id
		WHERE c.session_id = $1 AND u.registered = TRUE`

	var count int
	err := db.QueryRow(ctx, query, sessionID.String()).Scan(&count)
	return count, err
}
