package db

import (
	"context"
	"fmt"
	"time"

	"wirdbot/internal/db/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
)

const sessionColumns = `id, guild_id, session_date, start_unit, end_unit, total_units,
	message_ids, is_completed, completed_at, created_at`

func scanSession(row pgx.Row) (*models.Session, error) {
	session := &models.Session{}
	err := row.Scan(
		&session.ID,
		&session.GuildID,
		&session.SessionDate,
		&session.StartUnit,
		&session.EndUnit,
		&session.TotalUnits,
		&session.MessageIDs,
		&session.IsCompleted,
		&session.CompletedAt,
		&session.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// CreateSession inserts a session and advances the guild cursor in one
// transaction. A same-day duplicate is absorbed: the transaction rolls back
// and the existing session is returned instead.
func (db *DB) CreateSession(ctx context.Context, session *models.Session, newCursor int) (*models.Session, bool, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insert := `
		INSERT INTO sessions (id, guild_id, session_date, start_unit, end_unit, total_units,
		                      message_ids, is_completed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8)
		ON CONFLICT (guild_id, session_date) DO NOTHING`

	tag, err := tx.Exec(ctx, insert,
		session.ID.String(),
		session.GuildID,
		session.SessionDate,
		session.StartUnit,
		session.EndUnit,
		session.TotalUnits,
		pq.StringArray{},
		session.CreatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("error inserting session: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Lost the race; hand back the session that won.
		existing, err := db.GetSessionByDate(ctx, session.GuildID, session.SessionDate)
		if err != nil {
			return nil, false, err
		}
		if existing == nil {
			return nil, false, fmt.Errorf("session for guild %s conflicted but was not found", session.GuildID)
		}
		return existing, false, nil
	}

	advance := `
		UPDATE guilds
		SET current_unit = $1
		WHERE guild_id = $2`

	if _, err := tx.Exec(ctx, advance, newCursor, session.GuildID); err != nil {
		return nil, false, fmt.Errorf("error advancing cursor: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("error committing session: %w", err)
	}
	return session, true, nil
}

// GetSessionByDate retrieves the session for a guild and calendar date
func (db *DB) GetSessionByDate(ctx context.Context, guildID string, date time.Time) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + `
		FROM sessions
		WHERE guild_id = $1 AND session_date = $2`

	return scanSession(db.QueryRow(ctx, query, guildID, date))
}

// GetSessionByID retrieves a session by its ID
func (db *DB) GetSessionByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + `
		FROM sessions
		WHERE id = $1`

	return scanSession(db.QueryRow(ctx, query, id.String()))
}

// GetLatestSessionForUnit finds the most recent session whose range covers
// the unit, accounting for ranges that wrap past the end of the content set
func (db *DB) GetLatestSessionForUnit(ctx context.Context, guildID string, unit int) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + `
		FROM sessions
		WHERE guild_id = $1
		AND MOD($2 - start_unit + total_units, total_units) <= MOD(end_unit - start_unit + total_units, total_units)
		ORDER BY created_at DESC
		LIMIT 1`

	return scanSession(db.QueryRow(ctx, query, guildID, unit))
}

// GetPreviousSession retrieves the guild session created most recently
// before the given instant
func (db *DB) GetPreviousSession(ctx context.Context, guildID string, createdBefore time.Time) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + `
		FROM sessions
		WHERE guild_id = $1 AND created_at < $2
		ORDER BY created_at DESC
		LIMIT 1`

	return scanSession(db.QueryRow(ctx, query, guildID, createdBefore))
}

// MarkSessionCompleted flips the completion flag; only the first caller
// sees a true result
func (db *DB) MarkSessionCompleted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	query := `
		UPDATE sessions
		SET is_completed = TRUE, completed_at = $1
		WHERE id = $2 AND is_completed = FALSE`

	tag, err := db.Exec(ctx, query, at, id.String())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateSessionMessageIDs stores the Discord message IDs delivered for a session
func (db *DB) UpdateSessionMessageIDs(ctx context.Context, id uuid.UUID, messageIDs pq.StringArray) error {
	query := `
		UPDATE sessions
		SET message_ids = $1
		WHERE id = $2`

	_, err := db.Exec(ctx, query, messageIDs, id.String())
	return err
}
