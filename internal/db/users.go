package db

import (
	"context"
	"time"

	"wirdbot/internal/db/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `user_id, guild_id, username, registered, created_at,
	current_streak, longest_streak, last_completion_date,
	session_streak, longest_session_streak, last_completed_session`

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.UserID,
		&user.GuildID,
		&user.Username,
		&user.Registered,
		&user.CreatedAt,
		&user.CurrentStreak,
		&user.LongestStreak,
		&user.LastCompletionDate,
		&user.SessionStreak,
		&user.LongestSessionStreak,
		&user.LastCompletedSession,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser retrieves a member's registration for a guild
func (db *DB) GetUser(ctx context.Context, userID, guildID string) (*models.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE user_id = $1 AND guild_id = $2`

	return scanUser(db.QueryRow(ctx, query, userID, guildID))
}

// RegisterUser registers a member for daily tracking, reviving a previous
// registration if one exists
func (db *DB) RegisterUser(ctx context.Context, userID, guildID, username string) error {
	query := `
		INSERT INTO users (user_id, guild_id, username, registered, created_at)
		VALUES ($1, $2, $3, TRUE, $4)
		ON CONFLICT (user_id, guild_id) DO UPDATE SET
			registered = TRUE,
			username = EXCLUDED.username`

	_, err := db.Exec(ctx, query, userID, guildID, username, time.Now().UTC())
	return err
}

// UnregisterUser removes a member from daily tracking; streak history is kept
func (db *DB) UnregisterUser(ctx context.Context, userID, guildID string) error {
	query := `
		UPDATE users
		SET registered = FALSE
		WHERE user_id = $1 AND guild_id = $2`

	_, err := db.Exec(ctx, query, userID, guildID)
	return err
}

// GetRegisteredUsers lists all registered members of a guild
func (db *DB) GetRegisteredUsers(ctx context.Context, guildID string) ([]*models.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE guild_id = $1 AND registered = TRUE
		ORDER BY created_at`

	rows, err := db.Query(ctx, query, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// UpdateDayStreak stores the date-based streak counters
func (db *DB) UpdateDayStreak(ctx context.Context, userID, guildID string, current, longest int, last time.Time) error {
	query := `
		UPDATE users
		SET current_streak = $1, longest_streak = $2, last_completion_date = $3
		WHERE user_id = $4 AND guild_id = $5`

	_, err := db.Exec(ctx, query, current, longest, last, userID, guildID)
	return err
}

// UpdateSessionStreak stores the session-based streak counters
func (db *DB) UpdateSessionStreak(ctx context.Context, userID, guildID string, current, longest int, lastSession uuid.UUID) error {
	query := `
		UPDATE users
		SET session_streak = $1, longest_session_streak = $2, last_completed_session = $3
		WHERE user_id = $4 AND guild_id = $5`

	_, err := db.Exec(ctx, query, current, longest, lastSession.String(), userID, guildID)
	return err
}
