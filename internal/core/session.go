package core

import (
	"context"
	"fmt"
	"time"

	"wirdbot/internal/db/models"

	"github.com/google/uuid"
)

// GetOrCreateToday is the manual send-now path. It returns today's session
// if one exists, otherwise creates it. Safe to call repeatedly.
func (e *Engine) GetOrCreateToday(ctx context.Context, guildID string, now time.Time) (*models.Session, bool, error) {
	guild, err := e.store.GetGuildConfig(ctx, guildID)
	if err != nil {
		return nil, false, fmt.Errorf("loading guild config: %w", err)
	}
	if guild == nil || !guild.Configured {
		return nil, false, ErrGuildNotConfigured
	}

	existing, err := e.store.GetSessionByDate(ctx, guildID, DateOf(now))
	if err != nil {
		return nil, false, fmt.Errorf("checking today's session: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	return e.createSession(ctx, guild, now)
}

// createSession computes the next unit range from the guild cursor, wrapping
// modulo the content size, and persists it together with the advanced
// cursor. A concurrent same-day creation is absorbed by the store and comes
// back as created=false with the winning session.
func (e *Engine) createSession(ctx context.Context, guild *models.GuildConfig, now time.Time) (*models.Session, bool, error) {
	if guild.TotalUnits <= 0 || guild.UnitsPerDay <= 0 || guild.UnitsPerDay > guild.TotalUnits {
		return nil, false, fmt.Errorf("guild %s has invalid reading config (%d units/day of %d)",
			guild.GuildID, guild.UnitsPerDay, guild.TotalUnits)
	}

	start := guild.CurrentUnit % guild.TotalUnits
	session := &models.Session{
		ID:          uuid.New(),
		GuildID:     guild.GuildID,
		SessionDate: DateOf(now),
		StartUnit:   start,
		EndUnit:     (start + guild.UnitsPerDay - 1) % guild.TotalUnits,
		TotalUnits:  guild.TotalUnits,
		CreatedAt:   now.UTC(),
	}
	newCursor := (start + guild.UnitsPerDay) % guild.TotalUnits

	created, fresh, err := e.store.CreateSession(ctx, session, newCursor)
	if err != nil {
		return nil, false, fmt.Errorf("creating session: %w", err)
	}
	return created, fresh, nil
}

// checkSessionComplete re-evaluates the session-wide completion flag. The
// session is complete once every registered member has a record for every
// unit in its range. Only the caller that actually flips the flag sees true.
func (e *Engine) checkSessionComplete(ctx context.Context, session *models.Session, now time.Time) (bool, error) {
	if session.IsCompleted {
		return false, nil
	}

	members, err := e.store.GetRegisteredUsers(ctx, session.GuildID)
	if err != nil {
		return false, fmt.Errorf("loading registered users: %w", err)
	}
	if len(members) == 0 {
		return false, nil
	}

	count, err := e.store.CountSessionCompletions(ctx, session.ID)
	if err != nil {
		return false, fmt.Errorf("counting completions: %w", err)
	}
	if count < len(members)*session.UnitCount() {
		return false, nil
	}

	flipped, err := e.store.MarkSessionCompleted(ctx, session.ID, now.UTC())
	if err != nil {
		return false, fmt.Errorf("marking session completed: %w", err)
	}
	if flipped {
		session.IsCompleted = true
		at := now.UTC()
		session.CompletedAt = &at
	}
	return flipped, nil
}
