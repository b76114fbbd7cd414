package core

import (
	"context"
	"fmt"
	"time"

	"wirdbot/internal/db/models"

	"github.com/google/uuid"
)

// CompletionResult reports what a single completion submission did.
type CompletionResult struct {
	AlreadyRecorded bool
	Late            bool
	Session         *models.Session
	UnitsDone       int
	// MemberDayComplete is set when this record finished the member's whole
	// session; it is the only event that moves streaks.
	MemberDayComplete bool
	// SessionNowComplete is set on the call that transitioned the session
	// to completed for all registered members.
	SessionNowComplete bool
	Streak             *Streak
}

// RecordCompletion records one (member, unit) completion. Resubmitting an
// already-recorded unit is a no-op reported through AlreadyRecorded. Units
// outside today's session resolve against the most recent session covering
// them and are flagged late.
func (e *Engine) RecordCompletion(ctx context.Context, userID, guildID string, unit int, now time.Time) (*CompletionResult, error) {
	guild, err := e.store.GetGuildConfig(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("loading guild config: %w", err)
	}
	if guild == nil || !guild.Configured {
		return nil, ErrGuildNotConfigured
	}
	if unit < 0 || unit >= guild.TotalUnits {
		return nil, fmt.Errorf("%w: %d of %d", ErrUnitOutOfRange, unit, guild.TotalUnits)
	}

	user, err := e.store.GetUser(ctx, userID, guildID)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if user == nil || !user.Registered {
		return nil, ErrNotRegistered
	}

	session, late, err := e.resolveSession(ctx, guildID, unit, now)
	if err != nil {
		return nil, err
	}

	completion := &models.Completion{
		ID:             uuid.New(),
		UserID:         userID,
		GuildID:        guildID,
		UnitIndex:      unit,
		CompletionDate: DateOf(now),
		SessionID:      session.ID,
		IsLate:         late,
		CreatedAt:      now.UTC(),
	}
	inserted, err := e.store.InsertCompletion(ctx, completion)
	if err != nil {
		return nil, fmt.Errorf("inserting completion: %w", err)
	}

	result := &CompletionResult{Late: late, Session: session}

	units, err := e.store.GetUserSessionUnits(ctx, userID, session.ID)
	if err != nil {
		return nil, fmt.Errorf("loading user completions: %w", err)
	}
	result.UnitsDone = len(units)

	if !inserted {
		result.AlreadyRecorded = true
		return result, nil
	}

	if len(units) >= session.UnitCount() {
		result.MemberDayComplete = true
		streak, err := e.onMemberDayComplete(ctx, userID, guildID, session, DateOf(now))
		if err != nil {
			return nil, err
		}
		result.Streak = streak
	}

	done, err := e.checkSessionComplete(ctx, session, now)
	if err != nil {
		return nil, err
	}
	result.SessionNowComplete = done

	return result, nil
}

// resolveSession prefers today's session when it covers the unit, and falls
// back to the most recent session containing it, which makes the record late.
func (e *Engine) resolveSession(ctx context.Context, guildID string, unit int, now time.Time) (*models.Session, bool, error) {
	today, err := e.store.GetSessionByDate(ctx, guildID, DateOf(now))
	if err != nil {
		return nil, false, fmt.Errorf("loading today's session: %w", err)
	}
	if today != nil && today.Contains(unit) {
		return today, false, nil
	}

	session, err := e.store.GetLatestSessionForUnit(ctx, guildID, unit)
	if err != nil {
		return nil, false, fmt.Errorf("resolving session for unit %d: %w", unit, err)
	}
	if session == nil {
		return nil, false, fmt.Errorf("%w: unit %d was never assigned", ErrNoSession, unit)
	}
	return session, true, nil
}
