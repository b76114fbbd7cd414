package core

import (
	"context"
	"fmt"
	"time"

	"wirdbot/internal/db/models"
)

// Streak is a snapshot of both streak models for one member.
type Streak struct {
	CurrentDays     int
	LongestDays     int
	CurrentSessions int
	LongestSessions int
}

// GetStreak returns the member's current streak counters.
func (e *Engine) GetStreak(ctx context.Context, userID, guildID string) (*Streak, error) {
	user, err := e.store.GetUser(ctx, userID, guildID)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if user == nil || !user.Registered {
		return nil, ErrNotRegistered
	}
	return snapshotStreak(user), nil
}

func snapshotStreak(user *models.User) *Streak {
	return &Streak{
		CurrentDays:     user.CurrentStreak,
		LongestDays:     user.LongestStreak,
		CurrentSessions: user.SessionStreak,
		LongestSessions: user.LongestSessionStreak,
	}
}

// onMemberDayComplete advances both streak models after a member finishes a
// whole session. Counters are running values: a completion that lands on an
// earlier day or session than the stored high-water mark is a historical
// correction and leaves the forward-looking state alone. The member lock
// keeps concurrent completions for one member from applying conflicting
// transitions.
func (e *Engine) onMemberDayComplete(ctx context.Context, userID, guildID string, session *models.Session, date time.Time) (*Streak, error) {
	lock := e.memberLock(userID, guildID)
	lock.Lock()
	defer lock.Unlock()

	user, err := e.store.GetUser(ctx, userID, guildID)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if user == nil {
		return nil, ErrNotRegistered
	}

	if err := e.advanceDayStreak(ctx, user, date); err != nil {
		return nil, err
	}
	if err := e.advanceSessionStreak(ctx, user, session); err != nil {
		return nil, err
	}
	return snapshotStreak(user), nil
}

func (e *Engine) advanceDayStreak(ctx context.Context, user *models.User, date time.Time) error {
	last := user.LastCompletionDate
	switch {
	case last != nil && date.Equal(*last):
		// Same day already counted.
		return nil
	case last != nil && date.Before(*last):
		// Backfill of an earlier day; streak chain is not recomputed.
		return nil
	case last != nil && daysBetween(*last, date) == 1:
		user.CurrentStreak++
	default:
		user.CurrentStreak = 1
	}

	if user.CurrentStreak > user.LongestStreak {
		user.LongestStreak = user.CurrentStreak
	}
	user.LastCompletionDate = &date

	if err := e.store.UpdateDayStreak(ctx, user.UserID, user.GuildID, user.CurrentStreak, user.LongestStreak, date); err != nil {
		return fmt.Errorf("updating day streak: %w", err)
	}
	return nil
}

// advanceSessionStreak mirrors the day rules keyed on sessions in creation
// order: completing the session right after the last completed one extends
// the run, anything else restarts it at 1.
func (e *Engine) advanceSessionStreak(ctx context.Context, user *models.User, session *models.Session) error {
	if user.LastCompletedSession != nil {
		if *user.LastCompletedSession == session.ID {
			return nil
		}
		lastSession, err := e.store.GetSessionByID(ctx, *user.LastCompletedSession)
		if err != nil {
			return fmt.Errorf("loading last completed session: %w", err)
		}
		if lastSession != nil && !lastSession.CreatedAt.Before(session.CreatedAt) {
			// Completing an older session late does not move the counter.
			return nil
		}
	}

	previous, err := e.store.GetPreviousSession(ctx, session.GuildID, session.CreatedAt)
	if err != nil {
		return fmt.Errorf("loading previous session: %w", err)
	}
	if previous != nil && user.LastCompletedSession != nil && *user.LastCompletedSession == previous.ID {
		user.SessionStreak++
	} else {
		user.SessionStreak = 1
	}

	if user.SessionStreak > user.LongestSessionStreak {
		user.LongestSessionStreak = user.SessionStreak
	}
	id := session.ID
	user.LastCompletedSession = &id

	if err := e.store.UpdateSessionStreak(ctx, user.UserID, user.GuildID, user.SessionStreak, user.LongestSessionStreak, id); err != nil {
		return fmt.Errorf("updating session streak: %w", err)
	}
	return nil
}

func daysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}
