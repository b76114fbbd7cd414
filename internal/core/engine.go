package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"wirdbot/internal/db/models"

	"github.com/google/uuid"
)

// Contract violations surfaced to the caller. Duplicate submissions and
// duplicate session creations are not errors; they are absorbed and
// reported through result values.
var (
	ErrGuildNotConfigured = errors.New("guild is not configured")
	ErrNotRegistered      = errors.New("user is not registered")
	ErrNoSession          = errors.New("no session found")
	ErrUnitOutOfRange     = errors.New("unit index out of range")
)

// Store is the persistence collaborator. Implementations must enforce
// uniqueness of (guild, date) for sessions and (user, guild, unit, session)
// for completions, and must advance the guild cursor in the same atomic
// step that creates a session.
type Store interface {
	GetGuildConfig(ctx context.Context, guildID string) (*models.GuildConfig, error)
	GetScheduleEntries(ctx context.Context, guildID string) ([]*models.ScheduleEntry, error)

	// CreateSession persists the session and moves the guild cursor to
	// newCursor atomically. If a session already exists for the same guild
	// and date, the existing session is returned with created=false and
	// the cursor is left untouched.
	CreateSession(ctx context.Context, session *models.Session, newCursor int) (*models.Session, bool, error)
	GetSessionByDate(ctx context.Context, guildID string, date time.Time) (*models.Session, error)
	GetSessionByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	GetLatestSessionForUnit(ctx context.Context, guildID string, unit int) (*models.Session, error)
	GetPreviousSession(ctx context.Context, guildID string, createdBefore time.Time) (*models.Session, error)
	// MarkSessionCompleted flips the completion flag once; it reports false
	// when another caller already completed the session.
	MarkSessionCompleted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

	GetUser(ctx context.Context, userID, guildID string) (*models.User, error)
	GetRegisteredUsers(ctx context.Context, guildID string) ([]*models.User, error)
	UpdateDayStreak(ctx context.Context, userID, guildID string, current, longest int, last time.Time) error
	UpdateSessionStreak(ctx context.Context, userID, guildID string, current, longest int, lastSession uuid.UUID) error

	// InsertCompletion reports false when the (user, guild, unit, session)
	// row already exists.
	InsertCompletion(ctx context.Context, completion *models.Completion) (bool, error)
	GetUserSessionUnits(ctx context.Context, userID string, sessionID uuid.UUID) ([]int, error)
	// CountSessionCompletions counts distinct (registered user, unit) rows
	// recorded against the session.
	CountSessionCompletions(ctx context.Context, sessionID uuid.UUID) (int, error)
}

// Clock is the time collaborator. ResolveEvent looks up the time of day
// ("HH:MM", UTC) of a named prayer event for a location; implementations
// must bound the lookup with a timeout.
type Clock interface {
	Now() time.Time
	ResolveEvent(ctx context.Context, event, locationID string, now time.Time) (string, error)
}

// Engine is the session and streak tracking core. It owns no durable state;
// everything lives behind Store. Streak updates for a single member are
// serialized through a per-member lock.
type Engine struct {
	store Store
	clock Clock

	mu          sync.Mutex
	memberLocks map[string]*sync.Mutex
}

func New(store Store, clock Clock) *Engine {
	return &Engine{
		store:       store,
		clock:       clock,
		memberLocks: make(map[string]*sync.Mutex),
	}
}

func (e *Engine) memberLock(userID, guildID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	key := guildID + ":" + userID
	l, ok := e.memberLocks[key]
	if !ok {
		l = &sync.Mutex{}
		e.memberLocks[key] = l
	}
	return l
}

// DateOf truncates a timestamp to its UTC calendar date. All session dates
// and streak comparisons use UTC days.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
