package core_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"wirdbot/internal/core"
	"wirdbot/internal/db/models"

	"github.com/google/uuid"
)

// memStore is an in-memory core.Store with the same uniqueness guarantees
// the SQL schema enforces.
type memStore struct {
	mu          sync.Mutex
	guilds      map[string]*models.GuildConfig
	entries     map[string][]*models.ScheduleEntry
	users       map[string]*models.User
	sessions    []*models.Session
	completions map[string]*models.Completion
}

func newMemStore() *memStore {
	return &memStore{
		guilds:      make(map[string]*models.GuildConfig),
		entries:     make(map[string][]*models.ScheduleEntry),
		users:       make(map[string]*models.User),
		completions: make(map[string]*models.Completion),
	}
}

var _ core.Store = (*memStore)(nil)

func userKey(userID, guildID string) string { return guildID + "/" + userID }

func completionKey(c *models.Completion) string {
	return fmt.Sprintf("%s/%s/%d/%s", c.UserID, c.GuildID, c.UnitIndex, c.SessionID)
}

func (m *memStore) GetGuildConfig(_ context.Context, guildID string) (*models.GuildConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.guilds[guildID], nil
}

func (m *memStore) GetScheduleEntries(_ context.Context, guildID string) ([]*models.ScheduleEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[guildID], nil
}

func (m *memStore) CreateSession(_ context.Context, session *models.Session, newCursor int) (*models.Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.sessions {
		if existing.GuildID == session.GuildID && existing.SessionDate.Equal(session.SessionDate) {
			return existing, false, nil
		}
	}
	m.sessions = append(m.sessions, session)
	if guild, ok := m.guilds[session.GuildID]; ok {
		guild.CurrentUnit = newCursor
	}
	return session, true, nil
}

func (m *memStore) GetSessionByDate(_ context.Context, guildID string, date time.Time) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.GuildID == guildID && s.SessionDate.Equal(date) {
			return s, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetSessionByID(_ context.Context, id uuid.UUID) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetLatestSessionForUnit(_ context.Context, guildID string, unit int) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *models.Session
	for _, s := range m.sessions {
		if s.GuildID != guildID || !s.Contains(unit) {
			continue
		}
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	return latest, nil
}

func (m *memStore) GetPreviousSession(_ context.Context, guildID string, createdBefore time.Time) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var previous *models.Session
	for _, s := range m.sessions {
		if s.GuildID != guildID || !s.CreatedAt.Before(createdBefore) {
			continue
		}
		if previous == nil || s.CreatedAt.After(previous.CreatedAt) {
			previous = s
		}
	}
	return previous, nil
}

func (m *memStore) MarkSessionCompleted(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.ID == id {
			if s.IsCompleted {
				return false, nil
			}
			s.IsCompleted = true
			s.CompletedAt = &at
			return true, nil
		}
	}
	return false, fmt.Errorf("session %s not found", id)
}

func (m *memStore) GetUser(_ context.Context, userID, guildID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[userKey(userID, guildID)], nil
}

func (m *memStore) GetRegisteredUsers(_ context.Context, guildID string) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var users []*models.User
	for _, u := range m.users {
		if u.GuildID == guildID && u.Registered {
			users = append(users, u)
		}
	}
	return users, nil
}

func (m *memStore) UpdateDayStreak(_ context.Context, userID, guildID string, current, longest int, last time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userKey(userID, guildID)]
	if !ok {
		return fmt.Errorf("user %s not found", userID)
	}
	u.CurrentStreak = current
	u.LongestStreak = longest
	u.LastCompletionDate = &last
	return nil
}

func (m *memStore) UpdateSessionStreak(_ context.Context, userID, guildID string, current, longest int, lastSession uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userKey(userID, guildID)]
	if !ok {
		return fmt.Errorf("user %s not found", userID)
	}
	u.SessionStreak = current
	u.LongestSessionStreak = longest
	u.LastCompletedSession = &lastSession
	return nil
}

func (m *memStore) InsertCompletion(_ context.Context, completion *models.Completion) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := completionKey(completion)
	if _, exists := m.completions[key]; exists {
		return false, nil
	}
	m.completions[key] = completion
	return true, nil
}

func (m *memStore) GetUserSessionUnits(_ context.Context, userID string, sessionID uuid.UUID) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var units []int
	for _, c := range m.completions {
		if c.UserID == userID && c.SessionID == sessionID {
			units = append(units, c.UnitIndex)
		}
	}
	return units, nil
}

func (m *memStore) CountSessionCompletions(_ context.Context, sessionID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.completions {
		if c.SessionID != sessionID {
			continue
		}
		if u, ok := m.users[userKey(c.UserID, c.GuildID)]; ok && u.Registered {
			count++
		}
	}
	return count, nil
}

// fakeClock returns a fixed now and canned prayer-time lookups.
type fakeClock struct {
	now    time.Time
	events map[string]string
	errs   map[string]error
}

var _ core.Clock = (*fakeClock)(nil)

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) ResolveEvent(_ context.Context, event, _ string, _ time.Time) (string, error) {
	if err, ok := c.errs[event]; ok {
		return "", err
	}
	if t, ok := c.events[event]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown event %q", event)
}

func seedGuild(store *memStore, guildID string, unitsPerDay, totalUnits, cursor int) *models.GuildConfig {
	guild := &models.GuildConfig{
		GuildID:       guildID,
		ChannelID:     "chan-" + guildID,
		ContentSource: "quran",
		UnitsPerDay:   unitsPerDay,
		CurrentUnit:   cursor,
		TotalUnits:    totalUnits,
		MosqueID:      "mosque-1",
		Configured:    true,
	}
	store.guilds[guildID] = guild
	return guild
}

func seedUser(store *memStore, userID, guildID string) *models.User {
	user := &models.User{
		UserID:     userID,
		GuildID:    guildID,
		Username:   userID,
		Registered: true,
	}
	store.users[userKey(userID, guildID)] = user
	return user
}

func fixedEntry(guildID, hhmm string) *models.ScheduleEntry {
	return &models.ScheduleEntry{
		ID:        uuid.New(),
		GuildID:   guildID,
		TimeType:  models.TimeTypeFixed,
		TimeValue: hhmm,
		Enabled:   true,
	}
}

func eventEntry(guildID, event string) *models.ScheduleEntry {
	return &models.ScheduleEntry{
		ID:       uuid.New(),
		GuildID:  guildID,
		TimeType: event,
		Enabled:  true,
	}
}
