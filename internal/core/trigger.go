package core

import (
	"context"
	"fmt"
	"log"
	"time"

	"wirdbot/internal/db/models"
)

// EvaluateAndMaybeCreateSession is the scheduled trigger path, invoked once
// per guild per tick. It creates today's session when an enabled schedule
// entry matches the current minute and no session exists for today yet.
// The returned flag reports whether a session was created on this call.
func (e *Engine) EvaluateAndMaybeCreateSession(ctx context.Context, guildID string, now time.Time) (*models.Session, bool, error) {
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

	entries, err := e.store.GetScheduleEntries(ctx, guildID)
	if err != nil {
		return nil, false, fmt.Errorf("loading schedule: %w", err)
	}
	if !e.shouldFireAt(ctx, guild, entries, now) {
		return nil, false, nil
	}

	return e.createSession(ctx, guild, now)
}

// shouldFireAt reports whether any enabled schedule entry matches the
// current minute. A failed clock-source lookup only skips that entry;
// the remaining entries are still evaluated.
func (e *Engine) shouldFireAt(ctx context.Context, guild *models.GuildConfig, entries []*models.ScheduleEntry, now time.Time) bool {
	minute := now.UTC().Format("15:04")

	for _, entry := range entries {
		if !entry.Enabled {
			continue
		}
		if entry.TimeType == models.TimeTypeFixed {
			if entry.TimeValue == minute {
				return true
			}
			continue
		}
		if guild.MosqueID == "" {
			continue
		}
		eventTime, err := e.clock.ResolveEvent(ctx, entry.TimeType, guild.MosqueID, now)
		if err != nil {
			log.Printf("[%s] Skipping schedule entry %s: %v", guild.GuildID, entry.TimeType, err)
			continue
		}
		if eventTime == minute {
			return true
		}
	}
	return false
}
