package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"wirdbot/internal/core"
)

// runScheduler drives trigger evaluation across all configured guilds on a
// fixed interval. Guilds are evaluated sequentially from this single
// goroutine, so per-guild evaluation never races with itself; duplicate
// fires within the same minute are absorbed by the one-session-per-day
// constraint.
func (b *Bot) runScheduler(ctx context.Context) {
	interval := time.Duration(b.config.Scheduler.IntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("Scheduler started (every %s)", interval)

	for {
		select {
		case <-ctx.Done():
			log.Println("Scheduler stopped")
			return
		case <-b.shutdownCh:
			log.Println("Scheduler stopped")
			return
		case now := <-ticker.C:
			b.tick(ctx, now.UTC())
		}
	}
}

func (b *Bot) tick(ctx context.Context, now time.Time) {
	guildIDs, err := b.db.GetConfiguredGuildIDs(ctx)
	if err != nil {
		log.Printf("Scheduler: error listing guilds: %v", err)
		return
	}

	for _, guildID := range guildIDs {
		session, created, err := b.engine.EvaluateAndMaybeCreateSession(ctx, guildID, now)
		if err != nil {
			if errors.Is(err, core.ErrGuildNotConfigured) {
				continue
			}
			log.Printf(formatLogMessage(guildID, fmt.Sprintf("Trigger evaluation failed: %v", err), "WIRD", ""))
			continue
		}
		if created {
			b.deliverSession(ctx, session)
		}
	}
}
