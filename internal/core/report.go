package core

import (
	"context"
	"fmt"
	"sort"

	"wirdbot/internal/db/models"

	"github.com/google/uuid"
)

// MemberStatus is one member's standing against a session.
type MemberStatus struct {
	UserID     string
	Username   string
	UnitsDone  int
	UnitsTotal int
	Streak     Streak
}

// Report partitions a guild's registered members by whether they finished
// the session. Any display cap is applied by the presentation layer; the
// report itself is always complete.
type Report struct {
	Session   *models.Session
	Completed []MemberStatus
	Pending   []MemberStatus
}

// BuildReport computes a point-in-time summary for a session.
func (e *Engine) BuildReport(ctx context.Context, sessionID uuid.UUID) (*Report, error) {
	session, err := e.store.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if session == nil {
		return nil, ErrNoSession
	}

	members, err := e.store.GetRegisteredUsers(ctx, session.GuildID)
	if err != nil {
		return nil, fmt.Errorf("loading registered users: %w", err)
	}

	report := &Report{Session: session}
	total := session.UnitCount()
	for _, member := range members {
		units, err := e.store.GetUserSessionUnits(ctx, member.UserID, session.ID)
		if err != nil {
			return nil, fmt.Errorf("loading completions for %s: %w", member.UserID, err)
		}
		status := MemberStatus{
			UserID:     member.UserID,
			Username:   member.Username,
			UnitsDone:  len(units),
			UnitsTotal: total,
			Streak:     *snapshotStreak(member),
		}
		if status.UnitsDone >= total {
			report.Completed = append(report.Completed, status)
		} else {
			report.Pending = append(report.Pending, status)
		}
	}

	sort.Slice(report.Completed, func(i, j int) bool {
		return report.Completed[i].Username < report.Completed[j].Username
	})
	sort.Slice(report.Pending, func(i, j int) bool {
		return report.Pending[i].Username < report.Pending[j].Username
	})
	return report, nil
}
