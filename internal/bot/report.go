package bot

import (
	"context"
	"fmt"
	"strings"

	"wirdbot/internal/core"

	"github.com/bwmarrin/discordgo"
)

// reportSectionCap limits how many members are listed per section of the
// progress embed. The underlying report is always complete; this is purely
// a display cap.
const reportSectionCap = 10

func (b *Bot) handleProgress(s *discordgo.Session, i *discordgo.InteractionCreate) {
	logCommand(i, "progress")

	ctx := context.Background()
	now := b.clock.Now()

	session, err := b.db.GetSessionByDate(ctx, i.GuildID, core.DateOf(now))
	if err != nil {
		respondWithError(s, i, "Error loading today's session: "+err.Error())
		return
	}
	if session == nil {
		respondWithError(s, i, "No pages have been sent today yet")
		return
	}

	report, err := b.engine.BuildReport(ctx, session.ID)
	if err != nil {
		respondWithError(s, i, "Error building report: "+err.Error())
		return
	}

	respondWithEmbed(s, i, formatReportEmbed(report))
}

func formatReportEmbed(report *core.Report) *discordgo.MessageEmbed {
	session := report.Session

	embed := &discordgo.MessageEmbed{
		Title: "📊 Daily Wird Progress",
		Description: fmt.Sprintf("**Date:** %s\n**Pages Today:** %d",
			session.SessionDate.Format("2006-01-02"), session.UnitCount()),
		Color: 0x3498db,
	}

	if len(report.Completed) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("✅ Completed (%d)", len(report.Completed)),
			Value: formatMemberSection(report.Completed, formatCompletedLine),
		})
	}
	if len(report.Pending) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("⏳ In Progress (%d)", len(report.Pending)),
			Value: formatMemberSection(report.Pending, formatPendingLine),
		})
	}
	if len(report.Completed) == 0 && len(report.Pending) == 0 {
		embed.Description += "\n\nNo registered users yet!"
	}

	return embed
}

func formatMemberSection(members []core.MemberStatus, line func(core.MemberStatus) string) string {
	var sb strings.Builder
	for n, member := range members {
		if n == reportSectionCap {
			fmt.Fprintf(&sb, "... and %d more", len(members)-reportSectionCap)
			break
		}
		sb.WriteString(line(member))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatCompletedLine(m core.MemberStatus) string {
	return fmt.Sprintf("✅ <@%s> - %d🔥", m.UserID, m.Streak.CurrentDays)
}

func formatPendingLine(m core.MemberStatus) string {
	return fmt.Sprintf("⏳ <@%s> - %d/%d pages", m.UserID, m.UnitsDone, m.UnitsTotal)
}
