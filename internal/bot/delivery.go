package bot

import (
	"context"
	"fmt"
	"log"

	"wirdbot/internal/db/models"

	"github.com/bwmarrin/discordgo"
	"github.com/lib/pq"
)

// deliverSession posts one embed per page of the session with a completion
// button, then records the delivered message IDs on the session. Delivery
// failures for individual pages are logged and skipped; the assignment
// itself already exists either way.
func (b *Bot) deliverSession(ctx context.Context, session *models.Session) {
	guild, err := b.db.GetGuildConfig(ctx, session.GuildID)
	if err != nil || guild == nil {
		log.Printf(formatLogMessage(session.GuildID, fmt.Sprintf("Cannot deliver session: %v", err), "WIRD", ""))
		return
	}

	units := session.Units()
	var messageIDs pq.StringArray

	for n, unit := range units {
		page := unit + 1

		embed := &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("📖 Quran Page %d", page),
			Description: fmt.Sprintf("Page %d of %d for today", n+1, len(units)),
			Color:       0x2ecc71,
			Image: &discordgo.MessageEmbedImage{
				URL: fmt.Sprintf(b.config.Wird.PageImageURL, page),
			},
			Footer: &discordgo.MessageEmbedFooter{
				Text: fmt.Sprintf("%s • %s", guild.ContentSource, session.SessionDate.Format("2006-01-02")),
			},
		}

		msg, err := b.session.ChannelMessageSendComplex(guild.ChannelID, &discordgo.MessageSend{
			Embeds: []*discordgo.MessageEmbed{embed},
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.Button{
							Label:    fmt.Sprintf("Mark page %d as read", page),
							Style:    discordgo.SuccessButton,
							CustomID: fmt.Sprintf("%s%d", completionButtonPrefix, unit),
						},
					},
				},
			},
		})
		if err != nil {
			log.Printf(formatLogMessage(session.GuildID, fmt.Sprintf("Error sending page %d: %v", page, err), "WIRD", ""))
			continue
		}
		messageIDs = append(messageIDs, msg.ID)
	}

	if err := b.db.UpdateSessionMessageIDs(ctx, session.ID, messageIDs); err != nil {
		log.Printf(formatLogMessage(session.GuildID, fmt.Sprintf("Error saving message IDs: %v", err), "WIRD", ""))
	}

	log.Printf(formatLogMessage(session.GuildID,
		fmt.Sprintf("Delivered pages %d-%d (%d message(s))", session.StartUnit+1, session.EndUnit+1, len(messageIDs)),
		"WIRD", ""))
}

// announceSessionComplete posts the end-of-day summary when every
// registered member has finished the session.
func (b *Bot) announceSessionComplete(ctx context.Context, session *models.Session) {
	guild, err := b.db.GetGuildConfig(ctx, session.GuildID)
	if err != nil || guild == nil || !guild.SummaryOnDone {
		return
	}

	report, err := b.engine.BuildReport(ctx, session.ID)
	if err != nil {
		log.Printf(formatLogMessage(session.GuildID, fmt.Sprintf("Error building completion report: %v", err), "WIRD", ""))
		return
	}

	embed := formatReportEmbed(report)
	embed.Title = "🎉 Everyone finished today's Wird!"
	if _, err := b.session.ChannelMessageSendEmbed(guild.ChannelID, embed); err != nil {
		log.Printf(formatLogMessage(session.GuildID, fmt.Sprintf("Error sending completion summary: %v", err), "WIRD", ""))
	}
}
